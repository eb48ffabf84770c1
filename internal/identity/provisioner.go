// Copyright 2026 The Upsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/upsight-edu/upsight/internal/audit"
)

// Provisioner creates a platform account for a staff profile. Provisioning
// is an explicit use case invoked by the application layer after the profile
// has been validated, never a side effect of persistence.
type Provisioner struct {
	accounts    AccountRepository
	staff       StaffRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewProvisioner creates a new provisioner.
func NewProvisioner(
	accounts AccountRepository,
	staff StaffRepository,
	hasher *PasswordHasher,
	auditLogger audit.Logger,
) *Provisioner {
	return &Provisioner{
		accounts:    accounts,
		staff:       staff,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Provision creates the account for a staff profile and links the two in one
// transaction. Staff accounts always carry RolePlatformStaff.
//
// The operation is idempotent per profile: if the profile already references
// an account, that account is returned and nothing is written. A colliding
// employee id yields ErrDuplicateIdentifier; any failure of the atomic step
// yields ErrProvisioningFailed and leaves no orphaned account behind.
func (p *Provisioner) Provision(ctx context.Context, profile *StaffProfile, secret string) (*Account, error) {
	if profile.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", ErrProvisioningFailed)
	}

	// Idempotency: a profile that is already linked keeps its account.
	if profile.AccountID != "" {
		existing, err := p.accounts.GetByID(ctx, profile.AccountID)
		if err != nil {
			return nil, fmt.Errorf("%w: linked account missing: %v", ErrProvisioningFailed, err)
		}
		return existing, nil
	}

	passwordHash := secret
	if !IsHashed(secret) {
		var err error
		passwordHash, err = p.hasher.Hash(secret)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
		}
	}

	now := time.Now()
	account := &Account{
		ID:           uuid.NewString(),
		EmployeeID:   profile.EmployeeID,
		Email:        profile.Email,
		Name:         profile.Name("ko"),
		Roles:        []Role{RolePlatformStaff},
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.AccountID = account.ID
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := p.staff.CreateWithAccount(ctx, profile, account); err != nil {
		profile.AccountID = ""
		if errors.Is(err, ErrDuplicateIdentifier) {
			return nil, ErrDuplicateIdentifier
		}
		return nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	p.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccountProvisioned,
		ActorID:  account.ID,
		Resource: "account",
		Metadata: map[string]any{
			audit.AttrEmployeeID: account.EmployeeID,
			audit.AttrRole:       string(account.PrimaryRole()),
		},
	})

	return account, nil
}
