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
)

// Domain errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrProfileNotFound     = errors.New("staff profile not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateIdentifier = errors.New("employee id already in use")
	ErrProvisioningFailed  = errors.New("provisioning failed")
	ErrInvalidRole         = errors.New("invalid role")
)

// Role is the closed set of access-tier labels. Every authorization decision
// flows through authz.Evaluator; no other code compares role strings.
type Role string

const (
	// RolePlatformStaff is the head-office staff role with full access.
	RolePlatformStaff Role = "upsight_staff"
	// RoleTenantStaff is the university-manager role, scoped to one university.
	RoleTenantStaff Role = "university_staff"
	// RoleUnprivileged is the fallback role for accounts with no staff group.
	RoleUnprivileged Role = "user"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePlatformStaff, RoleTenantStaff, RoleUnprivileged:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Account is a credential-bearing identity. Accounts are created by the
// Provisioner (or administrative bootstrap) and are deactivated, never
// deleted.
type Account struct {
	ID           string
	EmployeeID   string // unique login identifier
	Email        string
	Name         string
	Roles        []Role // non-empty after provisioning; the first entry is authoritative
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PrimaryRole returns the authoritative role for claim embedding: the first
// assigned role, or RoleUnprivileged when none is assigned.
func (a *Account) PrimaryRole() Role {
	if len(a.Roles) == 0 {
		return RoleUnprivileged
	}
	return a.Roles[0]
}

// StaffProfile is an employee record. It holds exactly one owning link to an
// Account, stored as a foreign key; profile and account are created together
// and never independently.
type StaffProfile struct {
	ID         string
	EmployeeID string
	NameUz     string
	NameKo     string
	Email      string
	Phone      string
	Position   string
	Status     string
	AccountID  string // empty until provisioned
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Name returns the display name for a language, falling back to the other
// translation when the requested one is empty.
func (p *StaffProfile) Name(lang string) string {
	if lang == "ko" {
		if p.NameKo != "" {
			return p.NameKo
		}
		return p.NameUz
	}
	if p.NameUz != "" {
		return p.NameUz
	}
	return p.NameKo
}

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByEmployeeID retrieves an account by its login identifier.
	GetByEmployeeID(ctx context.Context, employeeID string) (*Account, error)

	// Deactivate marks an account inactive. Accounts are never deleted.
	Deactivate(ctx context.Context, id string) error
}

// StaffRepository defines the interface for staff profile persistence.
type StaffRepository interface {
	// CreateWithAccount atomically creates the account and the profile link.
	// Both succeed or both fail; a profile must never reference a
	// half-created account. Returns ErrDuplicateIdentifier when the
	// employee id collides with an existing account.
	CreateWithAccount(ctx context.Context, profile *StaffProfile, account *Account) error

	// GetByID retrieves a staff profile by ID.
	GetByID(ctx context.Context, id string) (*StaffProfile, error)

	// GetByEmployeeID retrieves a staff profile by employee id.
	GetByEmployeeID(ctx context.Context, employeeID string) (*StaffProfile, error)

	// GetByAccountID retrieves the profile linked to an account.
	GetByAccountID(ctx context.Context, accountID string) (*StaffProfile, error)

	// List retrieves staff profiles with pagination.
	List(ctx context.Context, limit, offset int) ([]*StaffProfile, error)
}
