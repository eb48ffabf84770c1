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

	"github.com/upsight-edu/upsight/internal/audit"
)

// Authenticator verifies employee id and password pairs against stored
// credentials.
type Authenticator struct {
	accounts    AccountRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(accounts AccountRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Authenticator {
	return &Authenticator{
		accounts:    accounts,
		hasher:      hasher,
		auditLogger: auditLogger,
	}
}

// Authenticate verifies the credentials and returns the account. Every
// failure collapses to ErrInvalidCredentials; the caller never learns
// whether the identifier or the password was wrong. Failures have no side
// effects on the account.
func (a *Authenticator) Authenticate(ctx context.Context, employeeID, password string) (*Account, error) {
	account, err := a.accounts.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		a.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: employeeID,
			Metadata: map[string]any{audit.AttrReason: "account_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	if !account.Active {
		a.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  account.ID,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "account_inactive"},
		})
		return nil, ErrInvalidCredentials
	}

	valid, err := a.hasher.Verify(password, account.PasswordHash)
	if err != nil || !valid {
		a.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			ActorID:  account.ID,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "invalid_password"},
		})
		return nil, ErrInvalidCredentials
	}

	a.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeLoginSuccess,
		ActorID:  account.ID,
		Resource: "login",
	})

	return account, nil
}
