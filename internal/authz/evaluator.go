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

package authz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/observability/logger"
	"github.com/upsight-edu/upsight/internal/tenant"
)

// Level is the access tier granted to an account.
type Level int

const (
	// LevelNone grants no access to tenant-scoped content.
	LevelNone Level = iota
	// LevelTenantScoped grants access to one university's content.
	LevelTenantScoped
	// LevelFull grants access to all content regardless of university.
	LevelFull
)

// Tier is the Permission Evaluator's output. UniversityID is set only for
// LevelTenantScoped.
type Tier struct {
	Level        Level
	UniversityID string
}

// Full reports whether the tier grants unrestricted access.
func (t Tier) Full() bool { return t.Level == LevelFull }

// Subject is the authenticated principal a request acts as, derived from
// verified token claims.
type Subject struct {
	AccountID  string
	EmployeeID string
	Role       identity.Role
}

// Evaluator computes access tiers. It is the single place roles are
// interpreted; no code outside this package compares role values.
type Evaluator struct {
	bindings    tenant.BindingRepository
	auditLogger audit.Logger
}

// NewEvaluator creates a new permission evaluator.
func NewEvaluator(bindings tenant.BindingRepository, auditLogger audit.Logger) *Evaluator {
	return &Evaluator{bindings: bindings, auditLogger: auditLogger}
}

// Evaluate maps a subject to its access tier. The role comes from the
// token claim and is authoritative for the token's lifetime; the university
// binding is read live on every call, since bindings change without
// reissuing tokens.
//
// A university_staff account with no binding is a configuration error: it
// is surfaced in the logs and audit trail, and the account gets zero
// access rather than an error (fail closed).
func (e *Evaluator) Evaluate(ctx context.Context, sub Subject) (Tier, error) {
	switch sub.Role {
	case identity.RolePlatformStaff:
		return Tier{Level: LevelFull}, nil

	case identity.RoleTenantStaff:
		binding, err := e.bindings.GetByAccountID(ctx, sub.AccountID)
		if err != nil {
			if errors.Is(err, tenant.ErrBindingNotFound) {
				slog.WarnContext(ctx, "university_staff account has no university binding",
					logger.UserID(sub.AccountID),
					logger.EmployeeID(sub.EmployeeID),
				)
				e.auditLogger.Log(ctx, audit.Event{
					Type:     audit.TypeBindingMissing,
					ActorID:  sub.AccountID,
					Resource: "university_binding",
					Metadata: map[string]any{audit.AttrEmployeeID: sub.EmployeeID},
				})
				return Tier{Level: LevelNone}, nil
			}
			return Tier{}, err
		}
		return Tier{Level: LevelTenantScoped, UniversityID: binding.UniversityID}, nil

	case identity.RoleUnprivileged:
		return Tier{Level: LevelNone}, nil

	default:
		// Unknown role in a token claim: fail closed.
		return Tier{Level: LevelNone}, nil
	}
}
