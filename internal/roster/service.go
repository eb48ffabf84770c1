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

package roster

import (
	"context"
	"fmt"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/authz"
)

// Service exposes the student roster. Unlike content listings, the roster
// truncates for non-platform callers instead of scoping or emptying: any
// tier below Full gets a single record and the listing is marked "limited".
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new roster service.
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, auditLogger: auditLogger}
}

// List returns the roster visible to the tier. Full access receives the
// complete roster across universities with AccessLevel "full"; everyone
// else receives at most one record with AccessLevel "limited".
func (s *Service) List(ctx context.Context, tier authz.Tier) (*Listing, error) {
	f := authz.ListFilter(tier, authz.PolicyDenyTruncate)
	students, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []*Student{}
	}

	level := AccessFull
	if !tier.Full() {
		level = AccessLimited
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			Resource: "student_roster",
			Metadata: map[string]any{
				"operation":          "list",
				"truncated":          true,
				audit.AttrUniversity: tier.UniversityID,
			},
		})
	}
	return &Listing{AccessLevel: level, Students: students}, nil
}

// Get retrieves a single student record. Individual records are reserved
// for full access; tenant-scoped staff only ever see the truncated listing.
func (s *Service) Get(ctx context.Context, tier authz.Tier, id string) (*Student, error) {
	if !tier.Full() {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeAccessDenied,
			Resource: "student_roster",
			Metadata: map[string]any{"operation": "get", "student_id": id},
		})
		return nil, ErrDenied
	}
	return s.repo.GetByID(ctx, id)
}
