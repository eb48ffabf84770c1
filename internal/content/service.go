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

package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/authz"
)

// Service mediates all content access through the caller's tier. Every
// method takes the tier computed for the authenticated subject; the service
// never consults roles directly.
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	now         func() time.Time
}

// NewService creates a new content service.
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{repo: repo, auditLogger: auditLogger, now: time.Now}
}

// List returns the items of a kind visible to the tier, newest first. A
// tier below TenantScoped receives an empty set, not an error.
func (s *Service) List(ctx context.Context, tier authz.Tier, kind Kind) ([]*Item, error) {
	f := authz.ListFilter(tier, authz.PolicyDenyEmpty)
	if f.Empty {
		return []*Item{}, nil
	}
	items, err := s.repo.List(ctx, kind, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, nil
}

// Get retrieves a single item. An item outside the tier's university is
// reported as ErrDenied, not ErrNotFound: existence of content IDs is not
// treated as a secret across universities.
func (s *Service) Get(ctx context.Context, tier authz.Tier, kind Kind, id string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanRead(tier, item.UniversityID) {
		s.logDenied(ctx, tier, kind, id, "read")
		return nil, ErrDenied
	}
	return item, nil
}

// Create stores a new item. The university the item lands under is resolved
// server-side: tenant-scoped callers always write into their bound
// university regardless of what the request carried.
func (s *Service) Create(ctx context.Context, tier authz.Tier, item *Item) (*Item, error) {
	universityID, ok := authz.PrepareWrite(tier, item.UniversityID)
	if !ok {
		s.logDenied(ctx, tier, item.Kind, "", "create")
		return nil, ErrDenied
	}
	if universityID == "" {
		return nil, ErrUniversityRequired
	}

	now := s.now().UTC()
	item.ID = uuid.New().String()
	item.UniversityID = universityID
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Date.IsZero() {
		item.Date = now
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create %s: %w", item.Kind, err)
	}
	return item, nil
}

// Update overwrites an existing item's fields. The item's university is
// immutable for tenant-scoped callers; a full-access caller may move an
// item between universities.
func (s *Service) Update(ctx context.Context, tier authz.Tier, kind Kind, id string, updated *Item) (*Item, error) {
	existing, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(tier, existing.UniversityID) {
		s.logDenied(ctx, tier, kind, id, "update")
		return nil, ErrDenied
	}

	existing.TitleUz = updated.TitleUz
	existing.TitleKo = updated.TitleKo
	existing.ContentUz = updated.ContentUz
	existing.ContentKo = updated.ContentKo
	if updated.Image != "" {
		existing.Image = updated.Image
	}
	if !updated.Date.IsZero() {
		existing.Date = updated.Date
	}
	if tier.Full() && updated.UniversityID != "" {
		existing.UniversityID = updated.UniversityID
	}
	existing.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}
	return existing, nil
}

// Delete removes an item the tier may mutate.
func (s *Service) Delete(ctx context.Context, tier authz.Tier, kind Kind, id string) error {
	existing, err := s.repo.GetByID(ctx, kind, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(tier, existing.UniversityID) {
		s.logDenied(ctx, tier, kind, id, "delete")
		return ErrDenied
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// AttachDocument adds a file attachment to an information item. Attachments
// follow the parent item's access rules.
func (s *Service) AttachDocument(ctx context.Context, tier authz.Tier, itemID string, doc *Document) (*Document, error) {
	item, err := s.repo.GetByID(ctx, KindInformation, itemID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(tier, item.UniversityID) {
		s.logDenied(ctx, tier, KindInformation, itemID, "attach")
		return nil, ErrDenied
	}
	doc.ID = uuid.New().String()
	doc.ItemID = item.ID
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("attach document: %w", err)
	}
	return doc, nil
}

// Documents lists the attachments of an information item the tier may read.
func (s *Service) Documents(ctx context.Context, tier authz.Tier, itemID string) ([]*Document, error) {
	item, err := s.repo.GetByID(ctx, KindInformation, itemID)
	if err != nil {
		return nil, err
	}
	if !authz.CanRead(tier, item.UniversityID) {
		s.logDenied(ctx, tier, KindInformation, itemID, "read")
		return nil, ErrDenied
	}
	return s.repo.ListDocuments(ctx, item.ID)
}

func (s *Service) logDenied(ctx context.Context, tier authz.Tier, kind Kind, id, op string) {
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccessDenied,
		Resource: string(kind),
		Metadata: map[string]any{
			"operation":          op,
			"item_id":            id,
			audit.AttrUniversity: tier.UniversityID,
		},
	})
}
