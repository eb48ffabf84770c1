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
	"errors"
	"fmt"
	"time"

	"github.com/upsight-edu/upsight/internal/authz"
)

// Domain errors
var (
	ErrNotFound           = errors.New("content item not found")
	ErrDenied             = errors.New("permission denied")
	ErrUniversityRequired = errors.New("university reference is required")
	ErrInvalidKind        = errors.New("invalid content kind")
)

// Kind identifies a category of tenant-scoped content. All kinds share one
// shape and one access policy; adding a kind requires no new authorization
// code.
type Kind string

const (
	KindNews        Kind = "news"
	KindNotice      Kind = "notice"
	KindTranslation Kind = "translation"
	KindInformation Kind = "information"
)

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindNews, KindNotice, KindTranslation, KindInformation:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Item is a tenant-scoped content record with bilingual title and body.
// UniversityID is mandatory and is never taken from client input when the
// acting account is tenant-scoped.
type Item struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	TitleUz      string    `json:"title_uz"`
	TitleKo      string    `json:"title_ko"`
	ContentUz    string    `json:"content_uz"`
	ContentKo    string    `json:"content_ko"`
	Image        string    `json:"image,omitempty"`
	UniversityID string    `json:"university_id"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Title returns the title for a language with fallback to the other
// translation.
func (i *Item) Title(lang string) string {
	if lang == "ko" {
		if i.TitleKo != "" {
			return i.TitleKo
		}
		return i.TitleUz
	}
	if i.TitleUz != "" {
		return i.TitleUz
	}
	return i.TitleKo
}

// Body returns the content body for a language with fallback.
func (i *Item) Body(lang string) string {
	if lang == "ko" {
		if i.ContentKo != "" {
			return i.ContentKo
		}
		return i.ContentUz
	}
	if i.ContentUz != "" {
		return i.ContentUz
	}
	return i.ContentKo
}

// Document is a file attached to an information item.
type Document struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
	File   string `json:"file"`
	NameUz string `json:"name_uz"`
	NameKo string `json:"name_ko"`
}

// Repository defines the interface for content persistence. List applies
// the scoping filter server-side; handing it a client-derived filter is a
// programming error.
type Repository interface {
	// Create inserts a new item.
	Create(ctx context.Context, item *Item) error

	// GetByID retrieves an item of a kind, or ErrNotFound.
	GetByID(ctx context.Context, kind Kind, id string) (*Item, error)

	// List retrieves items of a kind under the scoping filter, newest
	// first.
	List(ctx context.Context, kind Kind, f authz.Filter) ([]*Item, error)

	// Update overwrites an existing item.
	Update(ctx context.Context, item *Item) error

	// Delete removes an item of a kind.
	Delete(ctx context.Context, kind Kind, id string) error

	// AddDocument attaches a document to an information item.
	AddDocument(ctx context.Context, doc *Document) error

	// ListDocuments retrieves the documents attached to an item.
	ListDocuments(ctx context.Context, itemID string) ([]*Document, error)
}
