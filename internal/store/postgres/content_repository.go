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

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/upsight-edu/upsight/internal/authz"
	"github.com/upsight-edu/upsight/internal/content"
)

// ContentRepository implements content.Repository
type ContentRepository struct {
	db *DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = `id, kind, title_uz, title_ko, content_uz, content_ko, image, university_id, date, created_at, updated_at`

// Create inserts a new item
func (r *ContentRepository) Create(ctx context.Context, item *content.Item) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO content_items (`+contentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		item.ID, string(item.Kind), item.TitleUz, item.TitleKo,
		item.ContentUz, item.ContentKo, item.Image, item.UniversityID,
		item.Date, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert content item: %w", err)
	}
	return nil
}

// GetByID retrieves an item of a kind
func (r *ContentRepository) GetByID(ctx context.Context, kind content.Kind, id string) (*content.Item, error) {
	var item content.Item
	var kindStr string
	err := r.db.pool.QueryRow(ctx, `
		SELECT `+contentColumns+`
		FROM content_items
		WHERE id = $1 AND kind = $2
	`, id, string(kind)).Scan(
		&item.ID, &kindStr, &item.TitleUz, &item.TitleKo,
		&item.ContentUz, &item.ContentKo, &item.Image, &item.UniversityID,
		&item.Date, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, content.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	item.Kind = content.Kind(kindStr)
	return &item, nil
}

// List retrieves items of a kind under the scoping filter, newest first.
// The filter comes from the access mediator, never from client input.
func (r *ContentRepository) List(ctx context.Context, kind content.Kind, f authz.Filter) ([]*content.Item, error) {
	if f.Empty {
		return []*content.Item{}, nil
	}

	query := `
		SELECT ` + contentColumns + `
		FROM content_items
		WHERE kind = $1`
	args := []any{string(kind)}

	if f.UniversityID != "" {
		args = append(args, f.UniversityID)
		query += fmt.Sprintf(" AND university_id = $%d", len(args))
	}
	query += " ORDER BY date DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	items := []*content.Item{}
	for rows.Next() {
		var item content.Item
		var kindStr string
		if err := rows.Scan(
			&item.ID, &kindStr, &item.TitleUz, &item.TitleKo,
			&item.ContentUz, &item.ContentKo, &item.Image, &item.UniversityID,
			&item.Date, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		item.Kind = content.Kind(kindStr)
		items = append(items, &item)
	}
	return items, rows.Err()
}

// Update overwrites an existing item
func (r *ContentRepository) Update(ctx context.Context, item *content.Item) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE content_items SET
			title_uz = $2,
			title_ko = $3,
			content_uz = $4,
			content_ko = $5,
			image = $6,
			university_id = $7,
			date = $8,
			updated_at = $9
		WHERE id = $1
	`,
		item.ID, item.TitleUz, item.TitleKo, item.ContentUz, item.ContentKo,
		item.Image, item.UniversityID, item.Date, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update content item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

// Delete removes an item of a kind
func (r *ContentRepository) Delete(ctx context.Context, kind content.Kind, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM content_items WHERE id = $1 AND kind = $2
	`, id, string(kind))
	if err != nil {
		return fmt.Errorf("failed to delete content item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

// AddDocument attaches a document to an information item
func (r *ContentRepository) AddDocument(ctx context.Context, doc *content.Document) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO content_documents (id, item_id, file, name_uz, name_ko)
		VALUES ($1, $2, $3, $4, $5)
	`, doc.ID, doc.ItemID, doc.File, doc.NameUz, doc.NameKo)
	if err != nil {
		return fmt.Errorf("failed to insert content document: %w", err)
	}
	return nil
}

// ListDocuments retrieves the documents attached to an item
func (r *ContentRepository) ListDocuments(ctx context.Context, itemID string) ([]*content.Document, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, item_id, file, name_uz, name_ko
		FROM content_documents
		WHERE item_id = $1
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content documents: %w", err)
	}
	defer rows.Close()

	docs := []*content.Document{}
	for rows.Next() {
		var d content.Document
		if err := rows.Scan(&d.ID, &d.ItemID, &d.File, &d.NameUz, &d.NameKo); err != nil {
			return nil, fmt.Errorf("failed to scan content document: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
