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

	"github.com/upsight-edu/upsight/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new university repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByID retrieves a university by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.University, error) {
	var u tenant.University
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, name_uz, name_ko, logo, address, phone, created_at, updated_at
		FROM universities
		WHERE id = $1
	`, id).Scan(
		&u.ID, &u.NameUz, &u.NameKo, &u.Logo, &u.Address, &u.Phone,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrUniversityNotFound
		}
		return nil, fmt.Errorf("failed to get university: %w", err)
	}
	return &u, nil
}

// List retrieves universities with pagination
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.University, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name_uz, name_ko, logo, address, phone, created_at, updated_at
		FROM universities
		ORDER BY name_uz
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list universities: %w", err)
	}
	defer rows.Close()

	var out []*tenant.University
	for rows.Next() {
		var u tenant.University
		if err := rows.Scan(
			&u.ID, &u.NameUz, &u.NameKo, &u.Logo, &u.Address, &u.Phone,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan university: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// BindingRepository implements tenant.BindingRepository
type BindingRepository struct {
	db *DB
}

// NewBindingRepository creates a new university binding repository
func NewBindingRepository(db *DB) *BindingRepository {
	return &BindingRepository{db: db}
}

// GetByAccountID retrieves the binding for an account
func (r *BindingRepository) GetByAccountID(ctx context.Context, accountID string) (*tenant.Binding, error) {
	var b tenant.Binding
	err := r.db.pool.QueryRow(ctx, `
		SELECT account_id, university_id, granted_at, granted_by
		FROM university_bindings
		WHERE account_id = $1
	`, accountID).Scan(&b.AccountID, &b.UniversityID, &b.GrantedAt, &b.GrantedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrBindingNotFound
		}
		return nil, fmt.Errorf("failed to get university binding: %w", err)
	}
	return &b, nil
}
