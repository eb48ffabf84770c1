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
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/upsight-edu/upsight/internal/identity"
)

// AccountRepository implements identity.AccountRepository
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, employee_id, email, name, roles, password_hash, active, created_at, updated_at`

func scanAccount(row pgx.Row) (*identity.Account, error) {
	var acc identity.Account
	var roles []string
	err := row.Scan(
		&acc.ID, &acc.EmployeeID, &acc.Email, &acc.Name,
		&roles, &acc.PasswordHash, &acc.Active,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	acc.Roles = make([]identity.Role, len(roles))
	for i, r := range roles {
		acc.Roles[i] = identity.Role(r)
	}
	return &acc, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*identity.Account, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)
	return scanAccount(row)
}

// GetByEmployeeID retrieves an account by its login identifier
func (r *AccountRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*identity.Account, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE employee_id = $1
	`, employeeID)
	return scanAccount(row)
}

// Deactivate marks an account inactive. Accounts are never deleted.
func (r *AccountRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE accounts SET active = FALSE, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// StaffRepository implements identity.StaffRepository
type StaffRepository struct {
	db *DB
}

// NewStaffRepository creates a new staff profile repository
func NewStaffRepository(db *DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// CreateWithAccount atomically creates the account and the profile link in
// a single transaction. A unique violation on the employee id surfaces as
// identity.ErrDuplicateIdentifier.
func (r *StaffRepository) CreateWithAccount(ctx context.Context, profile *identity.StaffProfile, account *identity.Account) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	roles := make([]string, len(account.Roles))
	for i, role := range account.Roles {
		roles[i] = string(role)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, employee_id, email, name, roles, password_hash, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID, account.EmployeeID, account.Email, account.Name,
		roles, account.PasswordHash, account.Active,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return identity.ErrDuplicateIdentifier
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO staff_profiles (id, employee_id, name_uz, name_ko, email, phone, position, status, account_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (employee_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			updated_at = EXCLUDED.updated_at
	`,
		profile.ID, profile.EmployeeID, profile.NameUz, profile.NameKo,
		profile.Email, profile.Phone, profile.Position, profile.Status,
		profile.AccountID, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert staff profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit provisioning transaction: %w", err)
	}
	return nil
}

const staffColumns = `id, employee_id, name_uz, name_ko, email, phone, position, status, COALESCE(account_id, ''), created_at, updated_at`

func scanStaffProfile(row pgx.Row) (*identity.StaffProfile, error) {
	var p identity.StaffProfile
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.NameUz, &p.NameKo,
		&p.Email, &p.Phone, &p.Position, &p.Status,
		&p.AccountID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get staff profile: %w", err)
	}
	return &p, nil
}

// GetByID retrieves a staff profile by ID
func (r *StaffRepository) GetByID(ctx context.Context, id string) (*identity.StaffProfile, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_profiles
		WHERE id = $1
	`, id)
	return scanStaffProfile(row)
}

// GetByEmployeeID retrieves a staff profile by employee id
func (r *StaffRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*identity.StaffProfile, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_profiles
		WHERE employee_id = $1
	`, employeeID)
	return scanStaffProfile(row)
}

// GetByAccountID retrieves the profile linked to an account
func (r *StaffRepository) GetByAccountID(ctx context.Context, accountID string) (*identity.StaffProfile, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+staffColumns+`
		FROM staff_profiles
		WHERE account_id = $1
	`, accountID)
	return scanStaffProfile(row)
}

// List retrieves staff profiles ordered by employee id
func (r *StaffRepository) List(ctx context.Context, limit, offset int) ([]*identity.StaffProfile, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.pool.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff_profiles
		ORDER BY employee_id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*identity.StaffProfile
	for rows.Next() {
		p, err := scanStaffProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
