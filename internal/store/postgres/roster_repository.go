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
	"github.com/upsight-edu/upsight/internal/roster"
)

// RosterRepository implements roster.Repository
type RosterRepository struct {
	db *DB
}

// NewRosterRepository creates a new student roster repository
func NewRosterRepository(db *DB) *RosterRepository {
	return &RosterRepository{db: db}
}

const studentColumns = `id, student_id, name_uz, name_ko, email, phone, university_id, enrolled_at`

// GetByID retrieves a student
func (r *RosterRepository) GetByID(ctx context.Context, id string) (*roster.Student, error) {
	var s roster.Student
	err := r.db.pool.QueryRow(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE id = $1
	`, id).Scan(
		&s.ID, &s.StudentID, &s.NameUz, &s.NameKo,
		&s.Email, &s.Phone, &s.UniversityID, &s.EnrolledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, roster.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// List retrieves students under the scoping filter, ordered by enrollment
// date descending
func (r *RosterRepository) List(ctx context.Context, f authz.Filter) ([]*roster.Student, error) {
	if f.Empty {
		return []*roster.Student{}, nil
	}

	query := `
		SELECT ` + studentColumns + `
		FROM students`
	args := []any{}

	if f.UniversityID != "" {
		args = append(args, f.UniversityID)
		query += fmt.Sprintf(" WHERE university_id = $%d", len(args))
	}
	query += " ORDER BY enrolled_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []*roster.Student{}
	for rows.Next() {
		var s roster.Student
		if err := rows.Scan(
			&s.ID, &s.StudentID, &s.NameUz, &s.NameKo,
			&s.Email, &s.Phone, &s.UniversityID, &s.EnrolledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, &s)
	}
	return students, rows.Err()
}
