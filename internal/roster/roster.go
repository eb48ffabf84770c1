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
	"errors"
	"time"

	"github.com/upsight-edu/upsight/internal/authz"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDenied          = errors.New("permission denied")
)

// Access levels reported alongside roster listings.
const (
	AccessFull    = "full"
	AccessLimited = "limited"
)

// Student is an enrolled student record.
type Student struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	NameUz       string    `json:"name_uz"`
	NameKo       string    `json:"name_ko"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	UniversityID string    `json:"university_id"`
	EnrolledAt   time.Time `json:"enrolled_at"`
}

// Name returns the student's name for a language with fallback.
func (s *Student) Name(lang string) string {
	if lang == "ko" {
		if s.NameKo != "" {
			return s.NameKo
		}
		return s.NameUz
	}
	if s.NameUz != "" {
		return s.NameUz
	}
	return s.NameKo
}

// Listing is the roster response: the records plus the level of access the
// caller was granted. Limited listings carry at most one record.
type Listing struct {
	AccessLevel string     `json:"access_level"`
	Students    []*Student `json:"students"`
}

// Repository defines the interface for roster persistence.
type Repository interface {
	// GetByID retrieves a student, or ErrStudentNotFound.
	GetByID(ctx context.Context, id string) (*Student, error)

	// List retrieves students under the scoping filter, ordered by
	// enrollment date descending.
	List(ctx context.Context, f authz.Filter) ([]*Student, error)
}
