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

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/upsight-edu/upsight/internal/observability/logger"
	"github.com/upsight-edu/upsight/internal/roster"
)

// ListStudents returns the student roster. Non-platform callers receive a
// single truncated record and access_level "limited"; the response shape is
// identical at every tier.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	listing, err := h.rosterService.List(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list students", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list students")
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// GetStudent retrieves a single student record. Full access only.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	student, err := h.rosterService.Get(r.Context(), t, chi.URLParam(r, "studentID"))
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrDenied):
			respondError(w, http.StatusForbidden, "permission denied")
		case errors.Is(err, roster.ErrStudentNotFound):
			respondError(w, http.StatusNotFound, "student not found")
		default:
			slog.ErrorContext(r.Context(), "failed to get student", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to get student")
		}
		return
	}
	respondJSON(w, http.StatusOK, student)
}
