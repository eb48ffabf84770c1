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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/upsight-edu/upsight/internal/content"
	"github.com/upsight-edu/upsight/internal/observability/logger"
)

// contentKind resolves the {kind} URL segment, writing a 404 for anything
// outside the closed enumeration.
func contentKind(w http.ResponseWriter, r *http.Request) (content.Kind, bool) {
	kind, err := content.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown content kind")
		return "", false
	}
	return kind, true
}

func respondContentError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		respondError(w, http.StatusNotFound, "content item not found")
	case errors.Is(err, content.ErrDenied):
		respondError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, content.ErrUniversityRequired):
		respondError(w, http.StatusBadRequest, "university_id is required")
	default:
		slog.ErrorContext(r.Context(), "content operation failed", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// ContentRequest represents the mutable fields of a content item
type ContentRequest struct {
	TitleUz      string    `json:"title_uz"`
	TitleKo      string    `json:"title_ko"`
	ContentUz    string    `json:"content_uz"`
	ContentKo    string    `json:"content_ko"`
	Image        string    `json:"image"`
	UniversityID string    `json:"university_id"`
	Date         time.Time `json:"date"`
}

func (req *ContentRequest) item(kind content.Kind) *content.Item {
	return &content.Item{
		Kind:         kind,
		TitleUz:      req.TitleUz,
		TitleKo:      req.TitleKo,
		ContentUz:    req.ContentUz,
		ContentKo:    req.ContentKo,
		Image:        req.Image,
		UniversityID: req.UniversityID,
		Date:         req.Date,
	}
}

// ListContent lists items of a kind visible to the caller's tier.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	items, err := h.contentService.List(r.Context(), t, kind)
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GetContent retrieves a single item. An item outside the caller's
// university is a 403.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	item, err := h.contentService.Get(r.Context(), t, kind, chi.URLParam(r, "itemID"))
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// CreateContent stores a new item under the caller's university.
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.contentService.Create(r.Context(), t, req.item(kind))
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateContent overwrites an existing item's fields.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	var req ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.contentService.Update(r.Context(), t, kind, chi.URLParam(r, "itemID"), req.item(kind))
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteContent removes an item.
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	if err := h.contentService.Delete(r.Context(), t, kind, chi.URLParam(r, "itemID")); err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// DocumentRequest represents a file attachment
type DocumentRequest struct {
	File   string `json:"file"`
	NameUz string `json:"name_uz"`
	NameKo string `json:"name_ko"`
}

// AttachDocument adds an attachment to an information item.
func (h *Handler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	if kind != content.KindInformation {
		respondError(w, http.StatusNotFound, "documents exist only on information items")
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}

	doc, err := h.contentService.AttachDocument(r.Context(), t, chi.URLParam(r, "itemID"), &content.Document{
		File:   req.File,
		NameUz: req.NameUz,
		NameKo: req.NameKo,
	})
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// ListDocuments lists the attachments of an information item.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	kind, ok := contentKind(w, r)
	if !ok {
		return
	}
	if kind != content.KindInformation {
		respondError(w, http.StatusNotFound, "documents exist only on information items")
		return
	}
	t, ok := h.tier(w, r)
	if !ok {
		return
	}

	docs, err := h.contentService.Documents(r.Context(), t, chi.URLParam(r, "itemID"))
	if err != nil {
		respondContentError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}
