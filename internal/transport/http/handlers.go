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
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/authz"
	"github.com/upsight-edu/upsight/internal/content"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/observability/logger"
	"github.com/upsight-edu/upsight/internal/roster"
	"github.com/upsight-edu/upsight/internal/tenant"
	"github.com/upsight-edu/upsight/internal/token"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	authenticator  *identity.Authenticator
	provisioner    *identity.Provisioner
	staff          identity.StaffRepository
	issuer         *token.Issuer
	evaluator      *authz.Evaluator
	contentService *content.Service
	rosterService  *roster.Service
	tenants        tenant.Repository
	auditLogger    audit.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authenticator *identity.Authenticator,
	provisioner *identity.Provisioner,
	staff identity.StaffRepository,
	issuer *token.Issuer,
	evaluator *authz.Evaluator,
	contentService *content.Service,
	rosterService *roster.Service,
	tenants tenant.Repository,
	auditLogger audit.Logger,
) *Handler {
	return &Handler{
		authenticator:  authenticator,
		provisioner:    provisioner,
		staff:          staff,
		issuer:         issuer,
		evaluator:      evaluator,
		contentService: contentService,
		rosterService:  rosterService,
		tenants:        tenants,
		auditLogger:    auditLogger,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Token endpoints take the refresh token in the body, not the header.
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/profile", h.GetProfile)

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", h.ListStaff)
				r.Post("/", h.ProvisionStaff)
				r.Get("/{staffID}", h.GetStaff)
			})

			r.Route("/universities", func(r chi.Router) {
				r.Get("/", h.ListUniversities)
				r.Get("/{universityID}", h.GetUniversity)
			})

			r.Route("/content/{kind}", func(r chi.Router) {
				r.Get("/", h.ListContent)
				r.Post("/", h.CreateContent)
				r.Route("/{itemID}", func(r chi.Router) {
					r.Get("/", h.GetContent)
					r.Put("/", h.UpdateContent)
					r.Delete("/", h.DeleteContent)
					r.Get("/documents", h.ListDocuments)
					r.Post("/documents", h.AttachDocument)
				})
			})

			r.Route("/students", func(r chi.Router) {
				r.Get("/", h.ListStudents)
				r.Get("/{studentID}", h.GetStudent)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "upsight",
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// Login authenticates an employee id and password and issues a token pair.
// Every authentication failure produces the same 401 body regardless of
// cause.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.authenticator.Authenticate(r.Context(), req.EmployeeID, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.issuer.Issue(r.Context(), account)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token pair",
			logger.Error(err),
			logger.UserID(account.ID),
		)
		respondError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"refresh": pair.Refresh,
		"access":  pair.Access,
		"user": map[string]any{
			"id":    account.ID,
			"email": account.Email,
			"name":  account.Name,
			"role":  string(account.PrimaryRole()),
		},
	})
}

// LogoutRequest carries the refresh token to revoke
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// Logout revokes the refresh token. Revoking an already revoked or expired
// token succeeds again; only a malformed token is an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		respondError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	if err := h.issuer.Revoke(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, token.ErrAuthentication) {
			respondError(w, http.StatusBadRequest, "invalid refresh token")
			return
		}
		slog.ErrorContext(r.Context(), "failed to revoke refresh token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// RefreshRequest carries the refresh token to exchange
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		respondError(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	access, err := h.issuer.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, token.ErrAuthentication) {
			respondError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		slog.ErrorContext(r.Context(), "failed to refresh access token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"access": access,
	})
}

// GetProfile returns the authenticated staff member's profile. Display
// fields are read live from the profile store; the role comes from the
// token claim.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := GetSubject(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	profile, err := h.staff.GetByAccountID(r.Context(), sub.AccountID)
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "profile not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load staff profile",
			logger.Error(err),
			logger.UserID(sub.AccountID),
		)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	body := staffProfileResponse(profile)
	body["role"] = string(sub.Role)
	respondJSON(w, http.StatusOK, body)
}

func staffProfileResponse(p *identity.StaffProfile) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"employee_id": p.EmployeeID,
		"name_uz":     p.NameUz,
		"name_ko":     p.NameKo,
		"email":       p.Email,
		"phone":       p.Phone,
		"position":    p.Position,
		"status":      p.Status,
	}
}

// denyStaffAccess writes the 403 for non-full tiers on the staff
// administration endpoints and records the denial.
func (h *Handler) denyStaffAccess(w http.ResponseWriter, r *http.Request, operation string) {
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeAccessDenied,
		Resource:  "staff_profile",
		IPAddress: getIPAddress(r),
		Metadata:  map[string]any{"operation": operation},
	})
	respondError(w, http.StatusForbidden, "permission denied")
}

// ListStaff lists employee records. Full access only.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}
	if !t.Full() {
		h.denyStaffAccess(w, r, "list")
		return
	}

	profiles, err := h.staff.List(r.Context(), 100, 0)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list staff profiles", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list staff")
		return
	}

	staff := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		staff = append(staff, staffProfileResponse(p))
	}
	respondJSON(w, http.StatusOK, map[string]any{"staff": staff})
}

// GetStaff retrieves a single employee record. Full access only.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}
	if !t.Full() {
		h.denyStaffAccess(w, r, "detail")
		return
	}

	profile, err := h.staff.GetByID(r.Context(), chi.URLParam(r, "staffID"))
	if err != nil {
		if errors.Is(err, identity.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "staff profile not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get staff profile", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get staff profile")
		return
	}
	respondJSON(w, http.StatusOK, staffProfileResponse(profile))
}

// ProvisionStaffRequest represents a new staff member
type ProvisionStaffRequest struct {
	EmployeeID string `json:"employee_id"`
	NameUz     string `json:"name_uz"`
	NameKo     string `json:"name_ko"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Position   string `json:"position"`
	Password   string `json:"password"`
}

// ProvisionStaff creates a staff profile together with its login account.
// Reserved for full-access staff.
func (h *Handler) ProvisionStaff(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}
	if !t.Full() {
		h.denyStaffAccess(w, r, "provision")
		return
	}

	var req ProvisionStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmployeeID == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "employee_id and password are required")
		return
	}

	profile := &identity.StaffProfile{
		EmployeeID: req.EmployeeID,
		NameUz:     req.NameUz,
		NameKo:     req.NameKo,
		Email:      req.Email,
		Phone:      req.Phone,
		Position:   req.Position,
	}

	account, err := h.provisioner.Provision(r.Context(), profile, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateIdentifier):
			respondError(w, http.StatusConflict, "employee id already in use")
		default:
			slog.ErrorContext(r.Context(), "failed to provision staff",
				logger.Error(err),
				logger.EmployeeID(req.EmployeeID),
			)
			respondError(w, http.StatusInternalServerError, "failed to provision staff")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"id":          profile.ID,
		"employee_id": profile.EmployeeID,
		"account_id":  account.ID,
		"role":        string(account.PrimaryRole()),
	})
}

// denyUniversityAccess writes the 403 for non-full tiers on the university
// administration endpoints and records the denial.
func (h *Handler) denyUniversityAccess(w http.ResponseWriter, r *http.Request) {
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeAccessDenied,
		Resource:  "university",
		IPAddress: getIPAddress(r),
	})
	respondError(w, http.StatusForbidden, "permission denied")
}

// ListUniversities lists registered universities. Reserved for full-access
// staff; university managers administer content, not the university registry.
func (h *Handler) ListUniversities(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}
	if !t.Full() {
		h.denyUniversityAccess(w, r)
		return
	}

	universities, err := h.tenants.List(r.Context(), 100, 0)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list universities", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list universities")
		return
	}
	if universities == nil {
		universities = []*tenant.University{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"universities": universities})
}

// GetUniversity retrieves a single university. Full access only.
func (h *Handler) GetUniversity(w http.ResponseWriter, r *http.Request) {
	t, ok := h.tier(w, r)
	if !ok {
		return
	}
	if !t.Full() {
		h.denyUniversityAccess(w, r)
		return
	}

	u, err := h.tenants.GetByID(r.Context(), chi.URLParam(r, "universityID"))
	if err != nil {
		if errors.Is(err, tenant.ErrUniversityNotFound) {
			respondError(w, http.StatusNotFound, "university not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get university", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get university")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
