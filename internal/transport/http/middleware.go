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
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/upsight-edu/upsight/internal/authz"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/observability/logger"
	"github.com/upsight-edu/upsight/internal/token"
)

// Authorization principles:
// 1. The access tier is derived exclusively from verified token claims plus
//    the live university binding.
// 2. No header, query parameter, or request body field ever selects a
//    university for a tenant-scoped account.
// 3. Handlers never compare role strings; they consume the evaluated tier.

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware verifies the Bearer access token and injects the subject
// into the request context. Every failure is a uniform 401; the cause lands
// in the logs, never in the response.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := h.issuer.Verify(r.Context(), raw, token.UseAccess)
		if err != nil {
			slog.WarnContext(r.Context(), "access token rejected",
				logger.Error(err),
				logger.Path(r.URL.Path),
			)
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sub := authz.Subject{
			AccountID:  claims.Subject,
			EmployeeID: claims.EmployeeID,
			Role:       identity.Role(claims.Role),
		}
		next.ServeHTTP(w, r.WithContext(withSubject(r.Context(), sub)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return header[len(prefix):]
}

// tier evaluates the access tier for the authenticated subject, writing the
// error response itself when evaluation cannot proceed. The binding lookup
// behind it is live, so a revoked binding takes effect immediately.
func (h *Handler) tier(w http.ResponseWriter, r *http.Request) (authz.Tier, bool) {
	sub, ok := GetSubject(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return authz.Tier{}, false
	}
	t, err := h.evaluator.Evaluate(r.Context(), sub)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to evaluate access tier",
			logger.Error(err),
			logger.UserID(sub.AccountID),
		)
		respondError(w, http.StatusInternalServerError, "internal error")
		return authz.Tier{}, false
	}
	return t, true
}
