package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/application"
)

// AgencyScope resolves the acting agency for every request. The X-Agency-ID
// header wins; the configured default applies when the header is absent. The
// scope travels through the request context as an explicit value.
func AgencyScope(defaultAgencyID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agencyID := strings.TrimSpace(r.Header.Get("X-Agency-ID"))
			if agencyID == "" {
				agencyID = defaultAgencyID
			}
			ctx := ContextWithScope(r.Context(), application.Scope{AgencyID: agencyID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request-scoped logger and logs request boundaries.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", uuid.NewString(),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
