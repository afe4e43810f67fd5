package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"contactsync/internal/platform/servicetoken"
)

// TokenValidator validates inbound service tokens.
type TokenValidator interface {
	Validate(tokenString string) (*servicetoken.Claims, error)
}

// RequireOperator admits requests that carry either a valid service bearer
// token or the configured admin token. An empty admin token disables that path.
func RequireOperator(validator TokenValidator, adminToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if adminToken != "" {
				given := r.Header.Get("X-Admin-Token")
				if given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(adminToken)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
			}
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && validator != nil {
				if _, err := validator.Validate(token); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}
			logger.WarnContext(ctx, "unauthorized operator request",
				"request_id", chimw.GetReqID(ctx),
				"path", r.URL.Path,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"service token or admin token required"}`))
		})
	}
}
