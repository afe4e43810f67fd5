// Package httptransport is the thin HTTP layer in front of the sync services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactsync/internal/platform/middleware"
	"contactsync/pkg/platform/httputil"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Handler    *Handler
	Validator  middleware.TokenValidator
	AdminToken string
	Logger     *slog.Logger
	// Checks are run by /health, keyed by dependency name.
	Checks map[string]HealthCheck
	// Metrics serves /metrics; nil uses the default Prometheus gatherer.
	Metrics http.Handler
}

// NewRouter wires the public health routes and the authenticated operator API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/health", healthHandler(cfg.Checks))

	r.Group(func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))
		r.Use(middleware.RequireOperator(cfg.Validator, cfg.AdminToken, cfg.Logger))
		cfg.Handler.Register(r)
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{"status": overall, "checks": results})
	}
}
