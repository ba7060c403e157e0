package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pizzabot/pizzabot/internal/auth"
	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/observability"
	"github.com/pizzabot/pizzabot/internal/session"
)

const maxRequestBodyBytes = 64 << 10

type ReadinessCheck func(ctx context.Context) error

type SessionStore interface {
	Create() (string, *session.Orchestrator, error)
	Get(id string) (*session.Orchestrator, error)
	Delete(id string) bool
}

type MenuSource interface {
	Items(ctx context.Context) ([]catalog.MenuItem, error)
	DescribeSchema() string
}

// CatalogSeeder reloads the menu from the configured seed source.
type CatalogSeeder interface {
	Seed(ctx context.Context) (int, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Sessions          SessionStore
	Menu              MenuSource
	ChatUI            ChatUIConfig
	// AdminAuth authenticates /v1/admin; admin routes are not mounted without it.
	AdminAuth func(http.Handler) http.Handler
	Seeder    CatalogSeeder
	UI        http.Handler
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(observability.TraceMiddleware)
	r.Use(observability.MetricsMiddleware)
	if deps.Logger != nil {
		r.Use(observability.LoggingMiddleware(deps.Logger))
	}
	r.Use(middleware.Recoverer)

	r.Get("/v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	r.Get("/v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	r.Method(http.MethodGet, "/v1/metrics", promhttp.Handler())

	r.Get("/v1/menu", func(w http.ResponseWriter, r *http.Request) {
		handleListMenu(deps, w, r)
	})
	r.Get("/v1/menu/schema", func(w http.ResponseWriter, r *http.Request) {
		handleMenuSchema(deps, w, r)
	})

	r.Route("/v1/chat", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Widget.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
			ExposedHeaders: []string{"X-Trace-ID"},
			MaxAge:         300,
		}))

		r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, deps.ChatUI.withDefaults())
		})
		r.Post("/sessions", func(w http.ResponseWriter, r *http.Request) {
			handleCreateSession(deps, w, r)
		})
		r.Route("/sessions/{session}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				handleGetSession(deps, w, r)
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				handleDeleteSession(deps, w, r)
			})
			r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
				handleAsk(deps, w, r)
			})
			r.Post("/clear", func(w http.ResponseWriter, r *http.Request) {
				handleClearSession(deps, w, r)
			})
		})
	})

	if deps.AdminAuth != nil {
		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(deps.AdminAuth)
			r.Use(auth.RequireRole(auth.RoleCatalogAdmin))
			r.Post("/catalog/reload", func(w http.ResponseWriter, r *http.Request) {
				handleCatalogReload(deps, w, r)
			})
		})
	}

	if deps.UI != nil {
		r.Handle("/*", deps.UI)
	}
	return r
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
