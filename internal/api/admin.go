package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pizzabot/pizzabot/internal/auth"
	"github.com/pizzabot/pizzabot/internal/catalog"
)

func handleCatalogReload(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Seeder == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "RELOAD_NOT_CONFIGURED", "catalog reload is not configured", false, nil)
		return
	}
	count, err := deps.Seeder.Seed(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error(), true, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "RELOAD_FAILED", "catalog reload failed", true, map[string]any{"details": err.Error()})
		return
	}
	if deps.Logger != nil {
		identity, _ := auth.IdentityFromContext(r.Context())
		deps.Logger.InfoContext(r.Context(), "catalog reloaded over http",
			slog.String("by", identity.Name),
			slog.Int("items", count),
		)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "items": count})
}
