package api

import (
	"errors"
	"net/http"

	"github.com/pizzabot/pizzabot/internal/catalog"
)

func handleListMenu(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Menu == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "MENU_NOT_CONFIGURED", "menu dependency is not configured", false, nil)
		return
	}
	items, err := deps.Menu.Items(r.Context())
	if err != nil {
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", err.Error(), true, nil)
			return
		}
		writeError(r.Context(), w, http.StatusInternalServerError, "MENU_FETCH_FAILED", "failed to load menu", true, map[string]any{"details": err.Error()})
		return
	}
	if items == nil {
		items = []catalog.MenuItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func handleMenuSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Menu == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "MENU_NOT_CONFIGURED", "menu dependency is not configured", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"table": catalog.TableName, "schema": deps.Menu.DescribeSchema()})
}
