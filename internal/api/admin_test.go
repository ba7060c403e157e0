package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pizzabot/pizzabot/internal/auth"
	"github.com/pizzabot/pizzabot/internal/catalog"
)

type fakeSeeder struct {
	calls int
	count int
	err   error
}

func (f *fakeSeeder) Seed(context.Context) (int, error) {
	f.calls++
	return f.count, f.err
}

func TestCatalogReloadRequiresAdminKey(t *testing.T) {
	validator, err := auth.NewStaticAPIKeyValidator("k1:ops:catalog_admin,k2:bot:viewer")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	seeder := &fakeSeeder{count: 43}
	h := NewHandler(loadConfig(t, nil), Dependencies{
		AdminAuth: auth.Middleware(nil, validator),
		Seeder:    seeder,
	})

	cases := []struct {
		key    string
		status int
	}{
		{key: "", status: http.StatusUnauthorized},
		{key: "k2", status: http.StatusForbidden},
		{key: "k1", status: http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/catalog/reload", nil)
		if tc.key != "" {
			req.Header.Set("X-API-Key", tc.key)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != tc.status {
			t.Fatalf("key %q status = %d, want %d, body=%s", tc.key, rr.Code, tc.status, rr.Body.String())
		}
		if tc.status == http.StatusOK {
			body := decodeBody(t, rr)
			if body["items"].(float64) != 43 {
				t.Fatalf("body = %#v", body)
			}
		}
	}
	if seeder.calls != 1 {
		t.Fatalf("seeder calls = %d, want 1", seeder.calls)
	}
}

func TestCatalogReloadMapsUnavailable(t *testing.T) {
	validator, err := auth.NewStaticAPIKeyValidator("k1:ops:catalog_admin")
	if err != nil {
		t.Fatalf("NewStaticAPIKeyValidator() error = %v", err)
	}
	h := NewHandler(loadConfig(t, nil), Dependencies{
		AdminAuth: auth.Middleware(nil, validator),
		Seeder:    &fakeSeeder{err: catalog.ErrStoreUnavailable},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/catalog/reload", nil)
	req.Header.Set("X-API-Key", "k1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if body := decodeBody(t, rr); body["error_code"] != "STORE_UNAVAILABLE" {
		t.Fatalf("body = %#v", body)
	}
}

func TestAdminRoutesAbsentWithoutAuth(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Seeder: &fakeSeeder{}})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/admin/catalog/reload", nil))
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want route to be unmounted", rr.Code)
	}
}
