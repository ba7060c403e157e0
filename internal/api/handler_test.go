package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/compose"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/nl2sql"
	"github.com/pizzabot/pizzabot/internal/session"
)

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Trace-ID") == "" {
		t.Fatal("expected trace id header")
	}
}

func TestReadyEndpointReturns503WhenDependencyFails(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		Readiness: func(context.Context) error {
			return errors.New("dependency down")
		},
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["error_code"] != "NOT_READY" || body["retryable"] != true {
		t.Fatalf("body = %#v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "pizzabot_http_requests_total") {
		t.Fatal("metrics output is missing http request counter")
	}
}

func TestChatSessionLifecycle(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Sessions: newTestRegistry()})

	created := doRequest(t, h, http.MethodPost, "/v1/chat/sessions", "", http.StatusCreated)
	id, _ := created["session_id"].(string)
	if id == "" {
		t.Fatalf("session_id missing: %#v", created)
	}
	assertTurns(t, created, 1)

	answered := doRequest(t, h, http.MethodPost, "/v1/chat/sessions/"+id+"/ask", `{"question":"Qual a pizza mais cara?"}`, http.StatusOK)
	if answered["answer"] != "A pizza mais cara é a Camarão." {
		t.Fatalf("answer = %v", answered["answer"])
	}
	assertTurns(t, answered, 3)

	fetched := doRequest(t, h, http.MethodGet, "/v1/chat/sessions/"+id, "", http.StatusOK)
	assertTurns(t, fetched, 3)

	cleared := doRequest(t, h, http.MethodPost, "/v1/chat/sessions/"+id+"/clear", "", http.StatusOK)
	assertTurns(t, cleared, 1)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/chat/sessions/"+id, nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	doRequest(t, h, http.MethodGet, "/v1/chat/sessions/"+id, "", http.StatusNotFound)
}

func TestAskValidatesRequest(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{Sessions: newTestRegistry()})
	created := doRequest(t, h, http.MethodPost, "/v1/chat/sessions", "", http.StatusCreated)
	id := created["session_id"].(string)

	body := doRequest(t, h, http.MethodPost, "/v1/chat/sessions/"+id+"/ask", `{"question":"   "}`, http.StatusBadRequest)
	if body["error_code"] != "QUESTION_REQUIRED" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
	body = doRequest(t, h, http.MethodPost, "/v1/chat/sessions/"+id+"/ask", `{"q":"x"}`, http.StatusBadRequest)
	if body["error_code"] != "INVALID_JSON" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
	body = doRequest(t, h, http.MethodPost, "/v1/chat/sessions/missing/ask", `{"question":"oi"}`, http.StatusNotFound)
	if body["error_code"] != "SESSION_NOT_FOUND" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}

func TestCreateSessionRejectsWhenFull(t *testing.T) {
	registry := session.NewRegistry(func() *session.Orchestrator { return session.New(session.Deps{}) }, time.Hour, 1)
	h := NewHandler(loadConfig(t, nil), Dependencies{Sessions: registry})

	doRequest(t, h, http.MethodPost, "/v1/chat/sessions", "", http.StatusCreated)
	body := doRequest(t, h, http.MethodPost, "/v1/chat/sessions", "", http.StatusServiceUnavailable)
	if body["error_code"] != "TOO_MANY_SESSIONS" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}

func TestChatRoutesNotConfigured(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	doRequest(t, h, http.MethodPost, "/v1/chat/sessions", "", http.StatusNotImplemented)
	doRequest(t, h, http.MethodGet, "/v1/menu", "", http.StatusNotImplemented)
}

func TestChatConfigEndpoint(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{})
	body := doRequest(t, h, http.MethodGet, "/v1/chat/config", "", http.StatusOK)

	if body["title"] != "Pizzaria Delícia de Vitória-ES" || body["bot_name"] != "Pizzabot" {
		t.Fatalf("body = %#v", body)
	}
	if body["greeting"] != session.Greeting {
		t.Fatalf("greeting = %v", body["greeting"])
	}
	examples, _ := body["example_questions"].([]any)
	if len(examples) != 4 {
		t.Fatalf("example_questions = %#v", body["example_questions"])
	}
}

func TestChatCORSPreflightForWidget(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"PIZZABOT_WIDGET_ALLOWED_ORIGINS": "https://loja.example"})
	h := NewHandler(cfg, Dependencies{Sessions: newTestRegistry()})

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat/sessions", nil)
	req.Header.Set("Origin", "https://loja.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://loja.example" {
		t.Fatalf("Access-Control-Allow-Origin = %q (status %d)", got, rr.Code)
	}

	req = httptest.NewRequest(http.MethodOptions, "/v1/chat/sessions", nil)
	req.Header.Set("Origin", "https://other.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Access-Control-Allow-Origin = %q for disallowed origin", got)
	}
}

func TestMenuEndpoints(t *testing.T) {
	menu := &fakeMenu{items: []catalog.MenuItem{
		{ID: 17, Name: "Camarão", Size: catalog.SizeLarge, Price: 42.5, Ingredients: "Camarão"},
	}}
	h := NewHandler(loadConfig(t, nil), Dependencies{Menu: menu})

	body := doRequest(t, h, http.MethodGet, "/v1/menu", "", http.StatusOK)
	if body["count"].(float64) != 1 {
		t.Fatalf("count = %v", body["count"])
	}
	items := body["items"].([]any)
	first := items[0].(map[string]any)
	if first["name"] != "Camarão" || first["size"] != "Grande" {
		t.Fatalf("item = %#v", first)
	}

	body = doRequest(t, h, http.MethodGet, "/v1/menu/schema", "", http.StatusOK)
	if !strings.Contains(body["schema"].(string), "ingredientes") {
		t.Fatalf("schema = %v", body["schema"])
	}

	menu.err = catalog.ErrStoreUnavailable
	body = doRequest(t, h, http.MethodGet, "/v1/menu", "", http.StatusServiceUnavailable)
	if body["error_code"] != "STORE_UNAVAILABLE" {
		t.Fatalf("error_code = %v", body["error_code"])
	}
}

func TestCombineReadinessChecksStopsOnFirstFailure(t *testing.T) {
	order := make([]int, 0, 3)
	combined := CombineReadinessChecks(
		func(_ context.Context) error {
			order = append(order, 1)
			return nil
		},
		nil,
		func(_ context.Context) error {
			order = append(order, 2)
			return errors.New("boom")
		},
		func(_ context.Context) error {
			order = append(order, 3)
			return nil
		},
	)

	err := combined(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("execution order = %#v", order)
	}
}

func TestUIHandlerServesNonAPIRoutes(t *testing.T) {
	h := NewHandler(loadConfig(t, nil), Dependencies{
		UI: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "<html>ok</html>")
		}),
	})

	for _, target := range []string{"/", "/widget.js"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, body=%s", target, rr.Code, rr.Body.String())
		}
	}
}

func newTestRegistry() *session.Registry {
	translator := translatorFunc(func(_ context.Context, req nl2sql.Request) (nl2sql.Result, error) {
		return nl2sql.Result{Query: "SELECT name FROM pizza ORDER BY preco DESC LIMIT 1", IsValid: true}, nil
	})
	store := &fakeMenu{}
	composer := composerFunc(func(context.Context, compose.Input) string {
		return "A pizza mais cara é a Camarão."
	})
	return session.NewRegistry(func() *session.Orchestrator {
		return session.New(session.Deps{Translator: translator, Store: store, Composer: composer})
	}, time.Hour, 100)
}

type translatorFunc func(ctx context.Context, req nl2sql.Request) (nl2sql.Result, error)

func (f translatorFunc) Translate(ctx context.Context, req nl2sql.Request) (nl2sql.Result, error) {
	return f(ctx, req)
}

type composerFunc func(ctx context.Context, in compose.Input) string

func (f composerFunc) Compose(ctx context.Context, in compose.Input) string {
	return f(ctx, in)
}

type fakeMenu struct {
	items []catalog.MenuItem
	err   error
}

func (f *fakeMenu) Items(context.Context) ([]catalog.MenuItem, error) {
	return f.items, f.err
}

func (f *fakeMenu) Execute(context.Context, string) (catalog.Result, error) {
	return catalog.Result{Columns: []string{"name"}, Rows: [][]any{{"Camarão"}}}, nil
}

func (f *fakeMenu) DescribeSchema() string {
	return catalog.DescribeSchema()
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string, expectedStatus int) map[string]any {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != expectedStatus {
		t.Fatalf("%s %s status = %d, want %d, body=%s", method, target, rr.Code, expectedStatus, rr.Body.String())
	}
	return decodeBody(t, rr)
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v (body=%q)", err, rr.Body.String())
	}
	return body
}

func assertTurns(t *testing.T, body map[string]any, want int) {
	t.Helper()
	turns, _ := body["turns"].([]any)
	if len(turns) != want {
		t.Fatalf("len(turns) = %d, want %d (%#v)", len(turns), want, body["turns"])
	}
}

func loadConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	cfg, err := config.Load("pizzabot-api", mapLookup(env))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
