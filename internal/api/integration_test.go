//go:build integration

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pizzabot/pizzabot/internal/catalog/sqlstore"
	"github.com/pizzabot/pizzabot/internal/compose"
	"github.com/pizzabot/pizzabot/internal/config"
	"github.com/pizzabot/pizzabot/internal/llm"
	"github.com/pizzabot/pizzabot/internal/migrations"
	"github.com/pizzabot/pizzabot/internal/nl2sql"
	"github.com/pizzabot/pizzabot/internal/seed"
	"github.com/pizzabot/pizzabot/internal/session"
)

func TestChatOverPostgresCatalog(t *testing.T) {
	adminDSN := strings.TrimSpace(os.Getenv("PIZZABOT_TEST_CATALOG_DSN"))
	if adminDSN == "" {
		t.Skip("PIZZABOT_TEST_CATALOG_DSN is not set")
	}

	testDSN, cleanup := createTemporaryDatabase(t, adminDSN)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	db, err := sqlstore.Open(ctx, sqlstore.DBConfig{Driver: sqlstore.DriverPostgres, DSN: testDSN})
	if err != nil {
		t.Fatalf("sqlstore.Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := migrations.NewRunner().Up(ctx, db, 0); err != nil {
		t.Fatalf("runner.Up() error = %v", err)
	}
	store := sqlstore.New(db, sqlstore.Options{Driver: sqlstore.DriverPostgres, LockTimeout: 5 * time.Second})
	for i := 0; i < 2; i++ {
		if err := store.Reload(ctx, seed.Builtin()); err != nil {
			t.Fatalf("Reload() #%d error = %v", i+1, err)
		}
	}

	generator := llm.GeneratorFunc(func(_ context.Context, prompt llm.Prompt) (string, error) {
		if prompt.Purpose == "translate" {
			return "SELECT name, preco FROM pizza ORDER BY preco DESC LIMIT 1", nil
		}
		return prompt.User, nil
	})
	translator := nl2sql.NewLLMTranslator(generator, nl2sql.Options{})
	composer := compose.New(generator, nil, nil)
	registry := session.NewRegistry(func() *session.Orchestrator {
		return session.New(session.Deps{Translator: translator, Store: store, Composer: composer})
	}, time.Minute, 10)

	cfg, err := config.Load("pizzabot-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	h := NewHandler(cfg, Dependencies{Sessions: registry, Menu: store, Readiness: store.HealthCheck})

	menu := doJSON(t, h, http.MethodGet, "/v1/menu", nil, http.StatusOK)
	if menu["count"].(float64) != 43 {
		t.Fatalf("menu count = %v", menu["count"])
	}

	created := doJSON(t, h, http.MethodPost, "/v1/chat/sessions", nil, http.StatusCreated)
	id := created["session_id"].(string)
	answered := doJSON(t, h, http.MethodPost, "/v1/chat/sessions/"+id+"/ask", map[string]any{"question": "Qual a pizza mais cara?"}, http.StatusOK)
	if !strings.Contains(answered["answer"].(string), "Camarão") {
		t.Fatalf("answer = %v", answered["answer"])
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload map[string]any, expectedStatus int) map[string]any {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != expectedStatus {
		t.Fatalf("%s %s status = %d body=%s", method, path, rr.Code, rr.Body.String())
	}
	var decoded map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func createTemporaryDatabase(t *testing.T, adminDSN string) (string, func()) {
	t.Helper()

	parsed, err := url.Parse(adminDSN)
	if err != nil {
		t.Fatalf("url.Parse(adminDSN) error = %v", err)
	}
	adminDBName := strings.TrimPrefix(parsed.Path, "/")
	if adminDBName == "" {
		t.Fatal("admin DSN must include a database name")
	}

	adminDB, err := sql.Open("pgx", adminDSN)
	if err != nil {
		t.Fatalf("sql.Open(adminDSN) error = %v", err)
	}

	name := fmt.Sprintf("pizzabot_it_api_%d", time.Now().UnixNano())
	if _, err := adminDB.Exec(`CREATE DATABASE ` + name); err != nil {
		t.Fatalf("CREATE DATABASE failed: %v", err)
	}

	testURL := *parsed
	testURL.Path = "/" + name
	testDSN := testURL.String()

	cleanup := func() {
		defer func() { _ = adminDB.Close() }()
		if _, err := adminDB.Exec(`SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1`, name); err != nil {
			t.Fatalf("terminate test db sessions: %v", err)
		}
		if _, err := adminDB.Exec(`DROP DATABASE ` + name); err != nil {
			t.Fatalf("DROP DATABASE failed: %v", err)
		}
	}
	return testDSN, cleanup
}
