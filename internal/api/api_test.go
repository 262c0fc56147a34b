package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/backend/backendtest"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/db"
	"github.com/proplex/proplex-admin/internal/session"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	backend *backendtest.Server
	server  *httptest.Server
	cookie  string
}

func setupTestServer(t *testing.T, modules ...string) *testEnv {
	t.Helper()
	fake := backendtest.New(t)
	fake.Modules = modules

	client, err := backend.New(fake.BaseURL())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	sessions := session.NewService(session.NewSQLStore(db.NewTestDB(t)), client, session.Config{Secret: testJWTSecret})
	client.Authorize(sessions)

	router := NewRouter(Deps{
		Sessions: sessions,
		Backend:  client,
		Registry: crud.DefaultRegistry(),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	_, cookie, err := sessions.Login(context.Background(), fake.Email, fake.Password, "en")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return &testEnv{backend: fake, server: server, cookie: cookie}
}

func (e *testEnv) get(t *testing.T, path string, withCookie bool) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if withCookie {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: e.cookie})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.get(t, "/api/health", false)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestSessionEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp, _ := env.get(t, "/api/session", false)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without cookie, got %d", resp.StatusCode)
	}

	resp, body := env.get(t, "/api/session", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := body["data"].(map[string]any)
	user, _ := data["user"].(map[string]any)
	if user["name"] != "Admin" {
		t.Errorf("expected user Admin, got %v", data)
	}
	if _, leaked := data["Token"]; leaked {
		t.Error("session JSON must not expose the backend token")
	}
}

func TestListEntity(t *testing.T) {
	env := setupTestServer(t)
	env.backend.SetList("owner/areas", map[string]any{"id": 1, "name": "Maadi"})

	resp, body := env.get(t, "/api/entities/areas?locale=ar", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected 1 item, got %v", body["data"])
	}
	table, _ := body["table"].(map[string]any)
	rows, _ := table["Rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %v", table)
	}
	cells := rows[0].(map[string]any)["Cells"].([]any)
	if cells[0] != "Maadi" {
		t.Errorf("expected Maadi, got %v", cells[0])
	}

	last, ok := env.backend.Last(http.MethodGet)
	if !ok || last.Path != "owner/areas" || last.Lang != "ar" {
		t.Errorf("unexpected backend call %+v", last)
	}
}

func TestGetEntity(t *testing.T) {
	env := setupTestServer(t)
	env.backend.SetList("owner/areas", map[string]any{"id": 1, "name": "Maadi"})

	resp, body := env.get(t, "/api/entities/areas/1", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data, _ := body["data"].(map[string]any)
	if data["name"] != "Maadi" {
		t.Errorf("expected Maadi, got %v", data)
	}

	resp, _ = env.get(t, "/api/entities/areas/99", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing record, got %d", resp.StatusCode)
	}
}

func TestUnknownEntity(t *testing.T) {
	env := setupTestServer(t)

	resp, _ := env.get(t, "/api/entities/spaceships", true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestModuleGating(t *testing.T) {
	env := setupTestServer(t, "areas")

	resp, _ := env.get(t, "/api/entities/agents", true)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for agents, got %d", resp.StatusCode)
	}
	env.backend.SetList(backend.EndpointAreas, map[string]any{"id": 1, "en": map[string]any{"name": "Maadi"}})
	resp, body := env.get(t, "/api/entities/areas", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for areas, got %d", resp.StatusCode)
	}
	if data, _ := body["data"].([]any); len(data) != 1 {
		t.Errorf("expected 1 area, got %v", body["data"])
	}
}

func TestBackendUnauthorizedDropsSession(t *testing.T) {
	env := setupTestServer(t)
	env.backend.Fail(http.MethodGet, "owner/areas", http.StatusUnauthorized, "Unauthenticated.")

	resp, _ := env.get(t, "/api/entities/areas", true)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp, _ = env.get(t, "/api/session", true)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected session to be invalidated, got %d", resp.StatusCode)
	}
}

func TestBackendFailureMessage(t *testing.T) {
	env := setupTestServer(t)
	env.backend.Fail(http.MethodGet, "owner/areas", http.StatusInternalServerError, "database down")

	resp, body := env.get(t, "/api/entities/areas", true)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	if body["error"] != "database down" {
		t.Errorf("expected backend message, got %v", body["error"])
	}
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}
