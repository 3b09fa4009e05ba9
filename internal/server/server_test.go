package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"builder/internal/config"
	"builder/internal/domain"
	"builder/internal/server"
	"builder/internal/service"
	"builder/internal/storage"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()
	cfg := config.Load()
	cfg.DBPath = filepath.Join(t.TempDir(), "builder.db")
	if mutate != nil {
		mutate(cfg)
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	projectStore := storage.NewProjectStore(db)
	if err := projectStore.EnsureDefault(); err != nil {
		t.Fatalf("ensure default project: %v", err)
	}

	emitter := &service.MockEmitter{}
	elements := service.NewElementService(storage.NewElementStore(db), emitter)
	projects := service.NewProjectService(projectStore)
	return server.New(cfg, elements, projects)
}

func doJSON(t *testing.T, s *server.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return resp, data
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	resp, body := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var parsed map[string]string
	json.Unmarshal(body, &parsed)
	if parsed["status"] != "ok" || parsed["message"] != "Service is running" {
		t.Errorf("body: %s", body)
	}
}

func TestElementsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)

	records := []domain.ElementRecord{
		{ElementID: "e1", ElementType: "button", X: 10, Y: 20,
			Properties: map[string]any{"text": "Go", "width": 120.0}},
	}
	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/elements/", records)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status %d: %s", resp.StatusCode, body)
	}
	var saved []domain.ElementRecord
	if err := json.Unmarshal(body, &saved); err != nil {
		t.Fatalf("decode saved: %v", err)
	}
	if len(saved) != 1 || saved[0].ID == 0 {
		t.Errorf("expected server id on saved record: %s", body)
	}

	resp, body = doJSON(t, s, http.MethodGet, "/api/v1/elements/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", resp.StatusCode)
	}
	var loaded []domain.ElementRecord
	json.Unmarshal(body, &loaded)
	if len(loaded) != 1 || loaded[0].ElementID != "e1" || loaded[0].Properties["text"] != "Go" {
		t.Errorf("round trip: %s", body)
	}
}

func TestElementsPostDeletesAbsent(t *testing.T) {
	s := newTestServer(t, nil)

	doJSON(t, s, http.MethodPost, "/api/v1/elements/", []domain.ElementRecord{
		{ElementID: "a", ElementType: "button"},
		{ElementID: "b", ElementType: "text"},
	})
	doJSON(t, s, http.MethodPost, "/api/v1/elements/", []domain.ElementRecord{
		{ElementID: "b", ElementType: "text"},
	})

	_, body := doJSON(t, s, http.MethodGet, "/api/v1/elements/", nil)
	var loaded []domain.ElementRecord
	json.Unmarshal(body, &loaded)
	if len(loaded) != 1 || loaded[0].ElementID != "b" {
		t.Errorf("expected only b to survive: %s", body)
	}
}

func TestElementsValidationErrorShape(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/elements/", []domain.ElementRecord{
		{ElementType: "button"}, // missing element_id
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var parsed struct {
		Detail struct {
			Error   string `json:"error"`
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, body)
	}
	if parsed.Detail.Error != "Failed to save elements" || parsed.Detail.Message == "" || parsed.Detail.Type == "" {
		t.Errorf("detail shape: %s", body)
	}
}

func TestProjectsCreateAndList(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/projects/", map[string]string{"name": "Site"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", resp.StatusCode, body)
	}

	_, body = doJSON(t, s, http.MethodGet, "/api/v1/projects/?skip=0&limit=10", nil)
	var projects []domain.Project
	json.Unmarshal(body, &projects)
	if len(projects) != 2 { // default + Site
		t.Errorf("expected 2 projects, got %s", body)
	}

	resp, _ = doJSON(t, s, http.MethodPost, "/api/v1/projects/", map[string]string{"name": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty name must 400, got %d", resp.StatusCode)
	}
}

func TestDBSchemaFallsBackToOwnDatabase(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := doJSON(t, s, http.MethodGet, "/api/db/schema", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var schema map[string]struct {
		Columns []struct {
			Name       string `json:"name"`
			PrimaryKey bool   `json:"primary_key"`
		} `json:"columns"`
		ForeignKeys []struct {
			ReferredTable string `json:"referred_table"`
		} `json:"foreign_keys"`
	}
	if err := json.Unmarshal(body, &schema); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	elements, ok := schema["canvas_elements"]
	if !ok {
		t.Fatalf("canvas_elements missing from schema: %s", body)
	}
	if len(elements.ForeignKeys) != 1 || elements.ForeignKeys[0].ReferredTable != "projects" {
		t.Errorf("expected FK to projects: %s", body)
	}
}

func TestAIUnconfiguredReturns503(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := doJSON(t, s, http.MethodPost, "/api/v1/ai/generate-code", map[string]string{"prompt": "x"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("generate status %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, s, http.MethodPost, "/api/ai/fix-code", map[string]string{"code": "x"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("fix status %d", resp.StatusCode)
	}
}

func TestAIPassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"code": "```jsx\n<App />\n```"})
	}))
	defer upstream.Close()

	s := newTestServer(t, func(cfg *config.Config) {
		cfg.AIBaseURL = upstream.URL
	})

	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/ai/generate-code", map[string]string{"prompt": "page"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var parsed map[string]string
	json.Unmarshal(body, &parsed)
	if parsed["code"] != "<App />" {
		t.Errorf("fences must be stripped by the proxy: %s", body)
	}
}
