package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"builder/internal/domain"
	"builder/internal/service"
)

type memElementStore struct {
	byProject map[int64][]domain.ElementRecord
}

func (m *memElementStore) ReplaceProjectElements(projectID int64, records []domain.ElementRecord) ([]domain.ElementRecord, error) {
	for i := range records {
		records[i].ID = int64(i + 1)
		records[i].ProjectID = projectID
	}
	m.byProject[projectID] = records
	return records, nil
}

func (m *memElementStore) ListElements(projectID int64) ([]domain.ElementRecord, error) {
	return m.byProject[projectID], nil
}

type memProjectStore struct{ projects []domain.Project }

func (m *memProjectStore) CreateProject(p *domain.Project) error {
	p.ID = int64(len(m.projects) + 1)
	m.projects = append(m.projects, *p)
	return nil
}

func (m *memProjectStore) GetProject(id int64) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("get project: not found")
}

func (m *memProjectStore) ListProjects(skip, limit int) ([]domain.Project, error) {
	return m.projects, nil
}

func (m *memProjectStore) EnsureDefault() error {
	m.projects = append(m.projects, domain.Project{ID: domain.DefaultProjectID, Name: "Default Project"})
	return nil
}

func newTestMCP(t *testing.T) *Server {
	t.Helper()
	projects := &memProjectStore{}
	projects.EnsureDefault()
	return New(Deps{
		Elements: service.NewElementService(&memElementStore{byProject: map[int64][]domain.ElementRecord{}}, &service.MockEmitter{}),
		Projects: service.NewProjectService(projects),
	})
}

func callArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func createButton(t *testing.T, s *Server) domain.ElementRecord {
	t.Helper()
	res, err := s.handleCreateElement(context.Background(), callArgs(map[string]any{
		"type": "button", "x": 10.0, "y": 20.0,
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var rec domain.ElementRecord
	if err := json.Unmarshal([]byte(resultText(t, res)), &rec); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	return rec
}

func TestCreateElementAppliesDefaults(t *testing.T) {
	s := newTestMCP(t)
	rec := createButton(t, s)

	if rec.ElementType != "button" || rec.X != 10 || rec.Y != 20 {
		t.Errorf("base fields: %+v", rec)
	}
	if rec.ElementID == "" {
		t.Error("expected generated element id")
	}
	if rec.Properties["width"] != 120.0 || rec.Properties["label"] != "Button" {
		t.Errorf("defaults: %v", rec.Properties)
	}
}

func TestCreateElementRejectsUnknownType(t *testing.T) {
	s := newTestMCP(t)
	_, err := s.handleCreateElement(context.Background(), callArgs(map[string]any{"type": "video"}))
	if err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestMoveAndResizeElement(t *testing.T) {
	s := newTestMCP(t)
	rec := createButton(t, s)

	if _, err := s.handleMoveElement(context.Background(), callArgs(map[string]any{
		"elementId": rec.ElementID, "x": 99.6, "y": 5.0,
	})); err != nil {
		t.Fatalf("move: %v", err)
	}

	// Resize below the button minimum of 80x32 clamps.
	res, err := s.handleResizeElement(context.Background(), callArgs(map[string]any{
		"elementId": rec.ElementID, "width": 10.0, "height": 10.0,
	}))
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	var updated domain.ElementRecord
	json.Unmarshal([]byte(resultText(t, res)), &updated)
	if updated.X != 100 || updated.Y != 5 {
		t.Errorf("move lost: %+v", updated)
	}
	if updated.Properties["width"] != 80.0 || updated.Properties["height"] != 32.0 {
		t.Errorf("resize must clamp to minimum: %v", updated.Properties)
	}
}

func TestUpdateElementProperties(t *testing.T) {
	s := newTestMCP(t)
	rec := createButton(t, s)

	res, err := s.handleUpdateElementProperties(context.Background(), callArgs(map[string]any{
		"elementId":  rec.ElementID,
		"properties": `{"label":"Buy now","variant":"outlined"}`,
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var updated domain.ElementRecord
	json.Unmarshal([]byte(resultText(t, res)), &updated)
	if updated.Properties["label"] != "Buy now" || updated.Properties["variant"] != "outlined" {
		t.Errorf("merge lost: %v", updated.Properties)
	}
	// Untouched keys survive the merge.
	if updated.Properties["color"] != "primary" {
		t.Errorf("existing keys must survive: %v", updated.Properties)
	}
}

func TestDeleteElement(t *testing.T) {
	s := newTestMCP(t)
	rec := createButton(t, s)

	res, err := s.handleDeleteElement(context.Background(), callArgs(map[string]any{
		"elementId": rec.ElementID,
	}))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(resultText(t, res), "deleted") {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}

	listed, err := s.handleListElements(context.Background(), callArgs(map[string]any{}))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var records []domain.ElementRecord
	json.Unmarshal([]byte(resultText(t, listed)), &records)
	if len(records) != 0 {
		t.Errorf("expected empty canvas, got %+v", records)
	}

	if _, err := s.handleDeleteElement(context.Background(), callArgs(map[string]any{
		"elementId": "missing",
	})); err == nil {
		t.Error("expected error for unknown element")
	}
}

func TestSetActiveProject(t *testing.T) {
	s := newTestMCP(t)

	if _, err := s.handleSetActiveProject(context.Background(), callArgs(map[string]any{
		"projectId": 42.0,
	})); err == nil {
		t.Error("expected error for unknown project")
	}

	res, err := s.handleSetActiveProject(context.Background(), callArgs(map[string]any{
		"projectId": 1.0,
	}))
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if !strings.Contains(resultText(t, res), "Default Project") {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}
}
