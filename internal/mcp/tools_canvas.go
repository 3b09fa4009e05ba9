package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"builder/internal/domain"
)

func (s *Server) registerCanvasTools() {
	// ── set_active_project ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_project",
		mcp.WithDescription("Set the project for subsequent tool calls. Defaults to project 1."),
		mcp.WithNumber("projectId", mcp.Description("Project ID"), mcp.Required()),
	), s.handleSetActiveProject)

	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List all canvas elements of the active project"),
		mcp.WithString("type", mcp.Description("Filter by element type (optional)")),
	), s.handleListElements)

	// ── create_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_element",
		mcp.WithDescription("Create a new element on the canvas"),
		mcp.WithString("type",
			mcp.Description("Element type: button, checkbox, text, image"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position (default 0)")),
		mcp.WithNumber("y", mcp.Description("Y position (default 0)")),
		mcp.WithString("properties",
			mcp.Description("JSON object of extra properties merged over the type defaults (optional)"),
		),
	), s.handleCreateElement)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element to a new position"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveElement)

	// ── resize_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Resize an element. Sizes below the type minimum are clamped."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeElement)

	// ── update_element_properties ──────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element_properties",
		mcp.WithDescription("Merge a JSON object of properties into an element"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("properties", mcp.Description("JSON object of properties"), mcp.Required()),
	), s.handleUpdateElementProperties)

	// ── delete_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Delete an element from the canvas"),
		mcp.WithString("elementId", mcp.Description("Element ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleSetActiveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, ok := args["projectId"].(float64)
	if !ok {
		return nil, fmt.Errorf("projectId is required")
	}
	p, err := s.projects.GetProject(ctx, int64(id))
	if err != nil {
		return nil, err
	}
	s.activeProjectID = p.ID
	return textResult(fmt.Sprintf("Active project set to %d (%s)", p.ID, p.Name)), nil
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	records, err := s.elements.ListElements(ctx, s.activeProjectID)
	if err != nil {
		return nil, err
	}
	if filter, ok := args["type"].(string); ok && filter != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.ElementType == filter {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return jsonResult(records)
}

func (s *Server) handleCreateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elementType, _ := args["type"].(string)
	x := getFloat(args, "x", 0)
	y := getFloat(args, "y", 0)

	el, err := domain.New(domain.ElementKind(elementType), x, y)
	if err != nil {
		return nil, err
	}
	record := recordFromElement(el)

	if raw, ok := args["properties"].(string); ok && raw != "" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(raw), &extra); err != nil {
			return nil, fmt.Errorf("parse properties: %w", err)
		}
		for k, v := range extra {
			record.Properties[k] = v
		}
	}

	records, err := s.elements.ListElements(ctx, s.activeProjectID)
	if err != nil {
		return nil, err
	}
	records = append(records, record)
	saved, err := s.elements.ReplaceElements(ctx, s.activeProjectID, records)
	if err != nil {
		return nil, err
	}
	return jsonResult(saved[len(saved)-1])
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutateElement(ctx, args, func(r *domain.ElementRecord) error {
		xv, xok := args["x"].(float64)
		yv, yok := args["y"].(float64)
		if !xok || !yok {
			return fmt.Errorf("x and y are required")
		}
		r.X = int(math.Round(xv))
		r.Y = int(math.Round(yv))
		return nil
	})
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutateElement(ctx, args, func(r *domain.ElementRecord) error {
		wv, wok := args["width"].(float64)
		hv, hok := args["height"].(float64)
		if !wok || !hok {
			return fmt.Errorf("width and height are required")
		}
		min := domain.MinSize(domain.ElementKind(r.ElementType))
		r.Properties["width"] = math.Max(wv, min.Width)
		r.Properties["height"] = math.Max(hv, min.Height)
		return nil
	})
}

func (s *Server) handleUpdateElementProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["properties"].(string)
	var extra map[string]any
	if err := json.Unmarshal([]byte(raw), &extra); err != nil {
		return nil, fmt.Errorf("parse properties: %w", err)
	}
	return s.mutateElement(ctx, args, func(r *domain.ElementRecord) error {
		for k, v := range extra {
			r.Properties[k] = v
		}
		return nil
	})
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	elementID, _ := args["elementId"].(string)
	if elementID == "" {
		return nil, fmt.Errorf("elementId is required")
	}

	records, err := s.elements.ListElements(ctx, s.activeProjectID)
	if err != nil {
		return nil, err
	}
	kept := records[:0]
	found := false
	for _, r := range records {
		if r.ElementID == elementID {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return nil, fmt.Errorf("element %s not found", elementID)
	}
	if _, err := s.elements.ReplaceElements(ctx, s.activeProjectID, kept); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Element %s deleted", elementID)), nil
}

// mutateElement loads the active project's elements, applies mutate to
// the named one, and syncs the full set back.
func (s *Server) mutateElement(ctx context.Context, args map[string]any, mutate func(*domain.ElementRecord) error) (*mcp.CallToolResult, error) {
	elementID, _ := args["elementId"].(string)
	if elementID == "" {
		return nil, fmt.Errorf("elementId is required")
	}

	records, err := s.elements.ListElements(ctx, s.activeProjectID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range records {
		if records[i].ElementID == elementID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("element %s not found", elementID)
	}
	if records[idx].Properties == nil {
		records[idx].Properties = map[string]any{}
	}
	if err := mutate(&records[idx]); err != nil {
		return nil, err
	}

	saved, err := s.elements.ReplaceElements(ctx, s.activeProjectID, records)
	if err != nil {
		return nil, err
	}
	for _, r := range saved {
		if r.ElementID == elementID {
			return jsonResult(r)
		}
	}
	return jsonResult(saved)
}

// recordFromElement flattens a freshly created element into its
// persisted record shape.
func recordFromElement(e *domain.Element) domain.ElementRecord {
	props := map[string]any{
		"width":  e.Width,
		"height": e.Height,
		"zIndex": e.ZIndex,
		"locked": e.Locked,
		"text":   e.DisplayText(),
	}
	switch {
	case e.Button != nil:
		props["label"] = e.Button.Label
		props["variant"] = string(e.Button.Variant)
		props["color"] = string(e.Button.Color)
	case e.Checkbox != nil:
		props["label"] = e.Checkbox.Label
		props["checked"] = e.Checkbox.Checked
	case e.Text != nil:
		props["content"] = e.Text.Content
		props["fontSize"] = e.Text.FontSize
		props["fontFamily"] = e.Text.FontFamily
		props["color"] = e.Text.Color
		props["textAlign"] = string(e.Text.TextAlign)
	case e.Image != nil:
		props["src"] = e.Image.Src
		props["alt"] = e.Image.Alt
		props["objectFit"] = string(e.Image.ObjectFit)
	}
	return domain.ElementRecord{
		ElementID:   e.ID,
		ElementType: string(e.Kind),
		X:           int(math.Round(e.X)),
		Y:           int(math.Round(e.Y)),
		Properties:  props,
	}
}
