package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"builder/internal/domain"
	"builder/internal/service"
)

// Server is the MCP server for the page builder. It exposes canvas
// tools so AI agents can inspect and edit a project's elements.
type Server struct {
	mcp      *server.MCPServer
	elements *service.ElementService
	projects *service.ProjectService

	// Active project context (set by set_active_project tool)
	activeProjectID int64
}

// Deps holds the dependencies passed to the MCP server.
type Deps struct {
	Elements *service.ElementService
	Projects *service.ProjectService
}

// New creates and configures a new MCP server with all canvas tools.
func New(deps Deps) *Server {
	s := &Server{
		elements:        deps.Elements,
		projects:        deps.Projects,
		activeProjectID: domain.DefaultProjectID,
	}

	s.mcp = server.NewMCPServer(
		"builder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerCanvasTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}
