package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"builder/internal/ai"
	"builder/internal/dbschema"
	"builder/internal/domain"
)

// failureDetail is the error body of the elements and schema routes.
// Kept as a nested object for frontend compatibility.
func failureDetail(c fiber.Ctx, status int, what string, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"detail": fiber.Map{
			"error":   what,
			"message": err.Error(),
			"type":    fmt.Sprintf("%T", err),
		},
	})
}

func queryInt64(c fiber.Ctx, key string, def int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

func queryInt(c fiber.Ctx, key string, def int) int {
	return int(queryInt64(c, key, int64(def)))
}

// ── health ─────────────────────────────────────────────────

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Service is running",
	})
}

// ── elements ───────────────────────────────────────────────

func (s *Server) handleListElements(c fiber.Ctx) error {
	projectID := queryInt64(c, "project_id", domain.DefaultProjectID)
	records, err := s.elements.ListElements(c.Context(), projectID)
	if err != nil {
		return failureDetail(c, http.StatusInternalServerError, "Failed to load elements", err)
	}
	return c.JSON(records)
}

func (s *Server) handleReplaceElements(c fiber.Ctx) error {
	projectID := queryInt64(c, "project_id", domain.DefaultProjectID)

	var records []domain.ElementRecord
	if err := json.Unmarshal(c.Body(), &records); err != nil {
		return failureDetail(c, http.StatusBadRequest, "Invalid request body", err)
	}

	saved, err := s.elements.ReplaceElements(c.Context(), projectID, records)
	if err != nil {
		return failureDetail(c, http.StatusInternalServerError, "Failed to save elements", err)
	}
	return c.JSON(saved)
}

// ── projects ───────────────────────────────────────────────

func (s *Server) handleListProjects(c fiber.Ctx) error {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", 100)
	projects, err := s.projects.ListProjects(c.Context(), skip, limit)
	if err != nil {
		return failureDetail(c, http.StatusInternalServerError, "Failed to list projects", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(projects)
}

func (s *Server) handleCreateProject(c fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return failureDetail(c, http.StatusBadRequest, "Invalid request body", err)
	}
	p, err := s.projects.CreateProject(c.Context(), req.Name)
	if err != nil {
		return failureDetail(c, http.StatusBadRequest, "Failed to create project", err)
	}
	return c.Status(http.StatusCreated).JSON(p)
}

// ── schema introspection ───────────────────────────────────

func (s *Server) handleDBSchema(c fiber.Ctx) error {
	conn, err := dbschema.NewConnector(s.metaConfig())
	if err != nil {
		return failureDetail(c, http.StatusInternalServerError, "Failed to connect to database", err)
	}
	defer conn.Close()

	schema, err := conn.Introspect(c.Context())
	if err != nil {
		return failureDetail(c, http.StatusInternalServerError, "Failed to introspect database", err)
	}
	return c.JSON(schema)
}

// ── ai pass-through ────────────────────────────────────────

func (s *Server) handleGenerateCode(c fiber.Ctx) error {
	client := s.aiClient()
	if client == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"detail": "AI service is not configured",
		})
	}

	var req ai.GenerateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid json"})
	}

	code, err := client.GenerateCode(c.Context(), req)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(fiber.Map{"code": code})
}

func (s *Server) handleFixCode(c fiber.Ctx) error {
	client := s.aiClient()
	if client == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"detail": "AI service is not configured",
		})
	}

	var req struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "invalid json"})
	}

	code, err := client.FixCode(c.Context(), req.Code, req.Error)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	return c.JSON(fiber.Map{"code": code})
}
