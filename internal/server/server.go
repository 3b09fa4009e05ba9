package server

import (
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"builder/internal/ai"
	"builder/internal/config"
	"builder/internal/dbschema"
	"builder/internal/service"
)

// ─────────────────────────────────────────────────────────────
// HTTP server
// ─────────────────────────────────────────────────────────────

// Server exposes the canvas persistence API over HTTP.
type Server struct {
	app      *fiber.App
	elements *service.ElementService
	projects *service.ProjectService

	// reconfigurable at runtime via ApplyConfig
	mu     sync.RWMutex
	ai     *ai.Client
	meta   dbschema.Config
	dbPath string
}

// New wires the routes and middleware.
func New(cfg *config.Config, elements *service.ElementService, projects *service.ProjectService) *Server {
	s := &Server{
		elements: elements,
		projects: projects,
	}
	s.ApplyConfig(cfg)

	app := fiber.New(fiber.Config{AppName: "builder"})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.CORSOrigins},
		AllowHeaders: []string{"*"},
		AllowMethods: []string{"*"},
	}))

	api := app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Get("/elements/", s.handleListElements)
	api.Post("/elements/", s.handleReplaceElements)
	api.Get("/projects/", s.handleListProjects)
	api.Post("/projects/", s.handleCreateProject)
	api.Post("/ai/generate-code", s.handleGenerateCode)

	// These two predate the /v1 prefix and keep their paths for
	// frontend compatibility.
	app.Get("/api/db/schema", s.handleDBSchema)
	app.Post("/api/ai/fix-code", s.handleFixCode)

	s.app = app
	return s
}

// ApplyConfig swaps out the runtime-tunable parts of the configuration.
// Safe to call while the server is running.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.AIBaseURL != "" {
		s.ai = ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey)
	} else {
		s.ai = nil
	}
	s.meta = dbschema.Config{
		Driver:   cfg.Meta.Driver,
		Host:     cfg.Meta.Host,
		Port:     cfg.Meta.Port,
		Database: cfg.Meta.Database,
		Username: cfg.Meta.Username,
		Password: cfg.Meta.Password,
		SSLMode:  cfg.Meta.SSLMode,
	}
	s.dbPath = cfg.DBPath
}

func (s *Server) aiClient() *ai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ai
}

// metaConfig returns the metadata database to introspect. Without an
// explicit driver it falls back to the app's own SQLite file.
func (s *Server) metaConfig() dbschema.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.meta.Driver == "" {
		return dbschema.Config{Driver: dbschema.DriverSQLite, Host: s.dbPath}
	}
	return s.meta
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or the app is shut down.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
