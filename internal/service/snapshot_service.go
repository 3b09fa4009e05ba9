package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"builder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Snapshot Service — scheduled JSON exports of project layouts
// ─────────────────────────────────────────────────────────────

// SnapshotService periodically exports each project's element list to
// a JSON file, as a layout backup independent of the SQLite file.
type SnapshotService struct {
	projects domain.ProjectStore
	elements domain.ElementStore
	emitter  EventEmitter
	dir      string

	cronSched *cron.Cron
}

// NewSnapshotService creates a SnapshotService writing into dir.
func NewSnapshotService(projects domain.ProjectStore, elements domain.ElementStore, emitter EventEmitter, dir string) *SnapshotService {
	return &SnapshotService{
		projects: projects,
		elements: elements,
		emitter:  emitter,
		dir:      dir,
	}
}

// snapshot is the exported file layout.
type snapshot struct {
	Project    domain.Project         `json:"project"`
	ExportedAt time.Time              `json:"exported_at"`
	Elements   []domain.ElementRecord `json:"elements"`
}

// Start schedules exports on the given cron expression. An empty
// expression disables scheduling.
func (s *SnapshotService) Start(ctx context.Context, expr string) error {
	if expr == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if err := s.ExportAll(ctx); err != nil {
			log.Printf("snapshot cron: export failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("snapshot cron: invalid expression %q: %w", expr, err)
	}
	c.Start()
	s.cronSched = c
	log.Printf("snapshot cron: scheduled %q", expr)
	return nil
}

// Stop tears down the scheduler.
func (s *SnapshotService) Stop() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}

// ExportAll writes one snapshot file per project.
func (s *SnapshotService) ExportAll(ctx context.Context) error {
	projects, err := s.projects.ListProjects(0, 1000)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if _, err := s.ExportProject(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// ExportProject writes a single project's snapshot and returns its path.
func (s *SnapshotService) ExportProject(ctx context.Context, p domain.Project) (string, error) {
	records, err := s.elements.ListElements(p.ID)
	if err != nil {
		return "", fmt.Errorf("list elements of project %d: %w", p.ID, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot{
		Project:    p,
		ExportedAt: time.Now(),
		Elements:   records,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("project-%d.json", p.ID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	s.emitter.Emit(ctx, "snapshot:exported", map[string]any{
		"projectId": p.ID,
		"path":      path,
	})
	return path, nil
}
