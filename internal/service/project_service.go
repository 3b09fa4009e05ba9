package service

import (
	"context"
	"fmt"

	"builder/internal/domain"
)

// ProjectService manages projects.
type ProjectService struct {
	store domain.ProjectStore
}

func NewProjectService(store domain.ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

// CreateProject creates a named project.
func (s *ProjectService) CreateProject(_ context.Context, name string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	p := &domain.Project{Name: name}
	if err := s.store.CreateProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProject returns a project by id.
func (s *ProjectService) GetProject(_ context.Context, id int64) (*domain.Project, error) {
	return s.store.GetProject(id)
}

// ListProjects returns a page of projects.
func (s *ProjectService) ListProjects(_ context.Context, skip, limit int) ([]domain.Project, error) {
	return s.store.ListProjects(skip, limit)
}

// EnsureDefault guarantees the default project exists. Called at startup.
func (s *ProjectService) EnsureDefault() error {
	return s.store.EnsureDefault()
}
