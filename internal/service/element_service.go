package service

import (
	"context"
	"fmt"

	"builder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Element Service — business logic for canvas elements
// ─────────────────────────────────────────────────────────────

// ElementService manages the persisted element set of a project.
type ElementService struct {
	store   domain.ElementStore
	emitter EventEmitter
}

// NewElementService creates an ElementService.
func NewElementService(store domain.ElementStore, emitter EventEmitter) *ElementService {
	return &ElementService{store: store, emitter: emitter}
}

// ReplaceElements validates the incoming records and syncs the project
// to them. Elements absent from the set are deleted server-side.
func (s *ElementService) ReplaceElements(ctx context.Context, projectID int64, records []domain.ElementRecord) ([]domain.ElementRecord, error) {
	for i := range records {
		if records[i].ElementID == "" {
			return nil, fmt.Errorf("record %d: element_id is required", i)
		}
		if records[i].ElementType == "" {
			return nil, fmt.Errorf("record %d (%s): element_type is required", i, records[i].ElementID)
		}
		if records[i].Properties == nil {
			records[i].Properties = map[string]any{}
		}
	}

	saved, err := s.store.ReplaceProjectElements(projectID, records)
	if err != nil {
		return nil, fmt.Errorf("replace elements: %w", err)
	}

	s.emitter.Emit(ctx, "elements:replaced", map[string]any{
		"projectId": projectID,
		"count":     len(saved),
	})
	return saved, nil
}

// ListElements returns the project's elements.
func (s *ElementService) ListElements(_ context.Context, projectID int64) ([]domain.ElementRecord, error) {
	return s.store.ListElements(projectID)
}
