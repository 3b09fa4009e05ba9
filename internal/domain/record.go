package domain

import "time"

// Project groups a set of canvas elements. The server guarantees a
// default project with ID 1 exists.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultProjectID is the project used when a request names none.
const DefaultProjectID int64 = 1

// ElementRecord is the persisted form of a canvas element: identity,
// integer position and a free-form properties bag. Everything beyond
// x/y lives in properties, stored one row per key.
type ElementRecord struct {
	ID          int64          `json:"id,omitempty"`
	ProjectID   int64          `json:"project_id,omitempty"`
	ElementID   string         `json:"element_id"`
	ElementType string         `json:"element_type"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Properties  map[string]any `json:"properties"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty"`
}

type ProjectStore interface {
	CreateProject(p *Project) error
	GetProject(id int64) (*Project, error)
	ListProjects(skip, limit int) ([]Project, error)
	EnsureDefault() error
}

type ElementStore interface {
	// ReplaceProjectElements syncs the project to the given set:
	// rows whose element_id is absent are deleted, the rest are
	// upserted and their properties rewritten.
	ReplaceProjectElements(projectID int64, records []ElementRecord) ([]ElementRecord, error)
	ListElements(projectID int64) ([]ElementRecord, error)
}
