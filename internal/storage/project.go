package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"builder/internal/domain"
)

// ProjectStore implements domain.ProjectStore using SQLite.
type ProjectStore struct {
	db *DB
}

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) CreateProject(p *domain.Project) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := s.db.Conn().Exec(
		`INSERT INTO projects (name, created_at, updated_at) VALUES (?, ?, ?)`,
		p.Name, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	p.ID = id
	return nil
}

func (s *ProjectStore) GetProject(id int64) (*domain.Project, error) {
	p := &domain.Project{}
	err := s.db.Conn().QueryRow(
		`SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) ListProjects(skip, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.db.Conn().Query(
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY id ASC LIMIT ? OFFSET ?`,
		limit, skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// EnsureDefault creates the default project if it does not exist yet.
func (s *ProjectStore) EnsureDefault() error {
	var name string
	err := s.db.Conn().QueryRow(
		`SELECT name FROM projects WHERE id = ?`, domain.DefaultProjectID,
	).Scan(&name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ensure default project: %w", err)
	}
	now := time.Now()
	_, err = s.db.Conn().Exec(
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		domain.DefaultProjectID, "Default Project", now, now,
	)
	if err != nil {
		return fmt.Errorf("ensure default project: %w", err)
	}
	return nil
}
