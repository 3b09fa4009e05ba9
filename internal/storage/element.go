package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"builder/internal/domain"
)

// ElementStore implements domain.ElementStore using SQLite.
// Properties are stored one row per key, values JSON-encoded.
type ElementStore struct {
	db *DB
}

func NewElementStore(db *DB) *ElementStore {
	return &ElementStore{db: db}
}

// ReplaceProjectElements syncs a project to the given set of records.
// Elements absent from the set are deleted along with their properties,
// the rest are upserted and their property rows rewritten. The whole
// diff runs in one transaction.
func (s *ElementStore) ReplaceProjectElements(projectID int64, records []domain.ElementRecord) ([]domain.ElementRecord, error) {
	tx, err := s.db.Conn().Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := make(map[string]bool, len(records))
	for _, r := range records {
		keep[r.ElementID] = true
	}

	// Delete elements not present in the incoming set.
	rows, err := tx.Query(
		`SELECT id, element_id FROM canvas_elements WHERE project_id = ?`, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list existing elements: %w", err)
	}
	existing := map[string]int64{}
	for rows.Next() {
		var id int64
		var elementID string
		if err := rows.Scan(&id, &elementID); err != nil {
			rows.Close()
			return nil, err
		}
		existing[elementID] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for elementID, rowID := range existing {
		if keep[elementID] {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM element_properties WHERE canvas_element_id = ?`, rowID); err != nil {
			return nil, fmt.Errorf("delete properties of %s: %w", elementID, err)
		}
		if _, err := tx.Exec(`DELETE FROM canvas_elements WHERE id = ?`, rowID); err != nil {
			return nil, fmt.Errorf("delete element %s: %w", elementID, err)
		}
	}

	// Upsert the rest and rewrite their properties.
	now := time.Now()
	saved := make([]domain.ElementRecord, 0, len(records))
	for _, r := range records {
		rowID, ok := existing[r.ElementID]
		if ok {
			_, err = tx.Exec(
				`UPDATE canvas_elements SET element_type = ?, x = ?, y = ?, updated_at = ? WHERE id = ?`,
				r.ElementType, r.X, r.Y, now, rowID,
			)
			if err != nil {
				return nil, fmt.Errorf("update element %s: %w", r.ElementID, err)
			}
		} else {
			res, err := tx.Exec(
				`INSERT INTO canvas_elements (project_id, element_id, element_type, x, y, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				projectID, r.ElementID, r.ElementType, r.X, r.Y, now, now,
			)
			if err != nil {
				return nil, fmt.Errorf("insert element %s: %w", r.ElementID, err)
			}
			rowID, err = res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("insert element %s: %w", r.ElementID, err)
			}
		}

		if _, err := tx.Exec(`DELETE FROM element_properties WHERE canvas_element_id = ?`, rowID); err != nil {
			return nil, fmt.Errorf("clear properties of %s: %w", r.ElementID, err)
		}
		for key, value := range r.Properties {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("encode property %s of %s: %w", key, r.ElementID, err)
			}
			_, err = tx.Exec(
				`INSERT INTO element_properties (canvas_element_id, key, value) VALUES (?, ?, ?)`,
				rowID, key, string(encoded),
			)
			if err != nil {
				return nil, fmt.Errorf("insert property %s of %s: %w", key, r.ElementID, err)
			}
		}

		r.ID = rowID
		r.ProjectID = projectID
		r.UpdatedAt = now
		if !ok {
			r.CreatedAt = now
		}
		saved = append(saved, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return saved, nil
}

// ListElements returns the project's elements with their properties
// decoded. Unknown projects yield an empty list, not an error.
func (s *ElementStore) ListElements(projectID int64) ([]domain.ElementRecord, error) {
	rows, err := s.db.Conn().Query(
		`SELECT id, project_id, element_id, element_type, x, y, created_at, updated_at
		 FROM canvas_elements WHERE project_id = ? ORDER BY id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.ElementRecord{}
	for rows.Next() {
		var r domain.ElementRecord
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.ElementID, &r.ElementType, &r.X, &r.Y, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Properties, err = s.loadProperties(r.ID)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *ElementStore) loadProperties(rowID int64) (map[string]any, error) {
	rows, err := s.db.Conn().Query(
		`SELECT key, value FROM element_properties WHERE canvas_element_id = ?`, rowID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	props := map[string]any{}
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			// Rows written before values were JSON-encoded hold bare strings.
			value = raw
		}
		props[key] = value
	}
	return props, rows.Err()
}
