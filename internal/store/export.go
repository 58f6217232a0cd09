package store

import (
	"database/sql"
	"errors"
	"time"
)

// Export records a trail snapshot written to disk.
type Export struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Particles int       `json:"particles"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRepository provides access to export records.
type ExportRepository struct {
	db *sql.DB
}

// Exports returns the export repository for this store.
func (s *Store) Exports() *ExportRepository {
	return &ExportRepository{db: s.db}
}

// Create inserts a new export record. CreatedAt is set if zero.
func (r *ExportRepository) Create(e *Export) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO exports (id, path, width, height, particles, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Path, e.Width, e.Height, e.Particles, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an export by its ID.
func (r *ExportRepository) GetByID(id string) (*Export, error) {
	e := &Export{}
	err := r.db.QueryRow(
		`SELECT id, path, width, height, particles, created_at
		 FROM exports WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Path, &e.Width, &e.Height, &e.Particles, &e.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e, nil
}

// List returns exports newest first. A limit <= 0 returns all of them.
func (r *ExportRepository) List(limit int) ([]*Export, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, path, width, height, particles, created_at
		 FROM exports ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.Path, &e.Width, &e.Height, &e.Particles, &e.CreatedAt); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exports, nil
}

// Delete removes an export record. It does not touch the file on disk.
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}
