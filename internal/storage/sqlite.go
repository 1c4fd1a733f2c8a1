package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
	_ "modernc.org/sqlite"
)

// SQLite is a file-backed TemplateStore for single-node deployments.
type SQLite struct {
	db *sql.DB
}

var _ store.TemplateStore = (*SQLite)(nil)

// OpenSQLite opens (or creates) the template database at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening template db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS workout_templates (
		id           TEXT PRIMARY KEY,
		created_at   TEXT NOT NULL,
		source       TEXT NOT NULL,
		seed         INTEGER NOT NULL,
		inputs       TEXT NOT NULL,
		segments     TEXT NOT NULL,
		total_time_s INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating template table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Put inserts a template. Ids are unique; templates are never overwritten.
func (s *SQLite) Put(ctx context.Context, t *models.Template) error {
	inputs, err := json.Marshal(t.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workout_templates (id, created_at, source, seed, inputs, segments, total_time_s)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CreatedAt.UTC().Format(time.RFC3339Nano), string(t.Source), t.Seed,
		string(inputs), string(segments), t.Stats.TotalTimeS)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// Get returns the template for id, or store.ErrNotFound.
func (s *SQLite) Get(ctx context.Context, id string) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, seed, inputs, segments, total_time_s
		 FROM workout_templates WHERE id = ?`, id)

	t, err := scanTemplate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	return t, nil
}

// List returns all templates, newest first.
func (s *SQLite) List(ctx context.Context) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, seed, inputs, segments, total_time_s
		 FROM workout_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("reading template row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanTemplate decodes one row via the given Scan function.
func scanTemplate(scan func(dest ...any) error) (*models.Template, error) {
	var (
		t         models.Template
		createdAt string
		source    string
		inputs    string
		segments  string
	)
	if err := scan(&t.ID, &createdAt, &source, &t.Seed, &inputs, &segments, &t.Stats.TotalTimeS); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	t.CreatedAt = ts
	t.Source = models.TemplateSource(source)
	if err := json.Unmarshal([]byte(inputs), &t.Inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(segments), &t.Segments); err != nil {
		return nil, fmt.Errorf("decoding segments: %w", err)
	}
	return &t, nil
}
