// Package storage provides the durable TemplateStore backends: SQLite for
// single-node file deployments and Postgres for server deployments.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a pgx-backed TemplateStore.
type Postgres struct {
	Pool *pgxpool.Pool
}

var _ store.TemplateStore = (*Postgres)(nil)

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Put inserts a template. Ids are unique; templates are never overwritten.
func (p *Postgres) Put(ctx context.Context, t *models.Template) error {
	inputs, err := json.Marshal(t.Inputs)
	if err != nil {
		return fmt.Errorf("encoding inputs: %w", err)
	}
	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}

	_, err = p.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, created_at, source, seed, inputs, segments, total_time_s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.CreatedAt, string(t.Source), t.Seed, inputs, segments, t.Stats.TotalTimeS)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// Get returns the template for id, or store.ErrNotFound.
func (p *Postgres) Get(ctx context.Context, id string) (*models.Template, error) {
	var (
		t        models.Template
		source   string
		inputs   []byte
		segments []byte
	)
	err := p.Pool.QueryRow(ctx,
		`SELECT id, created_at, source, seed, inputs, segments, total_time_s
		 FROM workout_templates WHERE id = $1`, id).
		Scan(&t.ID, &t.CreatedAt, &source, &t.Seed, &inputs, &segments, &t.Stats.TotalTimeS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	t.Source = models.TemplateSource(source)
	if err := json.Unmarshal(inputs, &t.Inputs); err != nil {
		return nil, fmt.Errorf("decoding inputs: %w", err)
	}
	if err := json.Unmarshal(segments, &t.Segments); err != nil {
		return nil, fmt.Errorf("decoding segments: %w", err)
	}
	return &t, nil
}

// List returns all templates, newest first.
func (p *Postgres) List(ctx context.Context) ([]*models.Template, error) {
	rows, err := p.Pool.Query(ctx,
		`SELECT id, created_at, source, seed, inputs, segments, total_time_s
		 FROM workout_templates ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var out []*models.Template
	for rows.Next() {
		var (
			t        models.Template
			source   string
			inputs   []byte
			segments []byte
		)
		if err := rows.Scan(&t.ID, &t.CreatedAt, &source, &t.Seed, &inputs, &segments, &t.Stats.TotalTimeS); err != nil {
			return nil, fmt.Errorf("reading template row: %w", err)
		}
		t.Source = models.TemplateSource(source)
		if err := json.Unmarshal(inputs, &t.Inputs); err != nil {
			return nil, fmt.Errorf("decoding inputs: %w", err)
		}
		if err := json.Unmarshal(segments, &t.Segments); err != nil {
			return nil, fmt.Errorf("decoding segments: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
