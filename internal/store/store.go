// Package store defines the keyed template-store contract shared by the
// memory, SQLite, and Postgres backends.
package store

import (
	"context"
	"errors"

	"github.com/claude/runcoach/internal/models"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("not found")

// TemplateStore is a keyed collection of workout templates. Put never
// overwrites: templates are immutable and regeneration creates new ids, so
// prior templates stay retrievable.
type TemplateStore interface {
	Put(ctx context.Context, t *models.Template) error
	Get(ctx context.Context, id string) (*models.Template, error)
	List(ctx context.Context) ([]*models.Template, error)
}
