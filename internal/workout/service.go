// Package workout turns generation parameters or parsed interval lists into
// immutable workout templates and records them in the template store.
package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
	"github.com/google/uuid"
)

// ErrEmptyPlan is returned when a parsed plan contains no usable segments.
// Callers are expected to fall back to a default generated template.
var ErrEmptyPlan = errors.New("plan contains no segments")

// Service creates templates and persists them.
type Service struct {
	templates store.TemplateStore
	log       *slog.Logger
}

// NewService creates a workout service over the given template store.
func NewService(templates store.TemplateStore, log *slog.Logger) *Service {
	return &Service{templates: templates, log: log}
}

// Generate builds a deterministic interval plan for the given duration. A nil
// seed draws one from the process-wide random source; the drawn seed is
// recorded on the template so the call is reproducible afterward.
func (s *Service) Generate(ctx context.Context, durationMin int, seed *int64) (*models.Template, error) {
	if durationMin <= 0 {
		return nil, fmt.Errorf("duration_min %d: %w", durationMin, ErrInvalidDuration)
	}

	sd := int64(0)
	if seed != nil {
		sd = *seed
	} else {
		sd = rand.Int63n(1 << 31)
	}

	totalS := durationMin * 60
	tpl := &models.Template{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Source:    models.SourceGenerated,
		Inputs:    map[string]any{"duration_min": durationMin},
		Seed:      sd,
		Segments:  generateSegments(totalS, sd),
		Stats:     models.TemplateStats{TotalTimeS: totalS},
	}

	if err := s.templates.Put(ctx, tpl); err != nil {
		return nil, fmt.Errorf("storing template: %w", err)
	}
	s.log.Info("workout generated", "id", tpl.ID, "duration_min", durationMin, "seed", sd, "segments", len(tpl.Segments))
	return tpl, nil
}

// Regenerate produces a new template from an existing one's inputs with a
// fresh seed. The original template is left untouched and stays retrievable.
func (s *Service) Regenerate(ctx context.Context, templateID string) (*models.Template, error) {
	base, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	durationMin := base.Stats.TotalTimeS / 60
	if v, ok := base.Inputs["duration_min"]; ok {
		switch d := v.(type) {
		case int:
			durationMin = d
		case float64: // JSON round-trips numbers as float64
			durationMin = int(d)
		}
	}
	return s.Generate(ctx, durationMin, nil)
}

// SavePlan wraps externally produced segments (e.g. from the coach-text
// parser) into a template. Segments are re-indexed in order; an empty list
// is rejected with ErrEmptyPlan.
func (s *Service) SavePlan(ctx context.Context, segs []models.Segment, source models.TemplateSource, inputs map[string]any) (*models.Template, error) {
	if len(segs) == 0 {
		return nil, ErrEmptyPlan
	}

	total := 0
	for i := range segs {
		segs[i].Index = i
		total += segs[i].DurationS
	}

	tpl := &models.Template{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Inputs:    inputs,
		Segments:  segs,
		Stats:     models.TemplateStats{TotalTimeS: total},
	}
	if err := s.templates.Put(ctx, tpl); err != nil {
		return nil, fmt.Errorf("storing template: %w", err)
	}
	s.log.Info("workout saved", "id", tpl.ID, "source", source, "segments", len(segs))
	return tpl, nil
}
