package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
)

// presets are the built-in templates available without generation. Ids are
// stable slugs so seeding is idempotent across restarts on durable stores.
var presets = []*models.Template{
	{
		ID:     "preset-easy-20",
		Source: models.SourcePreset,
		Inputs: map[string]any{"name": "Easy 20", "duration_min": 20},
		Segments: []models.Segment{
			{Index: 0, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelWarmup},
			{Index: 1, DurationS: 600, SpeedMPH: 5.5, Label: models.LabelSteady},
			{Index: 2, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelCooldown},
		},
		Stats: models.TemplateStats{TotalTimeS: 1200},
	},
	{
		ID:     "preset-intervals-30",
		Source: models.SourcePreset,
		Inputs: map[string]any{"name": "Intervals 30", "duration_min": 30},
		Segments: []models.Segment{
			{Index: 0, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelWarmup},
			{Index: 1, DurationS: 240, SpeedMPH: 6.0, InclinePct: 1, Label: models.LabelSteady},
			{Index: 2, DurationS: 120, SpeedMPH: 7.0, Label: models.LabelPush},
			{Index: 3, DurationS: 240, SpeedMPH: 6.0, InclinePct: 1, Label: models.LabelSteady},
			{Index: 4, DurationS: 120, SpeedMPH: 7.0, Label: models.LabelPush},
			{Index: 5, DurationS: 240, SpeedMPH: 5.8, Label: models.LabelRecovery},
			{Index: 6, DurationS: 240, SpeedMPH: 6.1, InclinePct: 2, Label: models.LabelSteady},
			{Index: 7, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelCooldown},
		},
		Stats: models.TemplateStats{TotalTimeS: 1800},
	},
	{
		ID:     "preset-hills-45",
		Source: models.SourcePreset,
		Inputs: map[string]any{"name": "Hills 45", "duration_min": 45},
		Segments: []models.Segment{
			{Index: 0, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelWarmup},
			{Index: 1, DurationS: 480, SpeedMPH: 5.8, InclinePct: 2, Label: models.LabelSteady},
			{Index: 2, DurationS: 180, SpeedMPH: 6.3, InclinePct: 4, Label: models.LabelPush},
			{Index: 3, DurationS: 300, SpeedMPH: 5.5, Label: models.LabelRecovery},
			{Index: 4, DurationS: 480, SpeedMPH: 5.8, InclinePct: 3, Label: models.LabelSteady},
			{Index: 5, DurationS: 180, SpeedMPH: 6.3, InclinePct: 4, Label: models.LabelPush},
			{Index: 6, DurationS: 480, SpeedMPH: 5.5, InclinePct: 1, Label: models.LabelSteady},
			{Index: 7, DurationS: 300, SpeedMPH: 4.0, Label: models.LabelCooldown},
		},
		Stats: models.TemplateStats{TotalTimeS: 2700},
	},
}

// SeedPresets inserts the built-in templates, skipping any already present.
func (s *Service) SeedPresets(ctx context.Context) error {
	for _, p := range presets {
		if _, err := s.templates.Get(ctx, p.ID); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("checking preset %s: %w", p.ID, err)
		}
		tpl := *p
		tpl.CreatedAt = time.Now().UTC()
		if err := s.templates.Put(ctx, &tpl); err != nil {
			return fmt.Errorf("seeding preset %s: %w", p.ID, err)
		}
		s.log.Info("preset seeded", "id", tpl.ID)
	}
	return nil
}
