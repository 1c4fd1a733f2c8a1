package models

import (
	"fmt"
	"time"
)

// SegmentLabel classifies a segment's role within a workout.
type SegmentLabel string

const (
	LabelWarmup   SegmentLabel = "warmup"
	LabelSteady   SegmentLabel = "steady"
	LabelPush     SegmentLabel = "push"
	LabelRecovery SegmentLabel = "recovery"
	LabelCooldown SegmentLabel = "cooldown"
)

// TemplateSource records how a template came to exist.
type TemplateSource string

const (
	SourceGenerated TemplateSource = "generated"
	SourceParsed    TemplateSource = "parsed"
	SourcePreset    TemplateSource = "preset"
)

// Segment is one atomic interval of a workout plan.
type Segment struct {
	Index      int          `json:"index"`
	DurationS  int          `json:"duration_s"`
	SpeedMPH   float64      `json:"speed_mph"`
	InclinePct float64      `json:"incline_pct"`
	Label      SegmentLabel `json:"label"`
}

// TemplateStats holds derived totals for a template.
type TemplateStats struct {
	TotalTimeS int `json:"total_time_s"`
}

// Template is an immutable, identified workout plan. Regeneration always
// produces a new Template; existing ones are never mutated, so instances can
// be shared between sessions without locking.
type Template struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Source    TemplateSource `json:"source"`
	Inputs    map[string]any `json:"inputs"`
	Seed      int64          `json:"seed"`
	Segments  []Segment      `json:"segments"`
	Stats     TemplateStats  `json:"stats"`
}

// Validate checks the structural invariants: sequential zero-based indices,
// positive durations, and an exact total.
func (t *Template) Validate() error {
	total := 0
	for i, seg := range t.Segments {
		if seg.Index != i {
			return fmt.Errorf("segment %d has index %d", i, seg.Index)
		}
		if seg.DurationS <= 0 {
			return fmt.Errorf("segment %d has non-positive duration %d", i, seg.DurationS)
		}
		total += seg.DurationS
	}
	if total != t.Stats.TotalTimeS {
		return fmt.Errorf("stats.total_time_s = %d, segments sum to %d", t.Stats.TotalTimeS, total)
	}
	return nil
}
