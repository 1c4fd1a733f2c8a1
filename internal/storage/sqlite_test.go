package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "templates.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTemplate(id string, createdAt time.Time) *models.Template {
	return &models.Template{
		ID:        id,
		CreatedAt: createdAt,
		Source:    models.SourceGenerated,
		Inputs:    map[string]any{"duration_min": float64(20)},
		Seed:      42,
		Segments: []models.Segment{
			{Index: 0, DurationS: 120, SpeedMPH: 4.0, InclinePct: 0, Label: models.LabelWarmup},
			{Index: 1, DurationS: 180, SpeedMPH: 6.0, InclinePct: 1, Label: models.LabelSteady},
			{Index: 2, DurationS: 900, SpeedMPH: 4.0, InclinePct: 0, Label: models.LabelCooldown},
		},
		Stats: models.TemplateStats{TotalTimeS: 1200},
	}
}

// TestSQLiteRoundTrip verifies a template survives a write and read with
// every field intact.
func TestSQLiteRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	want := sampleTemplate("tpl-1", time.Now().UTC())

	if err := s.Put(ctx, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "tpl-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
	if got.ID != want.ID || got.Source != want.Source || got.Seed != want.Seed {
		t.Errorf("identity fields = (%s, %s, %d), want (%s, %s, %d)",
			got.ID, got.Source, got.Seed, want.ID, want.Source, want.Seed)
	}
	if !reflect.DeepEqual(got.Inputs, want.Inputs) {
		t.Errorf("inputs = %v, want %v", got.Inputs, want.Inputs)
	}
	if !reflect.DeepEqual(got.Segments, want.Segments) {
		t.Errorf("segments = %v, want %v", got.Segments, want.Segments)
	}
	if got.Stats.TotalTimeS != want.Stats.TotalTimeS {
		t.Errorf("total_time_s = %d, want %d", got.Stats.TotalTimeS, want.Stats.TotalTimeS)
	}
}

// TestSQLiteGetMissing verifies unknown ids surface store.ErrNotFound.
func TestSQLiteGetMissing(t *testing.T) {
	s := openTestDB(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestSQLitePutDuplicate verifies the primary key rejects id reuse.
func TestSQLitePutDuplicate(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	tpl := sampleTemplate("tpl-1", time.Now().UTC())
	if err := s.Put(ctx, tpl); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, tpl); err == nil {
		t.Error("second Put succeeded, want error")
	}
}

// TestSQLiteListNewestFirst verifies List order and that it spans all rows.
func TestSQLiteListNewestFirst(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC()
	for _, tc := range []struct {
		id  string
		age time.Duration
	}{
		{"old", -2 * time.Hour},
		{"new", 0},
		{"mid", -time.Hour},
	} {
		if err := s.Put(ctx, sampleTemplate(tc.id, base.Add(tc.age))); err != nil {
			t.Fatalf("Put %s: %v", tc.id, err)
		}
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, tpl := range got {
		ids = append(ids, tpl.ID)
	}
	want := []string{"new", "mid", "old"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}
