package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/runcoach/internal/models"
	"github.com/claude/runcoach/internal/store"
)

// fakeClock is a manually advanced monotonic clock so tests simulate
// elapsed time without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func testTemplate(t *testing.T) *models.Template {
	t.Helper()
	tpl := &models.Template{
		ID:     "tpl-1",
		Source: models.SourceGenerated,
		Segments: []models.Segment{
			{Index: 0, DurationS: 10, SpeedMPH: 4.0, Label: models.LabelWarmup},
			{Index: 1, DurationS: 20, SpeedMPH: 6.0, Label: models.LabelSteady},
			{Index: 2, DurationS: 30, SpeedMPH: 4.0, Label: models.LabelCooldown},
		},
		Stats: models.TemplateStats{TotalTimeS: 60},
	}
	if err := tpl.Validate(); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return tpl
}

func testEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	templates := store.NewMemory()
	if err := templates.Put(context.Background(), testTemplate(t)); err != nil {
		t.Fatal(err)
	}
	clk := &fakeClock{now: time.Unix(1000, 0)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(templates, NewMemoryStore(), clk, log), clk
}

// TestCreateUnknownTemplate verifies session creation fails with NotFound
// for an unknown template id.
func TestCreateUnknownTemplate(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.Create(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestCreateStartsIdle verifies a new session has all counters at zero.
func TestCreateStartsIdle(t *testing.T) {
	eng, _ := testEngine(t)
	snap, err := eng.Create(context.Background(), "tpl-1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status != models.StatusIdle {
		t.Errorf("status = %q, want idle", snap.Status)
	}
	if snap.ElapsedS != 0 || snap.SegmentElapsedS != 0 || snap.CurrentSegmentIndex != 0 {
		t.Errorf("counters not zero: %+v", snap)
	}
	if snap.WorkoutID != "tpl-1" {
		t.Errorf("workout_id = %q, want tpl-1", snap.WorkoutID)
	}
}

// TestUnknownSessionID verifies all operations surface NotFound for an
// unknown session id.
func TestUnknownSessionID(t *testing.T) {
	eng, _ := testEngine(t)
	ctx := context.Background()
	ops := map[string]func(context.Context, string) (models.SessionSnapshot, error){
		"start": eng.Start, "pause": eng.Pause, "skip": eng.Skip,
		"back": eng.Back, "abort": eng.Abort, "state": eng.State,
	}
	for name, op := range ops {
		if _, err := op(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
}

// TestElapsedAccrualAndMonotonicity verifies elapsed time tracks the clock
// while running and never decreases across reads.
func TestElapsedAccrualAndMonotonicity(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID

	if _, err := eng.Start(ctx, id); err != nil {
		t.Fatal(err)
	}

	prev := 0.0
	for i := 0; i < 5; i++ {
		clk.Advance(1500 * time.Millisecond)
		snap, err := eng.State(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if snap.ElapsedS < prev {
			t.Fatalf("elapsed went backwards: %v < %v", snap.ElapsedS, prev)
		}
		prev = snap.ElapsedS
	}
	if prev != 7.5 {
		t.Errorf("elapsed = %v, want 7.5", prev)
	}
}

// TestStartDoesNotCountCreationGap verifies no time is attributed to the
// gap between create and start.
func TestStartDoesNotCountCreationGap(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")

	clk.Advance(time.Hour)
	if _, err := eng.Start(ctx, snap.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := eng.State(ctx, snap.ID)
	if got.ElapsedS != 0 {
		t.Errorf("elapsed = %v, want 0 right after start", got.ElapsedS)
	}
}

// TestSegmentTransitionCarriesRemainder verifies segment rollover: elapsed
// continues while segment-elapsed keeps only the overshoot past the
// boundary.
func TestSegmentTransitionCarriesRemainder(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	// 12s into a 10s first segment: index 1, 2s into it
	clk.Advance(12 * time.Second)
	got, _ := eng.State(ctx, id)
	if got.CurrentSegmentIndex != 1 {
		t.Errorf("index = %d, want 1", got.CurrentSegmentIndex)
	}
	if got.SegmentElapsedS != 2 {
		t.Errorf("segment_elapsed = %v, want 2", got.SegmentElapsedS)
	}
	if got.ElapsedS != 12 {
		t.Errorf("elapsed = %v, want 12", got.ElapsedS)
	}
	if got.CurrentSegment == nil || got.CurrentSegment.Label != models.LabelSteady {
		t.Errorf("current segment = %+v, want steady", got.CurrentSegment)
	}

	// One long poll jumping two boundaries at once: 12+25=37s -> index 2, 7s in
	clk.Advance(25 * time.Second)
	got, _ = eng.State(ctx, id)
	if got.CurrentSegmentIndex != 2 {
		t.Errorf("index = %d, want 2", got.CurrentSegmentIndex)
	}
	if got.SegmentElapsedS != 7 {
		t.Errorf("segment_elapsed = %v, want 7", got.SegmentElapsedS)
	}
}

// TestCompletionClampsElapsed verifies overshoot past the last segment
// completes the session with elapsed clamped to the template total.
func TestCompletionClampsElapsed(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(90 * time.Second) // total is 60s
	got, _ := eng.State(ctx, id)
	if got.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	if got.ElapsedS != 60 {
		t.Errorf("elapsed = %v, want clamped 60", got.ElapsedS)
	}
	if got.SegmentElapsedS != 0 {
		t.Errorf("segment_elapsed = %v, want 0", got.SegmentElapsedS)
	}
	if got.CurrentSegment != nil {
		t.Errorf("current segment = %+v, want nil after completion", got.CurrentSegment)
	}
}

// TestPauseFreezesTime verifies no time accrues between pause and a later
// read, and that resume re-baselines instead of back-filling the gap.
func TestPauseFreezesTime(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(5 * time.Second)
	paused, err := eng.Pause(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if paused.Status != models.StatusPaused {
		t.Fatalf("status = %q, want paused", paused.Status)
	}
	if paused.ElapsedS != 5 {
		t.Errorf("elapsed at pause = %v, want 5", paused.ElapsedS)
	}

	clk.Advance(10 * time.Minute)
	got, _ := eng.State(ctx, id)
	if got.ElapsedS != 5 {
		t.Errorf("elapsed while paused = %v, want 5", got.ElapsedS)
	}

	// Pause again: idempotent beyond the tick
	again, _ := eng.Pause(ctx, id)
	if again.Status != models.StatusPaused || again.ElapsedS != 5 {
		t.Errorf("second pause snapshot = %+v", again)
	}

	eng.Start(ctx, id) // resume
	clk.Advance(2 * time.Second)
	got, _ = eng.State(ctx, id)
	if got.ElapsedS != 7 {
		t.Errorf("elapsed after resume = %v, want 7", got.ElapsedS)
	}
}

// TestSkipAdvancesAndCompletes verifies skip forces segment advancement
// and that skipping through all segments completes with a clamped total.
func TestSkipAdvancesAndCompletes(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(3 * time.Second)
	got, _ := eng.Skip(ctx, id)
	if got.CurrentSegmentIndex != 1 {
		t.Errorf("index = %d, want 1", got.CurrentSegmentIndex)
	}
	if got.SegmentElapsedS != 0 {
		t.Errorf("segment_elapsed = %v, want 0 after skip", got.SegmentElapsedS)
	}

	eng.Skip(ctx, id)
	got, _ = eng.Skip(ctx, id)
	if got.Status != models.StatusCompleted {
		t.Fatalf("status = %q, want completed", got.Status)
	}
	if got.ElapsedS != 60 {
		t.Errorf("elapsed = %v, want clamped 60", got.ElapsedS)
	}

	// Terminal state absorbs further operations
	after, _ := eng.Skip(ctx, id)
	if after.Status != models.StatusCompleted || after.ElapsedS != 60 {
		t.Errorf("post-completion skip snapshot = %+v", after)
	}
}

// TestBackAtStart verifies back at index 0 keeps the index but still
// resets segment-elapsed.
func TestBackAtStart(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(4 * time.Second)
	got, _ := eng.Back(ctx, id)
	if got.CurrentSegmentIndex != 0 {
		t.Errorf("index = %d, want 0", got.CurrentSegmentIndex)
	}
	if got.SegmentElapsedS != 0 {
		t.Errorf("segment_elapsed = %v, want 0 after back", got.SegmentElapsedS)
	}
	if got.ElapsedS != 4 {
		t.Errorf("elapsed = %v, want 4 (back does not rewind the run clock)", got.ElapsedS)
	}
}

// TestBackReturnsToPreviousSegment verifies back from a later segment.
func TestBackReturnsToPreviousSegment(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(15 * time.Second) // index 1, 5s in
	got, _ := eng.Back(ctx, id)
	if got.CurrentSegmentIndex != 0 {
		t.Errorf("index = %d, want 0", got.CurrentSegmentIndex)
	}
	if got.SegmentElapsedS != 0 {
		t.Errorf("segment_elapsed = %v, want 0", got.SegmentElapsedS)
	}
}

// TestAbortIsTerminal verifies abort stops the timer for good.
func TestAbortIsTerminal(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(8 * time.Second)
	got, _ := eng.Abort(ctx, id)
	if got.Status != models.StatusAborted {
		t.Fatalf("status = %q, want aborted", got.Status)
	}
	if got.ElapsedS != 8 {
		t.Errorf("elapsed = %v, want 8 (abort flushes pending time)", got.ElapsedS)
	}

	clk.Advance(time.Minute)
	after, _ := eng.State(ctx, id)
	if after.ElapsedS != 8 {
		t.Errorf("elapsed after abort = %v, want 8", after.ElapsedS)
	}
	if res, _ := eng.Start(ctx, id); res.Status != models.StatusAborted {
		t.Errorf("start after abort = %q, want aborted", res.Status)
	}
}

// TestStartIdempotentWhileRunning verifies a redundant start does not
// disturb the running timer.
func TestStartIdempotentWhileRunning(t *testing.T) {
	eng, clk := testEngine(t)
	ctx := context.Background()
	snap, _ := eng.Create(ctx, "tpl-1")
	id := snap.ID
	eng.Start(ctx, id)

	clk.Advance(3 * time.Second)
	if _, err := eng.Start(ctx, id); err != nil {
		t.Fatal(err)
	}
	clk.Advance(2 * time.Second)
	got, _ := eng.State(ctx, id)
	if got.Status != models.StatusRunning {
		t.Errorf("status = %q, want running", got.Status)
	}
	if got.ElapsedS != 5 {
		t.Errorf("elapsed = %v, want 5", got.ElapsedS)
	}
}
