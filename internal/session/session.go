// Package session runs server-authoritative timed sessions over workout
// templates. The timer is pull-based: no background scheduler exists, and
// every read or mutation first reconciles elapsed time against a monotonic
// clock reading.
package session

import (
	"sync"
	"time"

	"github.com/claude/runcoach/internal/models"
)

// Session is one timed execution of a template. It references the template
// but does not own it; templates are immutable and safely shared.
//
// All exported methods take the current monotonic clock reading so the
// engine stays in control of the time source. State is guarded by a
// per-session mutex.
type Session struct {
	mu  sync.Mutex
	id  string
	tpl *models.Template

	status     models.SessionStatus
	elapsedS   float64
	segElapsed float64
	segIndex   int
	lastTick   time.Time
}

func newSession(id string, tpl *models.Template) *Session {
	return &Session{id: id, tpl: tpl, status: models.StatusIdle}
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// Start transitions to running and re-baselines the clock so no time is
// attributed to the idle or paused gap before this call. Idempotent while
// running; also serves as resume. Terminal states absorb the call.
func (s *Session) Start(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	if !s.status.Terminal() {
		s.status = models.StatusRunning
		s.lastTick = now
	}
	return s.snapshot()
}

// Pause flushes time accrued since the last baseline, then freezes the
// timer. Pausing a session that is not running changes nothing.
func (s *Session) Pause(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	if s.status == models.StatusRunning {
		s.status = models.StatusPaused
	}
	return s.snapshot()
}

// Skip applies a tick, then advances past the current segment regardless of
// remaining time.
func (s *Session) Skip(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	if !s.status.Terminal() {
		s.segIndex++
		s.segElapsed = 0
		s.completeIfPastEnd()
	}
	return s.snapshot()
}

// Back applies a tick, then returns to the start of the previous segment.
// At index 0 the index stays put but segment-elapsed still resets.
func (s *Session) Back(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	if !s.status.Terminal() {
		if s.segIndex > 0 {
			s.segIndex--
		}
		s.segElapsed = 0
	}
	return s.snapshot()
}

// Abort flushes pending time, then moves to the terminal aborted state. No
// further time accrues.
func (s *Session) Abort(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	if !s.status.Terminal() {
		s.status = models.StatusAborted
	}
	return s.snapshot()
}

// State reconciles the timer and returns the current snapshot.
func (s *Session) State(now time.Time) models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tick(now)
	return s.snapshot()
}

// tick attributes time elapsed since the last baseline to the session and
// rolls segment boundaries forward. Caller holds the lock.
func (s *Session) tick(now time.Time) {
	if s.status != models.StatusRunning {
		return
	}
	delta := now.Sub(s.lastTick).Seconds()
	if delta <= 0 {
		return
	}
	s.elapsedS += delta
	s.segElapsed += delta

	segs := s.tpl.Segments
	for s.segIndex < len(segs) && s.segElapsed >= float64(segs[s.segIndex].DurationS) {
		s.segElapsed -= float64(segs[s.segIndex].DurationS)
		s.segIndex++
	}
	s.completeIfPastEnd()
	s.lastTick = now
}

// completeIfPastEnd finalizes the session once the index passes the last
// segment: elapsed time is clamped to the template total so polling
// granularity never lets the measurement overshoot. Caller holds the lock.
func (s *Session) completeIfPastEnd() {
	if s.segIndex < len(s.tpl.Segments) {
		return
	}
	s.status = models.StatusCompleted
	s.segElapsed = 0
	s.elapsedS = float64(s.tpl.Stats.TotalTimeS)
}

// snapshot builds the wire representation. Caller holds the lock.
func (s *Session) snapshot() models.SessionSnapshot {
	snap := models.SessionSnapshot{
		ID:                  s.id,
		WorkoutID:           s.tpl.ID,
		Status:              s.status,
		ElapsedS:            s.elapsedS,
		SegmentElapsedS:     s.segElapsed,
		CurrentSegmentIndex: s.segIndex,
	}
	if s.segIndex < len(s.tpl.Segments) {
		seg := s.tpl.Segments[s.segIndex]
		snap.CurrentSegment = &seg
	}
	return snap
}
