package models

// SessionStatus is the lifecycle state of a run session.
type SessionStatus string

const (
	StatusIdle      SessionStatus = "idle"
	StatusRunning   SessionStatus = "running"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusAborted   SessionStatus = "aborted"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// SessionSnapshot is the wire representation of a session's authoritative
// timer state, produced after a tick has been applied.
type SessionSnapshot struct {
	ID                  string        `json:"id"`
	WorkoutID           string        `json:"workout_id"`
	Status              SessionStatus `json:"status"`
	ElapsedS            float64       `json:"elapsed_s"`
	SegmentElapsedS     float64       `json:"segment_elapsed_s"`
	CurrentSegmentIndex int           `json:"current_segment_index"`

	// CurrentSegment echoes the active segment so display clients don't need
	// a second template lookup per poll. Nil once the session has completed.
	CurrentSegment *Segment `json:"current_segment,omitempty"`
}
