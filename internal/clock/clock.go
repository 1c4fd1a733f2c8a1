// Package clock abstracts the monotonic time source used by the session
// engine, so tests can simulate elapsed time without sleeping.
package clock

import "time"

// Clock supplies the current time. Readings from System carry Go's monotonic
// component, so subtracting two of them is immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

// System is the real clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }
