package engine

import (
	"fmt"
	"time"
)

// InvalidInputError reports malformed input to the engine: a negative XP
// delta, a bad catalog entry, a broken level curve. Catalog and curve
// problems are fatal at load time, not per event.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ActiveTimerConflictError is returned when a timer start loses the
// one-timer-per-user race. The running timer is left untouched.
type ActiveTimerConflictError struct {
	HabitID   int64
	StartedAt time.Time
}

func (e ActiveTimerConflictError) Error() string {
	return fmt.Sprintf("a timer is already running for habit %d (started %s)", e.HabitID, e.StartedAt.Format(time.RFC3339))
}

// NoActiveTimerError is returned when stop is called and no matching
// timer is running. Non-fatal; the caller just reports it.
type NoActiveTimerError struct {
	HabitID int64
}

func (e NoActiveTimerError) Error() string {
	if e.HabitID > 0 {
		return fmt.Sprintf("no active timer for habit %d", e.HabitID)
	}
	return "no active timer"
}
