package engine

import "time"

// ElapsedSeconds returns whole seconds between a timer start and now,
// floored to zero so clock skew can never produce a negative duration.
func ElapsedSeconds(startedAt, now time.Time) int {
	d := now.Sub(startedAt)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// DurationValue converts elapsed seconds into a duration habit's unit,
// truncating partial units.
func DurationValue(elapsedSeconds int, unit DurationUnit) int {
	per := unit.Seconds()
	if per <= 0 {
		per = 1
	}
	return elapsedSeconds / per
}
