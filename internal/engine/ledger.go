package engine

// AwardResult reports a single XP award applied to a user's total.
type AwardResult struct {
	XPAwarded     int
	NewXP         int
	PreviousLevel int
	NewLevel      int
	LeveledUp     bool
}

// Award applies a non-negative XP delta to a cumulative total and
// derives the level transition from the curve. It is a pure
// transformation: deduplication of retried awards is the coordinator's
// job, not the ledger's. A zero delta is valid and still recomputes the
// level.
func Award(curve *LevelCurve, currentXP, delta int) (AwardResult, error) {
	if delta < 0 {
		return AwardResult{}, InvalidInputError{Field: "xp delta", Reason: "must not be negative"}
	}
	if currentXP < 0 {
		return AwardResult{}, InvalidInputError{Field: "xp total", Reason: "must not be negative"}
	}
	prev := curve.LevelFor(currentXP)
	newXP := currentXP + delta
	newLevel := curve.LevelFor(newXP)
	return AwardResult{
		XPAwarded:     delta,
		NewXP:         newXP,
		PreviousLevel: prev,
		NewLevel:      newLevel,
		LeveledUp:     newLevel > prev,
	}, nil
}
