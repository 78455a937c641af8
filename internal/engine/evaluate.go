package engine

import (
	"strconv"
	"time"
)

// CalendarPolicy fixes the timezone and week start used for period
// bucketing and streak day boundaries.
type CalendarPolicy struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func (p CalendarPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// BucketID returns the opaque reset-period bucket identifier for an
// instant: the local day, the week index under the configured week
// start, or the local month. PeriodNone buckets to the empty string.
func (p CalendarPolicy) BucketID(period Period, now time.Time) string {
	lt := now.In(p.location())
	switch period {
	case PeriodDay:
		return lt.Format("2006-01-02")
	case PeriodWeek:
		return "w" + strconv.Itoa(weekIndex(dayIndex(now, p.location()), p.WeekStart))
	case PeriodMonth:
		return lt.Format("2006-01")
	default:
		return ""
	}
}

// CounterSnapshot is the already-fetched counter state an evaluation
// runs against: the lifetime total plus the current-period totals.
type CounterSnapshot struct {
	Lifetime int
	Period   map[Period]int
}

// UnlockState is the already-fetched unlock history for one user,
// scoped to the category being evaluated.
type UnlockState struct {
	// Unlocked holds one_time keys that already have a record.
	Unlocked map[string]bool
	// LastMultiple holds, per repeatable key, the highest requirement
	// multiple already awarded.
	LastMultiple map[string]int
	// PeriodUnlocked holds key + "|" + bucket pairs already awarded.
	PeriodUnlocked map[string]bool
}

func periodKey(key, bucket string) string {
	return key + "|" + bucket
}

// Unlock is a newly qualifying achievement produced by evaluation. The
// bucket is the idempotence discriminator: empty for one_time, the
// requirement multiple for repeatable, the reset-period bucket for
// periodic types.
type Unlock struct {
	Achievement Achievement
	Bucket      string
	UnlockedAt  time.Time
}

// Evaluator determines which achievements newly qualify for an activity
// counter. It is pure over the snapshots it is handed; persistence of
// the unlocks (and the idempotent-insert guard) belongs to the
// coordinator.
type Evaluator struct {
	catalog  *Catalog
	calendar CalendarPolicy
}

func NewEvaluator(catalog *Catalog, calendar CalendarPolicy) *Evaluator {
	return &Evaluator{catalog: catalog, calendar: calendar}
}

// Evaluate runs every catalog entry of the category through the
// strategy for its type. Hidden entries evaluate exactly like visible
// ones.
func (e *Evaluator) Evaluate(cat Category, counters CounterSnapshot, state UnlockState, now time.Time) []Unlock {
	var out []Unlock
	for _, a := range e.catalog.ByCategory(cat) {
		var u *Unlock
		switch a.Type {
		case AchievementOneTime:
			u = evalOneTime(a, counters, state, now)
		case AchievementRepeatable:
			u = evalRepeatable(a, counters, state, now)
		case AchievementDaily, AchievementWeekly, AchievementMonthly:
			u = e.evalPeriodic(a, counters, state, now)
		}
		if u != nil {
			out = append(out, *u)
		}
	}
	return out
}

func evalOneTime(a Achievement, counters CounterSnapshot, state UnlockState, now time.Time) *Unlock {
	if counters.Lifetime < a.Requirement {
		return nil
	}
	if state.Unlocked[a.Key] {
		return nil
	}
	return &Unlock{Achievement: a, Bucket: "", UnlockedAt: now}
}

func evalRepeatable(a Achievement, counters CounterSnapshot, state UnlockState, now time.Time) *Unlock {
	multiple := counters.Lifetime / a.Requirement
	if multiple < 1 || multiple <= state.LastMultiple[a.Key] {
		return nil
	}
	return &Unlock{Achievement: a, Bucket: strconv.Itoa(multiple), UnlockedAt: now}
}

func (e *Evaluator) evalPeriodic(a Achievement, counters CounterSnapshot, state UnlockState, now time.Time) *Unlock {
	period := a.Type.ResetPeriod()
	if counters.Period[period] < a.Requirement {
		return nil
	}
	bucket := e.calendar.BucketID(period, now)
	if state.PeriodUnlocked[periodKey(a.Key, bucket)] {
		return nil
	}
	return &Unlock{Achievement: a, Bucket: bucket, UnlockedAt: now}
}
