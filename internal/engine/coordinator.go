package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"lifequest/internal/storage"
)

// ProgressionResult is what one activity event produced: the combined
// XP delta, the level transition, and any unlocked achievements. The
// caller hands it to whatever notifies the user; the engine never
// formats notifications itself.
type ProgressionResult struct {
	XPAwarded     int
	NewXP         int
	PreviousLevel int
	NewLevel      int
	LeveledUp     bool
	Unlocked      []Unlock
	// Duplicate marks an event whose ID was already processed; the
	// whole pipeline was skipped and nothing changed.
	Duplicate bool
}

// HabitLogResult extends ProgressionResult with the habit-side outcome
// of logging a completion.
type HabitLogResult struct {
	ProgressionResult
	Habit          *storage.Habit
	Streak         StreakResult
	NewlyQualified bool
	TodayValue     int
}

// LogHabit records a completion value for today and runs the full
// pipeline: log upsert, streak recompute, achievement evaluation, one
// XP award. Everything happens in a single transaction so a failure
// mid-pipeline leaves no partial state.
//
// Logging twice on one day folds into the same day row; XP and
// achievements only fire when the day's aggregate first crosses the
// target, which is what makes retried logs idempotent.
func (s *Service) LogHabit(ctx context.Context, userKey string, habitID int64, value int, now time.Time) (*HabitLogResult, error) {
	if value < 0 {
		return nil, InvalidInputError{Field: "value", Reason: "must not be negative"}
	}
	if value == 0 {
		value = 1
	}

	var out *HabitLogResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newTxRepos(tx)
		h, err := s.userHabit(ctx, r.habits, userKey, habitID)
		if err != nil {
			return err
		}
		if h.Archived {
			return fmt.Errorf("habit %d is archived", habitID)
		}
		out, err = s.logHabitTx(ctx, r, h, value, now, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// StopTimer finalizes the running timer into a habit log for today and
// runs the same pipeline as LogHabit. Stopping a habit whose timer is
// not running is NoActiveTimerError.
func (s *Service) StopTimer(ctx context.Context, userKey string, habitID int64, now time.Time) (*HabitLogResult, error) {
	var out *HabitLogResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newTxRepos(tx)
		t, err := r.timers.Get(ctx, userKey)
		if err != nil {
			return err
		}
		if t == nil || t.HabitID != habitID {
			return NoActiveTimerError{HabitID: habitID}
		}
		h, err := s.userHabit(ctx, r.habits, userKey, habitID)
		if err != nil {
			return err
		}

		unit, err := ParseDurationUnit(deref(h.Unit))
		if err != nil {
			return err
		}
		value := DurationValue(ElapsedSeconds(t.StartedAt, now), unit)

		if err := r.timers.Delete(ctx, userKey); err != nil {
			return err
		}
		started := t.StartedAt
		out, err = s.logHabitTx(ctx, r, h, value, now, &started, &now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("timer stopped", "user", userKey, "habit", habitID, "value", out.TodayValue)
	return out, nil
}

// Track runs the pipeline for a non-habit activity event: an expense
// logged, a deadline met, a note created.
func (s *Service) Track(ctx context.Context, userKey string, cat Category, now time.Time) (*ProgressionResult, error) {
	switch cat {
	case CategoryExpensesLogged, CategoryDeadlinesMet, CategoryNotesCreated:
	default:
		return nil, InvalidInputError{Field: "category", Reason: fmt.Sprintf("%q cannot be tracked directly", cat)}
	}
	if _, err := s.users.GetOrCreate(ctx, userKey); err != nil {
		return nil, err
	}

	ev := NewActivityEvent(userKey, cat, 1, now)
	var out *ProgressionResult
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := newTxRepos(tx)
		var err error
		out, err = s.processEvent(ctx, r, ev, 0, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// logHabitTx is the habit half of the pipeline, already inside a
// transaction: upsert today's log row, recompute streaks from full
// history, then feed a habit-completed event through processEvent when
// today newly qualified.
func (s *Service) logHabitTx(ctx context.Context, r txRepos, h *storage.Habit, value int, now time.Time, timerStart, timerStop *time.Time) (*HabitLogResult, error) {
	loc := s.calendar.location()
	date := now.In(loc).Format("2006-01-02")
	kind := HabitKind(h.Kind)

	existing, err := r.logs.GetByDate(ctx, h.ID, date)
	if err != nil {
		return nil, err
	}
	prevValue := 0
	if existing != nil {
		prevValue = existing.Value
	}

	var newValue int
	switch kind {
	case HabitKindQuantity:
		newValue = prevValue + value
	case HabitKindDuration:
		newValue = prevValue
		if value > newValue {
			newValue = value
		}
	default:
		newValue = 1
	}

	if existing == nil {
		if _, err := r.logs.Insert(ctx, h.ID, date, newValue, timerStart, timerStop); err != nil {
			return nil, err
		}
	} else {
		if err := r.logs.UpdateValue(ctx, existing.ID, newValue, timerStart, timerStop); err != nil {
			return nil, err
		}
	}

	// StreakUpdated: full-history recompute, never incremental.
	logs, err := r.logs.ListByHabit(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	streak := ComputeStreaks(kind, h.Target, s.streakPolicy(h), logEntries(logs, loc), now)
	if err := r.habits.UpdateDerived(ctx, h.ID, streak.Current, streak.Longest, streak.Total); err != nil {
		return nil, err
	}

	newly := !DayQualifies(kind, prevValue, h.Target) && DayQualifies(kind, newValue, h.Target)

	var prog *ProgressionResult
	if newly {
		ev := NewActivityEvent(h.UserKey, CategoryHabitsCompleted, 1, now)
		prog, err = s.processEvent(ctx, r, ev, h.XPValue, streak.Current)
		if err != nil {
			return nil, err
		}
	} else {
		u, err := s.getUserTx(ctx, r, h.UserKey)
		if err != nil {
			return nil, err
		}
		prog = &ProgressionResult{NewXP: u.XP, PreviousLevel: u.Level, NewLevel: u.Level}
	}

	return &HabitLogResult{
		ProgressionResult: *prog,
		Habit:             h,
		Streak:            streak,
		NewlyQualified:    newly,
		TodayValue:        newValue,
	}, nil
}

// processEvent is the coordinator proper. Stages, in order: record the
// event (Received; a duplicate ID short-circuits), bump counters,
// evaluate achievements (AchievementsEvaluated), apply one combined XP
// award (XpApplied), then one bounded level-milestone pass.
func (s *Service) processEvent(ctx context.Context, r txRepos, ev ActivityEvent, baseXP, streakDays int) (*ProgressionResult, error) {
	inserted, err := r.events.Insert(ctx, ev.ID.String(), ev.UserKey, string(ev.Category), ev.Count, ev.OccurredAt)
	if err != nil {
		return nil, err
	}
	if !inserted {
		u, err := s.getUserTx(ctx, r, ev.UserKey)
		if err != nil {
			return nil, err
		}
		s.log.Debug("duplicate event skipped", "event", ev.ID, "category", ev.Category)
		return &ProgressionResult{NewXP: u.XP, PreviousLevel: u.Level, NewLevel: u.Level, Duplicate: true}, nil
	}

	cat := string(ev.Category)
	buckets := []string{
		storage.LifetimeBucket,
		s.calendar.BucketID(PeriodDay, ev.OccurredAt),
		s.calendar.BucketID(PeriodWeek, ev.OccurredAt),
		s.calendar.BucketID(PeriodMonth, ev.OccurredAt),
	}
	for _, b := range buckets {
		if err := r.counters.Bump(ctx, ev.UserKey, cat, b, ev.Count); err != nil {
			return nil, err
		}
	}

	snap := CounterSnapshot{Period: map[Period]int{}}
	if snap.Lifetime, err = r.counters.Get(ctx, ev.UserKey, cat, storage.LifetimeBucket); err != nil {
		return nil, err
	}
	for _, p := range []Period{PeriodDay, PeriodWeek, PeriodMonth} {
		v, err := r.counters.Get(ctx, ev.UserKey, cat, s.calendar.BucketID(p, ev.OccurredAt))
		if err != nil {
			return nil, err
		}
		snap.Period[p] = v
	}

	state, err := s.loadUnlockState(ctx, r, ev.UserKey)
	if err != nil {
		return nil, err
	}

	unlocks := s.eval.Evaluate(ev.Category, snap, state, ev.OccurredAt)
	if streakDays > 0 {
		// The streak counter is a high-water mark carried by the event,
		// not a bumped counter.
		streakSnap := CounterSnapshot{Lifetime: streakDays}
		unlocks = append(unlocks, s.eval.Evaluate(CategoryStreakDays, streakSnap, state, ev.OccurredAt)...)
	}

	// Idempotent insert guards double-awarding: XP only counts for rows
	// actually created.
	awardXP := baseXP
	var granted []Unlock
	for _, u := range unlocks {
		ok, err := r.unlocks.Insert(ctx, ev.UserKey, u.Achievement.Key, u.Bucket, u.Achievement.XPReward, u.UnlockedAt)
		if err != nil {
			return nil, err
		}
		if ok {
			granted = append(granted, u)
			awardXP += u.Achievement.XPReward
		}
	}

	user, err := s.getUserTx(ctx, r, ev.UserKey)
	if err != nil {
		return nil, err
	}
	res, err := Award(s.curve, user.XP, awardXP)
	if err != nil {
		return nil, err
	}
	if err := r.users.UpdateXP(ctx, user.Key, res.NewXP, res.NewLevel); err != nil {
		return nil, err
	}

	finalXP, finalLevel := res.NewXP, res.NewLevel
	totalXP := awardXP

	// Level milestones unlock in the same run their level was reached.
	// Their reward XP is applied in one final award and does not
	// trigger a further milestone pass.
	if res.LeveledUp {
		lvlSnap := CounterSnapshot{Lifetime: res.NewLevel}
		bonus := 0
		for _, u := range s.eval.Evaluate(CategoryLevelReached, lvlSnap, state, ev.OccurredAt) {
			ok, err := r.unlocks.Insert(ctx, ev.UserKey, u.Achievement.Key, u.Bucket, u.Achievement.XPReward, u.UnlockedAt)
			if err != nil {
				return nil, err
			}
			if ok {
				granted = append(granted, u)
				bonus += u.Achievement.XPReward
			}
		}
		if bonus > 0 {
			res2, err := Award(s.curve, finalXP, bonus)
			if err != nil {
				return nil, err
			}
			if err := r.users.UpdateXP(ctx, user.Key, res2.NewXP, res2.NewLevel); err != nil {
				return nil, err
			}
			finalXP, finalLevel = res2.NewXP, res2.NewLevel
			totalXP += bonus
		}
	}

	s.log.Debug("event processed",
		"event", ev.ID, "category", ev.Category,
		"xp", totalXP, "level", finalLevel, "unlocks", len(granted))

	return &ProgressionResult{
		XPAwarded:     totalXP,
		NewXP:         finalXP,
		PreviousLevel: res.PreviousLevel,
		NewLevel:      finalLevel,
		LeveledUp:     finalLevel > res.PreviousLevel,
		Unlocked:      granted,
	}, nil
}

func (s *Service) getUserTx(ctx context.Context, r txRepos, userKey string) (*storage.User, error) {
	u, err := r.users.GetOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	computed := s.curve.LevelFor(u.XP)
	if u.Level != computed {
		u.Level = computed
		if err := r.users.UpdateXP(ctx, u.Key, u.XP, u.Level); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// loadUnlockState snapshots the user's unlock history into the maps
// the evaluator guards against.
func (s *Service) loadUnlockState(ctx context.Context, r txRepos, userKey string) (UnlockState, error) {
	state := UnlockState{
		Unlocked:       map[string]bool{},
		LastMultiple:   map[string]int{},
		PeriodUnlocked: map[string]bool{},
	}
	recs, err := r.unlocks.ListByUser(ctx, userKey)
	if err != nil {
		return state, err
	}
	for _, rec := range recs {
		a, ok := s.catalog.Get(rec.AchievementKey)
		if !ok {
			// Catalog entries may be retired; old records stay benign.
			continue
		}
		switch a.Type {
		case AchievementOneTime:
			state.Unlocked[a.Key] = true
		case AchievementRepeatable:
			if m, err := strconv.Atoi(rec.PeriodBucket); err == nil && m > state.LastMultiple[a.Key] {
				state.LastMultiple[a.Key] = m
			}
		default:
			state.PeriodUnlocked[periodKey(a.Key, rec.PeriodBucket)] = true
		}
	}
	return state, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
