package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]Achievement{
		{Key: "ten", Name: "Ten", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 10, XPReward: 25},
		{Key: "secret", Name: "Secret", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 10, XPReward: 100, Hidden: true},
		{Key: "every5", Name: "Every Five", Category: CategoryHabitsCompleted, Type: AchievementRepeatable, Requirement: 5, XPReward: 10},
		{Key: "three_today", Name: "Three Today", Category: CategoryHabitsCompleted, Type: AchievementDaily, Requirement: 3, XPReward: 15},
	})
	require.NoError(t, err)
	return c
}

func emptyState() UnlockState {
	return UnlockState{
		Unlocked:       map[string]bool{},
		LastMultiple:   map[string]int{},
		PeriodUnlocked: map[string]bool{},
	}
}

func unlockKeys(unlocks []Unlock) []string {
	keys := make([]string, 0, len(unlocks))
	for _, u := range unlocks {
		keys = append(keys, u.Achievement.Key)
	}
	return keys
}

func TestEvaluateOneTimeFiresOnce(t *testing.T) {
	eval := NewEvaluator(testCatalog(t), CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	now := day(2026, time.March, 2)

	counters := CounterSnapshot{Lifetime: 10, Period: map[Period]int{PeriodDay: 1}}
	unlocks := eval.Evaluate(CategoryHabitsCompleted, counters, emptyState(), now)
	assert.Contains(t, unlockKeys(unlocks), "ten")

	state := emptyState()
	state.Unlocked["ten"] = true
	state.Unlocked["secret"] = true
	state.LastMultiple["every5"] = 2
	unlocks = eval.Evaluate(CategoryHabitsCompleted, counters, state, now)
	assert.Empty(t, unlocks)
}

func TestEvaluateBelowRequirement(t *testing.T) {
	eval := NewEvaluator(testCatalog(t), CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	counters := CounterSnapshot{Lifetime: 4, Period: map[Period]int{PeriodDay: 2}}
	unlocks := eval.Evaluate(CategoryHabitsCompleted, counters, emptyState(), day(2026, time.March, 2))
	assert.Empty(t, unlocks)
}

func TestEvaluateHiddenLikeVisible(t *testing.T) {
	eval := NewEvaluator(testCatalog(t), CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	counters := CounterSnapshot{Lifetime: 10, Period: map[Period]int{}}
	unlocks := eval.Evaluate(CategoryHabitsCompleted, counters, emptyState(), day(2026, time.March, 2))
	assert.Contains(t, unlockKeys(unlocks), "secret")
}

func TestEvaluateRepeatableMultiples(t *testing.T) {
	eval := NewEvaluator(testCatalog(t), CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	now := day(2026, time.March, 2)
	state := emptyState()
	state.Unlocked["ten"] = true
	state.Unlocked["secret"] = true

	// 14 lifetime completions: multiple 2 of "every5".
	counters := CounterSnapshot{Lifetime: 14, Period: map[Period]int{}}
	unlocks := eval.Evaluate(CategoryHabitsCompleted, counters, state, now)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "every5", unlocks[0].Achievement.Key)
	assert.Equal(t, "2", unlocks[0].Bucket)

	// Same count again: already at multiple 2, nothing fires.
	state.LastMultiple["every5"] = 2
	unlocks = eval.Evaluate(CategoryHabitsCompleted, counters, state, now)
	assert.Empty(t, unlocks)

	// Crossing into multiple 3 fires again with a new bucket.
	counters.Lifetime = 15
	unlocks = eval.Evaluate(CategoryHabitsCompleted, counters, state, now)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "3", unlocks[0].Bucket)
}

func TestEvaluateDailyResetsAcrossDays(t *testing.T) {
	eval := NewEvaluator(testCatalog(t), CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	state := emptyState()
	state.Unlocked["ten"] = true
	state.Unlocked["secret"] = true
	state.LastMultiple["every5"] = 10

	monday := day(2026, time.March, 2)
	counters := CounterSnapshot{Lifetime: 50, Period: map[Period]int{PeriodDay: 3}}
	unlocks := eval.Evaluate(CategoryHabitsCompleted, counters, state, monday)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "three_today", unlocks[0].Achievement.Key)
	assert.Equal(t, "2026-03-02", unlocks[0].Bucket)

	// Already unlocked for this bucket: silent.
	state.PeriodUnlocked[periodKey("three_today", "2026-03-02")] = true
	unlocks = eval.Evaluate(CategoryHabitsCompleted, counters, state, monday)
	assert.Empty(t, unlocks)

	// The next day is a fresh bucket.
	tuesday := day(2026, time.March, 3)
	unlocks = eval.Evaluate(CategoryHabitsCompleted, counters, state, tuesday)
	require.Len(t, unlocks, 1)
	assert.Equal(t, "2026-03-03", unlocks[0].Bucket)
}

func TestBucketID(t *testing.T) {
	p := CalendarPolicy{Location: time.UTC, WeekStart: time.Monday}
	at := day(2026, time.March, 2)
	assert.Equal(t, "2026-03-02", p.BucketID(PeriodDay, at))
	assert.Equal(t, "2026-03", p.BucketID(PeriodMonth, at))
	assert.Equal(t, "", p.BucketID(PeriodNone, at))

	// Week buckets turn over at the configured week start, not Sunday.
	sun := day(2026, time.March, 1)
	mon := day(2026, time.March, 2)
	assert.NotEqual(t, p.BucketID(PeriodWeek, sun), p.BucketID(PeriodWeek, mon))
}

func TestBucketIDUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	p := CalendarPolicy{Location: tokyo, WeekStart: time.Monday}

	// 2026-03-02 23:00 UTC is already March 3rd in Tokyo.
	at := time.Date(2026, time.March, 2, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-03", p.BucketID(PeriodDay, at))
}

func TestNewCatalogRejectsMalformedEntries(t *testing.T) {
	cases := []struct {
		name  string
		entry Achievement
	}{
		{"empty key", Achievement{Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 1}},
		{"bad type", Achievement{Key: "x", Category: CategoryHabitsCompleted, Type: "sometimes", Requirement: 1}},
		{"bad category", Achievement{Key: "x", Category: "likes", Type: AchievementOneTime, Requirement: 1}},
		{"zero requirement", Achievement{Key: "x", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 0}},
		{"negative reward", Achievement{Key: "x", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 1, XPReward: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog([]Achievement{tc.entry})
			assert.Error(t, err)
		})
	}
}

func TestNewCatalogRejectsDuplicateKeys(t *testing.T) {
	_, err := NewCatalog([]Achievement{
		{Key: "dup", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 1},
		{Key: "dup", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 2},
	})
	assert.Error(t, err)
}

func TestBuiltinCatalogLoads(t *testing.T) {
	c := BuiltinCatalog()
	assert.Greater(t, c.Len(), 0)
	a, ok := c.Get("first_log")
	assert.True(t, ok)
	assert.Equal(t, AchievementOneTime, a.Type)
}
