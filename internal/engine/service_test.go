package engine

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifequest/internal/storage"
)

func newTestService(t *testing.T, curve *LevelCurve, catalog *Catalog) (*Service, *sql.DB) {
	t.Helper()
	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := NewService(db, curve, catalog, CalendarPolicy{Location: time.UTC, WeekStart: time.Monday})
	return svc, db
}

func testCurve(t *testing.T) *LevelCurve {
	t.Helper()
	c, err := NewLevelCurve([]int{0, 50, 120, 300})
	require.NoError(t, err)
	return c
}

func mustCreateHabit(t *testing.T, svc *Service, in CreateHabitInput) *storage.Habit {
	t.Helper()
	if in.UserKey == "" {
		in.UserKey = storage.MainUserKey
	}
	h, err := svc.CreateHabit(context.Background(), in)
	require.NoError(t, err)
	return h
}

func TestLogHabitCombinedAward(t *testing.T) {
	catalog, err := NewCatalog([]Achievement{
		{Key: "every_log", Name: "Every Log", Category: CategoryHabitsCompleted, Type: AchievementRepeatable, Requirement: 1, XPReward: 20},
	})
	require.NoError(t, err)
	svc, db := newTestService(t, testCurve(t), catalog)
	ctx := context.Background()

	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "meditate", Kind: HabitKindBoolean, Frequency: FrequencyDaily, XPValue: 10})
	require.NoError(t, storage.NewUserRepo(db).UpdateXP(ctx, storage.MainUserKey, 95, 2))

	res, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 2))
	require.NoError(t, err)

	// 10 habit XP plus the 20 XP unlock land as one award.
	assert.Equal(t, 30, res.XPAwarded)
	assert.Equal(t, 125, res.NewXP)
	assert.Equal(t, 2, res.PreviousLevel)
	assert.Equal(t, 3, res.NewLevel)
	assert.True(t, res.LeveledUp)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "every_log", res.Unlocked[0].Achievement.Key)
	assert.True(t, res.NewlyQualified)
	assert.Equal(t, 1, res.Streak.Current)
}

func TestLogHabitSameDayIdempotent(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "read", Kind: HabitKindBoolean, Frequency: FrequencyDaily})

	at := day(2026, time.March, 2)
	first, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, at)
	require.NoError(t, err)
	assert.True(t, first.NewlyQualified)
	assert.Greater(t, first.XPAwarded, 0)

	second, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, second.NewlyQualified)
	assert.Equal(t, 0, second.XPAwarded)
	assert.Equal(t, first.NewXP, second.NewXP)
	assert.Empty(t, second.Unlocked)
	assert.Equal(t, 1, second.TodayValue)
}

func TestQuantityHabitCrossesTargetOnce(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "pushups", Kind: HabitKindQuantity, Frequency: FrequencyDaily, Target: 5, Unit: "reps"})

	at := day(2026, time.March, 2)
	res, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 3, at)
	require.NoError(t, err)
	assert.False(t, res.NewlyQualified, "3 of 5 is not done yet")
	assert.Equal(t, 0, res.XPAwarded)
	assert.Equal(t, 3, res.TodayValue)

	res, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 2, at)
	require.NoError(t, err)
	assert.True(t, res.NewlyQualified)
	assert.Greater(t, res.XPAwarded, 0)
	assert.Equal(t, 5, res.TodayValue)

	// Overshooting the already-met target awards nothing more.
	res, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 4, at)
	require.NoError(t, err)
	assert.False(t, res.NewlyQualified)
	assert.Equal(t, 0, res.XPAwarded)
	assert.Equal(t, 9, res.TodayValue)
}

func TestLogHabitRejectsNegativeValue(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "read", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	_, err := svc.LogHabit(context.Background(), storage.MainUserKey, h.ID, -1, day(2026, time.March, 2))
	var invalid InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestLogArchivedHabitFails(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "old", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	require.NoError(t, svc.ArchiveHabit(ctx, storage.MainUserKey, h.ID))
	_, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 2))
	assert.Error(t, err)
}

func TestTrackDailyAchievementResets(t *testing.T) {
	catalog, err := NewCatalog([]Achievement{
		{Key: "two_expenses", Name: "Two Expenses", Category: CategoryExpensesLogged, Type: AchievementDaily, Requirement: 2, XPReward: 15},
	})
	require.NoError(t, err)
	svc, _ := newTestService(t, testCurve(t), catalog)
	ctx := context.Background()

	monday := day(2026, time.March, 2)
	res, err := svc.Track(ctx, storage.MainUserKey, CategoryExpensesLogged, monday)
	require.NoError(t, err)
	assert.Empty(t, res.Unlocked)

	res, err = svc.Track(ctx, storage.MainUserKey, CategoryExpensesLogged, monday)
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, 15, res.XPAwarded)

	// A third event the same day stays inside the awarded bucket.
	res, err = svc.Track(ctx, storage.MainUserKey, CategoryExpensesLogged, monday)
	require.NoError(t, err)
	assert.Empty(t, res.Unlocked)
	assert.Equal(t, 0, res.XPAwarded)

	// The next day the bucket resets and the achievement can fire again.
	tuesday := day(2026, time.March, 3)
	_, err = svc.Track(ctx, storage.MainUserKey, CategoryExpensesLogged, tuesday)
	require.NoError(t, err)
	res, err = svc.Track(ctx, storage.MainUserKey, CategoryExpensesLogged, tuesday)
	require.NoError(t, err)
	require.Len(t, res.Unlocked, 1)
}

func TestTrackRejectsDerivedCategories(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	for _, cat := range []Category{CategoryHabitsCompleted, CategoryStreakDays, CategoryLevelReached} {
		_, err := svc.Track(context.Background(), storage.MainUserKey, cat, day(2026, time.March, 2))
		var invalid InvalidInputError
		assert.ErrorAs(t, err, &invalid, "category %s", cat)
	}
}

func TestStreakMilestoneUnlocks(t *testing.T) {
	catalog, err := NewCatalog([]Achievement{
		{Key: "streak_3", Name: "Three Days", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 3, XPReward: 15},
	})
	require.NoError(t, err)
	svc, _ := newTestService(t, testCurve(t), catalog)
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "run", Kind: HabitKindBoolean, Frequency: FrequencyDaily})

	var last *HabitLogResult
	for i := 0; i < 3; i++ {
		last, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 2+i))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, last.Streak.Current)
	require.Len(t, last.Unlocked, 1)
	assert.Equal(t, "streak_3", last.Unlocked[0].Achievement.Key)

	// Day 4 stays past the milestone without re-awarding it.
	last, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, last.Streak.Current)
	assert.Empty(t, last.Unlocked)
}

func TestLevelMilestoneBonusIsBounded(t *testing.T) {
	catalog, err := NewCatalog([]Achievement{
		{Key: "level_2", Name: "Level Two", Category: CategoryLevelReached, Type: AchievementOneTime, Requirement: 2, XPReward: 50},
	})
	require.NoError(t, err)
	svc, _ := newTestService(t, testCurve(t), catalog)
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "big", Kind: HabitKindBoolean, Frequency: FrequencyDaily, XPValue: 60})

	res, err := svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 2))
	require.NoError(t, err)

	// 60 XP reaches level 2; the milestone bonus applies in the same run
	// but does not trigger another milestone pass.
	assert.Equal(t, 110, res.XPAwarded)
	assert.Equal(t, 110, res.NewXP)
	assert.Equal(t, 2, res.NewLevel)
	assert.True(t, res.LeveledUp)
	require.Len(t, res.Unlocked, 1)
	assert.Equal(t, "level_2", res.Unlocked[0].Achievement.Key)
}

func TestTimerLifecycle(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	focus := mustCreateHabit(t, svc, CreateHabitInput{Name: "focus", Kind: HabitKindDuration, Frequency: FrequencyDaily, Target: 30, Unit: "minutes"})
	other := mustCreateHabit(t, svc, CreateHabitInput{Name: "stretch", Kind: HabitKindDuration, Frequency: FrequencyDaily, Target: 10, Unit: "minutes"})

	start := day(2026, time.March, 2)
	timer, err := svc.StartTimer(ctx, storage.MainUserKey, focus.ID, start)
	require.NoError(t, err)
	assert.Equal(t, focus.ID, timer.HabitID)

	// A second start loses and leaves the running timer untouched.
	_, err = svc.StartTimer(ctx, storage.MainUserKey, other.ID, start.Add(time.Minute))
	var conflict ActiveTimerConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, focus.ID, conflict.HabitID)

	active, err := svc.ActiveTimer(ctx, storage.MainUserKey)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, focus.ID, active.HabitID)

	// Stopping a habit that is not the running one fails the same way
	// whether or not any timer exists.
	_, err = svc.StopTimer(ctx, storage.MainUserKey, other.ID, start.Add(time.Minute))
	var none NoActiveTimerError
	require.ErrorAs(t, err, &none)

	res, err := svc.StopTimer(ctx, storage.MainUserKey, focus.ID, start.Add(45*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 45, res.TodayValue)
	assert.True(t, res.NewlyQualified, "45 minutes meets the 30 minute target")
	assert.Greater(t, res.XPAwarded, 0)

	active, err = svc.ActiveTimer(ctx, storage.MainUserKey)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestStopTimerWithoutTimer(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "focus", Kind: HabitKindDuration, Frequency: FrequencyDaily, Target: 30, Unit: "minutes"})
	_, err := svc.StopTimer(context.Background(), storage.MainUserKey, h.ID, day(2026, time.March, 2))
	var none NoActiveTimerError
	require.ErrorAs(t, err, &none)
	assert.Equal(t, h.ID, none.HabitID)
}

func TestStartTimerNonDurationHabit(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "read", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	_, err := svc.StartTimer(context.Background(), storage.MainUserKey, h.ID, day(2026, time.March, 2))
	var invalid InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestShortTimerBelowTarget(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "focus", Kind: HabitKindDuration, Frequency: FrequencyDaily, Target: 30, Unit: "minutes"})

	start := day(2026, time.March, 2)
	_, err := svc.StartTimer(ctx, storage.MainUserKey, h.ID, start)
	require.NoError(t, err)
	res, err := svc.StopTimer(ctx, storage.MainUserKey, h.ID, start.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 10, res.TodayValue)
	assert.False(t, res.NewlyQualified)
	assert.Equal(t, 0, res.XPAwarded)
}

func TestUserLevelHeals(t *testing.T) {
	svc, db := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()

	_, err := storage.NewUserRepo(db).GetOrCreate(ctx, storage.MainUserKey)
	require.NoError(t, err)
	// Stored level out of sync with the curve.
	require.NoError(t, storage.NewUserRepo(db).UpdateXP(ctx, storage.MainUserKey, 130, 1))

	u, err := svc.User(ctx, storage.MainUserKey)
	require.NoError(t, err)
	assert.Equal(t, 130, u.XP)
	assert.Equal(t, 3, u.Level)
}

func TestCreateHabitValidation(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()

	// Boolean habits normalize target and unit.
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "floss", Kind: HabitKindBoolean, Frequency: FrequencyDaily, Target: 7, Unit: "times"})
	assert.Equal(t, 1, h.Target)
	assert.Nil(t, h.Unit)
	assert.Equal(t, DefaultHabitXP, h.XPValue)

	_, err := svc.CreateHabit(ctx, CreateHabitInput{Name: "", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	assert.Error(t, err)

	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "gym", Kind: HabitKindDuration, Frequency: FrequencyDaily, Target: 30, Unit: "fortnights"})
	assert.Error(t, err)

	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "swim", Kind: HabitKind("sporadic"), Frequency: FrequencyDaily})
	assert.Error(t, err)

	_, err = svc.CreateHabit(ctx, CreateHabitInput{Name: "piano", Kind: HabitKindBoolean, Frequency: FrequencyCustom})
	assert.Error(t, err, "custom frequency needs weekdays")
}

func TestAchievementOverview(t *testing.T) {
	catalog, err := NewCatalog([]Achievement{
		{Key: "first", Name: "First", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 1, XPReward: 10},
		{Key: "every_one", Name: "Each", Category: CategoryHabitsCompleted, Type: AchievementRepeatable, Requirement: 1, XPReward: 5},
	})
	require.NoError(t, err)
	svc, _ := newTestService(t, testCurve(t), catalog)
	ctx := context.Background()
	h := mustCreateHabit(t, svc, CreateHabitInput{Name: "read", Kind: HabitKindBoolean, Frequency: FrequencyDaily})

	_, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 2))
	require.NoError(t, err)
	_, err = svc.LogHabit(ctx, storage.MainUserKey, h.ID, 1, day(2026, time.March, 3))
	require.NoError(t, err)

	overview, err := svc.AchievementOverview(ctx, storage.MainUserKey)
	require.NoError(t, err)
	byKey := map[string]AchievementStatus{}
	for _, st := range overview {
		byKey[st.Achievement.Key] = st
	}
	assert.True(t, byKey["first"].Unlocked)
	assert.Equal(t, 1, byKey["first"].TimesEarned)
	assert.Equal(t, 2, byKey["every_one"].TimesEarned)
	require.NotNil(t, byKey["every_one"].LastUnlocked)
}

func TestHabitOverview(t *testing.T) {
	svc, _ := newTestService(t, testCurve(t), BuiltinCatalog())
	ctx := context.Background()
	a := mustCreateHabit(t, svc, CreateHabitInput{Name: "read", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	b := mustCreateHabit(t, svc, CreateHabitInput{Name: "gone", Kind: HabitKindBoolean, Frequency: FrequencyDaily})
	require.NoError(t, svc.ArchiveHabit(ctx, storage.MainUserKey, b.ID))

	at := day(2026, time.March, 2)
	_, err := svc.LogHabit(ctx, storage.MainUserKey, a.ID, 1, at)
	require.NoError(t, err)

	overview, err := svc.HabitOverview(ctx, storage.MainUserKey, at)
	require.NoError(t, err)
	require.Len(t, overview, 1, "archived habits are excluded")
	assert.Equal(t, a.ID, overview[0].Habit.ID)
	assert.Equal(t, 1, overview[0].Streak.Current)
	assert.True(t, overview[0].Streak.TodayDone)
	assert.Equal(t, 1, overview[0].TodayValue)
	assert.False(t, overview[0].TimerRunning)
}
