package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 12, 0, 0, 0, time.UTC)
}

func dailyPolicy() StreakPolicy {
	return StreakPolicy{Frequency: FrequencyDaily, Location: time.UTC, WeekStart: time.Monday}
}

func TestDailyStreakBrokenByGap(t *testing.T) {
	// Qualifying logs on D, D+1, D+2; nothing on D+3.
	logs := []LogEntry{
		{At: day(2026, time.March, 2), Value: 1},
		{At: day(2026, time.March, 3), Value: 1},
		{At: day(2026, time.March, 4), Value: 1},
	}

	// Evaluated during D+3 the streak is still alive: today is open.
	res := ComputeStreaks(HabitKindBoolean, 1, dailyPolicy(), logs, day(2026, time.March, 5))
	assert.Equal(t, 3, res.Current)
	assert.Equal(t, 3, res.Longest)
	assert.False(t, res.TodayDone)

	// At D+4 the elapsed empty day has broken it.
	res = ComputeStreaks(HabitKindBoolean, 1, dailyPolicy(), logs, day(2026, time.March, 6))
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 3, res.Longest)
	assert.Equal(t, 3, res.Total)
}

func TestDailyStreakEmptyHistory(t *testing.T) {
	res := ComputeStreaks(HabitKindBoolean, 1, dailyPolicy(), nil, day(2026, time.March, 5))
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 0, res.Longest)
	assert.Equal(t, 0, res.Total)
}

func TestQuantityBelowTargetDoesNotQualify(t *testing.T) {
	logs := []LogEntry{
		{At: day(2026, time.March, 2), Value: 5},
		{At: day(2026, time.March, 3), Value: 2}, // below target
		{At: day(2026, time.March, 4), Value: 5},
	}
	res := ComputeStreaks(HabitKindQuantity, 5, dailyPolicy(), logs, day(2026, time.March, 4))
	assert.Equal(t, 1, res.Current, "the below-target day broke the run")
	assert.Equal(t, 1, res.Longest)
	assert.Equal(t, 2, res.Total)
	assert.True(t, res.TodayDone)
}

func TestQuantityLogsSumWithinDay(t *testing.T) {
	// Two partial logs on one day add up to a qualifying total.
	logs := []LogEntry{
		{At: day(2026, time.March, 2).Add(-2 * time.Hour), Value: 3},
		{At: day(2026, time.March, 2), Value: 2},
	}
	res := ComputeStreaks(HabitKindQuantity, 5, dailyPolicy(), logs, day(2026, time.March, 2))
	assert.True(t, res.TodayDone)
	assert.Equal(t, 1, res.Current)
}

func TestDurationLogsMaxWithinDay(t *testing.T) {
	// Duration values on one day max-reduce, they never add.
	logs := []LogEntry{
		{At: day(2026, time.March, 2).Add(-2 * time.Hour), Value: 20},
		{At: day(2026, time.March, 2), Value: 25},
	}
	res := ComputeStreaks(HabitKindDuration, 30, dailyPolicy(), logs, day(2026, time.March, 2))
	assert.False(t, res.TodayDone, "25 < 30 even though 20+25 > 30")
}

func TestWeeklyStreak(t *testing.T) {
	policy := StreakPolicy{Frequency: FrequencyWeekly, Location: time.UTC, WeekStart: time.Monday}

	// 2026-03-02 is a Monday. One log in week W, one in W+1.
	logs := []LogEntry{
		{At: day(2026, time.March, 3), Value: 1},  // week W
		{At: day(2026, time.March, 11), Value: 1}, // week W+1
	}
	res := ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 13))
	assert.Equal(t, 2, res.Current)
	assert.Equal(t, 2, res.Longest)

	// Skip W+2 entirely, log again in W+3: back to 1.
	logs = append(logs, LogEntry{At: day(2026, time.March, 24), Value: 1}) // week W+3
	res = ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 25))
	assert.Equal(t, 1, res.Current)
	assert.Equal(t, 2, res.Longest)
}

func TestWeeklyStreakAliveInOpenWeek(t *testing.T) {
	policy := StreakPolicy{Frequency: FrequencyWeekly, Location: time.UTC, WeekStart: time.Monday}

	// Logged last week, nothing yet this week: still alive.
	logs := []LogEntry{
		{At: day(2026, time.March, 3), Value: 1},
	}
	res := ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 10))
	assert.Equal(t, 1, res.Current)
}

func TestCustomDaysSkipUnscheduled(t *testing.T) {
	policy := StreakPolicy{
		Frequency: FrequencyCustom,
		Location:  time.UTC,
		WeekStart: time.Monday,
		CustomDays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Wednesday: true,
			time.Friday:    true,
		},
	}

	// Mon 2nd, Wed 4th, Fri 6th logged; Tue/Thu don't matter.
	logs := []LogEntry{
		{At: day(2026, time.March, 2), Value: 1},
		{At: day(2026, time.March, 4), Value: 1},
		{At: day(2026, time.March, 6), Value: 1},
	}

	// Evaluated on Sunday the 8th: unscheduled days neither broke nor
	// extended the run.
	res := ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 8))
	assert.Equal(t, 3, res.Current)
	assert.Equal(t, 3, res.Longest)

	// A missed scheduled Monday (9th) breaks it from Wednesday on.
	res = ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 11))
	assert.Equal(t, 0, res.Current)
	assert.Equal(t, 3, res.Longest)
}

func TestCustomDaysTodayScheduledStillOpen(t *testing.T) {
	policy := StreakPolicy{
		Frequency:  FrequencyCustom,
		Location:   time.UTC,
		WeekStart:  time.Monday,
		CustomDays: map[time.Weekday]bool{time.Monday: true, time.Wednesday: true},
	}
	logs := []LogEntry{
		{At: day(2026, time.March, 2), Value: 1}, // Monday
	}
	// Wednesday the 4th, not yet logged: the run survives the open day.
	res := ComputeStreaks(HabitKindBoolean, 1, policy, logs, day(2026, time.March, 4))
	assert.Equal(t, 1, res.Current)
}

func TestWeekIndexRespectsWeekStart(t *testing.T) {
	// 2026-03-01 is a Sunday. With Monday weeks it belongs to the
	// previous week; with Sunday weeks it opens a new one.
	sunday := dayIndex(day(2026, time.March, 1), time.UTC)
	monday := dayIndex(day(2026, time.March, 2), time.UTC)
	assert.NotEqual(t, weekIndex(sunday, time.Monday), weekIndex(monday, time.Monday))
	assert.Equal(t, weekIndex(monday-1, time.Sunday), weekIndex(monday, time.Sunday))
}
