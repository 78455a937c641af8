package engine

import (
	"sort"
	"time"
)

// StreakPolicy fixes the calendar rules a habit's streak is judged
// under: its frequency, the user's timezone for day boundaries, the
// week start day for weekly habits, and the scheduled weekdays for
// custom-frequency habits.
type StreakPolicy struct {
	Frequency  Frequency
	Location   *time.Location
	WeekStart  time.Weekday
	CustomDays map[time.Weekday]bool
}

// LogEntry is one logged value for a habit, attributed to the calendar
// day of At in the policy's timezone.
type LogEntry struct {
	At    time.Time
	Value int
}

// StreakResult is derived from full log history on every call; the
// stored streak columns are only a cache of it.
type StreakResult struct {
	Current   int
	Longest   int
	Total     int // qualifying days over all history
	TodayDone bool
}

// dayIndex converts an instant to a calendar-day ordinal (days since
// the Unix epoch) in the given location.
func dayIndex(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	d := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Unix() / 86400)
}

// weekIndex buckets a day ordinal into weeks that begin on weekStart.
func weekIndex(day int, weekStart time.Weekday) int {
	// Day 0 (1970-01-01) was a Thursday.
	shift := (int(time.Thursday) - int(weekStart) + 7) % 7
	return floorDiv(day+shift, 7)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func weekdayOfDayIndex(day int) time.Weekday {
	return time.Weekday(((day + int(time.Thursday)) % 7 + 7) % 7)
}

// aggregateDays reduces raw logs to one value per calendar day:
// quantity logs sum, duration logs take the max, boolean logs OR.
func aggregateDays(kind HabitKind, logs []LogEntry, loc *time.Location) map[int]int {
	days := map[int]int{}
	for _, l := range logs {
		d := dayIndex(l.At, loc)
		switch kind {
		case HabitKindQuantity:
			days[d] += l.Value
		case HabitKindDuration:
			if l.Value > days[d] {
				days[d] = l.Value
			}
		default:
			if l.Value > 0 {
				days[d] = 1
			}
		}
	}
	return days
}

// DayQualifies reports whether a day's aggregated value meets the
// habit's target. Boolean habits treat any positive value as done.
func DayQualifies(kind HabitKind, value, target int) bool {
	if kind == HabitKindBoolean {
		return value > 0
	}
	if target < 1 {
		target = 1
	}
	return value >= target
}

// ComputeStreaks derives current and longest streaks from full log
// history, evaluated as of now. The current unit (today, or this week)
// with no qualifying log yet does not break a run; a fully elapsed
// unqualified unit does.
func ComputeStreaks(kind HabitKind, target int, policy StreakPolicy, logs []LogEntry, now time.Time) StreakResult {
	loc := policy.Location
	if loc == nil {
		loc = time.UTC
	}
	days := aggregateDays(kind, logs, loc)
	today := dayIndex(now, loc)

	res := StreakResult{}
	if v, ok := days[today]; ok {
		res.TodayDone = DayQualifies(kind, v, target)
	}
	for _, v := range days {
		if DayQualifies(kind, v, target) {
			res.Total++
		}
	}
	if len(days) == 0 {
		return res
	}

	switch policy.Frequency {
	case FrequencyWeekly:
		res.Current, res.Longest = weeklyRuns(kind, target, policy, loc, days, today)
	case FrequencyCustom:
		res.Current, res.Longest = scheduledRuns(kind, target, policy.CustomDays, days, today)
	default:
		res.Current, res.Longest = scheduledRuns(kind, target, nil, days, today)
	}
	return res
}

// scheduledRuns walks every scheduled day from the first log through
// today. A nil schedule means every day (daily frequency); days outside
// the schedule neither extend nor break a run.
func scheduledRuns(kind HabitKind, target int, schedule map[time.Weekday]bool, days map[int]int, today int) (current, longest int) {
	first := today
	for d := range days {
		if d < first {
			first = d
		}
	}
	run := 0
	for d := first; d <= today; d++ {
		if schedule != nil && !schedule[weekdayOfDayIndex(d)] {
			continue
		}
		if DayQualifies(kind, days[d], target) {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		if d == today {
			// Today is still open; an unlogged today keeps the
			// streak alive until the day ends.
			continue
		}
		run = 0
	}
	return run, longest
}

// weeklyRuns treats each week (starting on the policy's week start day)
// with at least one qualifying day as one streak unit.
func weeklyRuns(kind HabitKind, target int, policy StreakPolicy, loc *time.Location, days map[int]int, today int) (current, longest int) {
	qualifying := map[int]bool{}
	for d, v := range days {
		if DayQualifies(kind, v, target) {
			qualifying[weekIndex(d, policy.WeekStart)] = true
		}
	}
	if len(qualifying) == 0 {
		return 0, 0
	}

	weeks := make([]int, 0, len(qualifying))
	for w := range qualifying {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)

	thisWeek := weekIndex(today, policy.WeekStart)
	run := 0
	for w := weeks[0]; w <= thisWeek; w++ {
		if qualifying[w] {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		if w == thisWeek {
			continue
		}
		run = 0
	}
	return run, longest
}
