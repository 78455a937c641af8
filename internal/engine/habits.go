package engine

import (
	"fmt"
	"strings"
	"time"
)

type HabitKind string

const (
	HabitKindBoolean  HabitKind = "boolean"
	HabitKindQuantity HabitKind = "quantity"
	HabitKindDuration HabitKind = "duration"
)

func (k HabitKind) IsValid() bool {
	switch k {
	case HabitKindBoolean, HabitKindQuantity, HabitKindDuration:
		return true
	default:
		return false
	}
}

func ParseHabitKind(input string) (HabitKind, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return HabitKindBoolean, nil
	}
	k := HabitKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid habit kind: %q", input)
	}
	return k, nil
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	default:
		return false
	}
}

func ParseFrequency(input string) (Frequency, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return FrequencyDaily, nil
	}
	f := Frequency(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid frequency: %q", input)
	}
	return f, nil
}

// DurationUnit is the unit a duration habit's target and logged values
// are expressed in. Timer elapsed time is converted into it on stop.
type DurationUnit string

const (
	UnitSeconds DurationUnit = "seconds"
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
)

func (u DurationUnit) IsValid() bool {
	switch u {
	case UnitSeconds, UnitMinutes, UnitHours:
		return true
	default:
		return false
	}
}

func ParseDurationUnit(input string) (DurationUnit, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return UnitMinutes, nil
	}
	u := DurationUnit(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid duration unit: %q", input)
	}
	return u, nil
}

// Seconds returns how many seconds one unit represents.
func (u DurationUnit) Seconds() int {
	switch u {
	case UnitMinutes:
		return 60
	case UnitHours:
		return 3600
	default:
		return 1
	}
}

// ParseWeekdays parses a comma-separated weekday list ("mon,wed,fri")
// into the custom-frequency day set.
func ParseWeekdays(input string) (map[time.Weekday]bool, error) {
	out := map[time.Weekday]bool{}
	for _, part := range strings.Split(input, ",") {
		s := strings.TrimSpace(strings.ToLower(part))
		if s == "" {
			continue
		}
		day, err := parseWeekday(s)
		if err != nil {
			return nil, err
		}
		out[day] = true
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no weekdays in %q", input)
	}
	return out, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch s {
	case "sun", "sunday":
		return time.Sunday, nil
	case "mon", "monday":
		return time.Monday, nil
	case "tue", "tuesday":
		return time.Tuesday, nil
	case "wed", "wednesday":
		return time.Wednesday, nil
	case "thu", "thursday":
		return time.Thursday, nil
	case "fri", "friday":
		return time.Friday, nil
	case "sat", "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid weekday: %q", s)
	}
}
