package storage

import "time"

type User struct {
	Key       string
	XP        int
	Level     int
	CreatedAt time.Time
}

type Habit struct {
	ID         int64
	UserKey    string
	Name       string
	Kind       string
	Frequency  string
	Target     int
	Unit       *string
	CustomDays []int // weekday numbers, Sunday = 0
	XPValue    int
	Archived   bool
	CreatedAt  time.Time

	// Derived columns; only the streak recompute path writes them.
	CurrentStreak    int
	LongestStreak    int
	TotalCompletions int
}

type HabitLog struct {
	ID             int64
	HabitID        int64
	LogDate        string // local calendar day, 2006-01-02
	Value          int
	TimerStartedAt *time.Time
	TimerStoppedAt *time.Time
	CreatedAt      time.Time
}

type UserAchievement struct {
	ID             int64
	UserKey        string
	AchievementKey string
	PeriodBucket   string
	XPAwarded      int
	UnlockedAt     time.Time
}

type ActiveTimer struct {
	UserKey   string
	HabitID   int64
	StartedAt time.Time
}
