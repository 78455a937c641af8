package engine

import (
	"fmt"
	"strings"
)

// AchievementType selects the evaluation strategy for a catalog entry.
type AchievementType string

const (
	AchievementOneTime    AchievementType = "one_time"
	AchievementRepeatable AchievementType = "repeatable"
	AchievementDaily      AchievementType = "daily"
	AchievementWeekly     AchievementType = "weekly"
	AchievementMonthly    AchievementType = "monthly"
)

func (t AchievementType) IsValid() bool {
	switch t {
	case AchievementOneTime, AchievementRepeatable, AchievementDaily, AchievementWeekly, AchievementMonthly:
		return true
	default:
		return false
	}
}

func ParseAchievementType(input string) (AchievementType, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	t := AchievementType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid achievement type: %q", input)
	}
	return t, nil
}

// Period is the reset window of a periodic achievement type.
type Period string

const (
	PeriodNone  Period = ""
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ResetPeriod maps periodic types to their bucketing window; one_time
// and repeatable have none.
func (t AchievementType) ResetPeriod() Period {
	switch t {
	case AchievementDaily:
		return PeriodDay
	case AchievementWeekly:
		return PeriodWeek
	case AchievementMonthly:
		return PeriodMonth
	default:
		return PeriodNone
	}
}

// Category names the activity counter an achievement is evaluated
// against.
type Category string

const (
	CategoryHabitsCompleted Category = "habits_completed"
	CategoryStreakDays      Category = "streak_days"
	CategoryExpensesLogged  Category = "expenses_logged"
	CategoryDeadlinesMet    Category = "deadlines_met"
	CategoryNotesCreated    Category = "notes_created"
	CategoryLevelReached    Category = "level_reached"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryHabitsCompleted, CategoryStreakDays, CategoryExpensesLogged,
		CategoryDeadlinesMet, CategoryNotesCreated, CategoryLevelReached:
		return true
	default:
		return false
	}
}

func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid activity category: %q", input)
	}
	return c, nil
}

// Achievement is an immutable catalog entry. Key is the stable identity
// used for idempotent unlock inserts. Hidden only affects disclosure;
// Tier only affects display grouping.
type Achievement struct {
	Key         string
	Name        string
	Description string
	Icon        string
	Category    Category
	Type        AchievementType
	Requirement int
	XPReward    int
	Hidden      bool
	Tier        int
}

// Catalog is the validated, immutable achievement catalog.
type Catalog struct {
	entries    []Achievement
	byKey      map[string]Achievement
	byCategory map[Category][]Achievement
}

// NewCatalog validates entries once at load time. A malformed entry is
// fatal here rather than per event.
func NewCatalog(entries []Achievement) (*Catalog, error) {
	c := &Catalog{
		entries:    append([]Achievement(nil), entries...),
		byKey:      make(map[string]Achievement, len(entries)),
		byCategory: map[Category][]Achievement{},
	}
	for _, a := range c.entries {
		if a.Key == "" {
			return nil, InvalidInputError{Field: "achievement", Reason: "empty key"}
		}
		if _, dup := c.byKey[a.Key]; dup {
			return nil, InvalidInputError{Field: "achievement " + a.Key, Reason: "duplicate key"}
		}
		if !a.Type.IsValid() {
			return nil, InvalidInputError{Field: "achievement " + a.Key, Reason: fmt.Sprintf("invalid type %q", a.Type)}
		}
		if !a.Category.IsValid() {
			return nil, InvalidInputError{Field: "achievement " + a.Key, Reason: fmt.Sprintf("invalid category %q", a.Category)}
		}
		if a.Requirement < 1 {
			return nil, InvalidInputError{Field: "achievement " + a.Key, Reason: "requirement must be >= 1"}
		}
		if a.XPReward < 0 {
			return nil, InvalidInputError{Field: "achievement " + a.Key, Reason: "xp reward must not be negative"}
		}
		c.byKey[a.Key] = a
		c.byCategory[a.Category] = append(c.byCategory[a.Category], a)
	}
	return c, nil
}

func (c *Catalog) All() []Achievement {
	return append([]Achievement(nil), c.entries...)
}

func (c *Catalog) Get(key string) (Achievement, bool) {
	a, ok := c.byKey[key]
	return a, ok
}

func (c *Catalog) ByCategory(cat Category) []Achievement {
	return c.byCategory[cat]
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

// BuiltinCatalog returns the seeded catalog. Keys are stable; unlock
// records reference them forever, so entries may be added but never
// renamed.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog([]Achievement{
		// Habit completion milestones
		{Key: "first_log", Name: "First Step", Description: "Complete a habit once", Icon: "🌱", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 1, XPReward: 10, Tier: 1},
		{Key: "committed", Name: "Committed", Description: "Complete habits 10 times", Icon: "🌿", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 10, XPReward: 25, Tier: 1},
		{Key: "dedicated", Name: "Dedicated", Description: "Complete habits 50 times", Icon: "🌳", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 50, XPReward: 60, Tier: 2},
		{Key: "centurion", Name: "Centurion", Description: "Complete habits 100 times", Icon: "🏛️", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 100, XPReward: 120, Tier: 3},
		{Key: "relentless", Name: "Relentless", Description: "Complete habits 500 times", Icon: "⚡", Category: CategoryHabitsCompleted, Type: AchievementOneTime, Requirement: 500, XPReward: 300, Hidden: true, Tier: 3},
		{Key: "habit_machine", Name: "Habit Machine", Description: "Every 25 habit completions", Icon: "⚙️", Category: CategoryHabitsCompleted, Type: AchievementRepeatable, Requirement: 25, XPReward: 20, Tier: 2},

		// Periodic habit volume
		{Key: "daily_triple", Name: "Hat Trick", Description: "Complete 3 habits in one day", Icon: "🎩", Category: CategoryHabitsCompleted, Type: AchievementDaily, Requirement: 3, XPReward: 15, Tier: 1},
		{Key: "weekly_twenty", Name: "Strong Week", Description: "Complete 20 habits in one week", Icon: "📅", Category: CategoryHabitsCompleted, Type: AchievementWeekly, Requirement: 20, XPReward: 40, Tier: 2},
		{Key: "monthly_fifty", Name: "Monthly Grind", Description: "Complete 50 habits in one month", Icon: "🗓️", Category: CategoryHabitsCompleted, Type: AchievementMonthly, Requirement: 50, XPReward: 80, Tier: 2},

		// Streak milestones
		{Key: "streak_3", Name: "Warming Up", Description: "Reach a 3-day streak", Icon: "✨", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 3, XPReward: 15, Tier: 1},
		{Key: "streak_7", Name: "On Fire", Description: "Reach a 7-day streak", Icon: "🔥", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 7, XPReward: 35, Tier: 2},
		{Key: "streak_30", Name: "Unbreakable", Description: "Reach a 30-day streak", Icon: "💎", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 30, XPReward: 120, Tier: 3},
		{Key: "streak_100", Name: "Legend", Description: "Reach a 100-day streak", Icon: "🐉", Category: CategoryStreakDays, Type: AchievementOneTime, Requirement: 100, XPReward: 400, Hidden: true, Tier: 3},

		// Expenses
		{Key: "first_expense", Name: "Penny Counter", Description: "Log an expense", Icon: "🪙", Category: CategoryExpensesLogged, Type: AchievementOneTime, Requirement: 1, XPReward: 10, Tier: 1},
		{Key: "budget_hawk", Name: "Budget Hawk", Description: "Log 50 expenses", Icon: "🦅", Category: CategoryExpensesLogged, Type: AchievementOneTime, Requirement: 50, XPReward: 60, Tier: 2},
		{Key: "ledger_keeper", Name: "Ledger Keeper", Description: "Every 100 expenses logged", Icon: "📒", Category: CategoryExpensesLogged, Type: AchievementRepeatable, Requirement: 100, XPReward: 30, Tier: 2},

		// Deadlines
		{Key: "first_deadline", Name: "Just In Time", Description: "Meet a deadline", Icon: "⏳", Category: CategoryDeadlinesMet, Type: AchievementOneTime, Requirement: 1, XPReward: 10, Tier: 1},
		{Key: "deadline_crusher", Name: "Deadline Crusher", Description: "Meet 25 deadlines", Icon: "🔨", Category: CategoryDeadlinesMet, Type: AchievementOneTime, Requirement: 25, XPReward: 75, Tier: 2},

		// Notes
		{Key: "first_note", Name: "Noted", Description: "Write a note", Icon: "📝", Category: CategoryNotesCreated, Type: AchievementOneTime, Requirement: 1, XPReward: 5, Tier: 1},
		{Key: "scribe", Name: "Scribe", Description: "Write 100 notes", Icon: "🖋️", Category: CategoryNotesCreated, Type: AchievementOneTime, Requirement: 100, XPReward: 50, Tier: 2},

		// Level milestones
		{Key: "level_5", Name: "Adventurer", Description: "Reach level 5", Icon: "🗺️", Category: CategoryLevelReached, Type: AchievementOneTime, Requirement: 5, XPReward: 50, Tier: 1},
		{Key: "level_10", Name: "Veteran", Description: "Reach level 10", Icon: "🌟", Category: CategoryLevelReached, Type: AchievementOneTime, Requirement: 10, XPReward: 150, Tier: 2},
		{Key: "level_20", Name: "Ascended", Description: "Reach level 20", Icon: "💫", Category: CategoryLevelReached, Type: AchievementOneTime, Requirement: 20, XPReward: 500, Hidden: true, Tier: 3},
	})
	if err != nil {
		panic(err)
	}
	return c
}
