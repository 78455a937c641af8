package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lifequest/internal/storage"
)

// Service wires the progression engine to its repos. All mutation paths
// run through the coordinator pipeline in coordinator.go.
type Service struct {
	db       *sql.DB
	curve    *LevelCurve
	catalog  *Catalog
	calendar CalendarPolicy
	eval     *Evaluator
	log      *slog.Logger

	users   *storage.UserRepo
	habits  *storage.HabitRepo
	logs    *storage.LogRepo
	unlocks *storage.UnlockRepo
	timers  *storage.TimerRepo
}

func NewService(db *sql.DB, curve *LevelCurve, catalog *Catalog, calendar CalendarPolicy) *Service {
	return &Service{
		db:       db,
		curve:    curve,
		catalog:  catalog,
		calendar: calendar,
		eval:     NewEvaluator(catalog, calendar),
		log:      slog.Default(),
		users:    storage.NewUserRepo(db),
		habits:   storage.NewHabitRepo(db),
		logs:     storage.NewLogRepo(db),
		unlocks:  storage.NewUnlockRepo(db),
		timers:   storage.NewTimerRepo(db),
	}
}

func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

func (s *Service) Curve() *LevelCurve { return s.curve }
func (s *Service) Catalog() *Catalog  { return s.catalog }

// txRepos is the repo set bound to one pipeline transaction.
type txRepos struct {
	users    *storage.UserRepo
	habits   *storage.HabitRepo
	logs     *storage.LogRepo
	events   *storage.EventRepo
	counters *storage.CounterRepo
	unlocks  *storage.UnlockRepo
	timers   *storage.TimerRepo
}

func newTxRepos(q storage.DBTX) txRepos {
	return txRepos{
		users:    storage.NewUserRepo(q),
		habits:   storage.NewHabitRepo(q),
		logs:     storage.NewLogRepo(q),
		events:   storage.NewEventRepo(q),
		counters: storage.NewCounterRepo(q),
		unlocks:  storage.NewUnlockRepo(q),
		timers:   storage.NewTimerRepo(q),
	}
}

// User returns the user's progression state, healing the cached level
// if it has drifted from the curve.
func (s *Service) User(ctx context.Context, userKey string) (*storage.User, error) {
	u, err := s.users.GetOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}
	computed := s.curve.LevelFor(u.XP)
	if u.Level != computed {
		u.Level = computed
		if err := s.users.UpdateXP(ctx, u.Key, u.XP, u.Level); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errors.New("name is required")
	}
	return n, nil
}

type CreateHabitInput struct {
	UserKey    string
	Name       string
	Kind       HabitKind
	Frequency  Frequency
	Target     int
	Unit       string
	CustomDays map[time.Weekday]bool
	XPValue    int
}

func (s *Service) CreateHabit(ctx context.Context, in CreateHabitInput) (*storage.Habit, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if !in.Kind.IsValid() {
		return nil, InvalidInputError{Field: "habit kind", Reason: fmt.Sprintf("%q", in.Kind)}
	}
	if !in.Frequency.IsValid() {
		return nil, InvalidInputError{Field: "frequency", Reason: fmt.Sprintf("%q", in.Frequency)}
	}
	if in.Frequency == FrequencyCustom && len(in.CustomDays) == 0 {
		return nil, InvalidInputError{Field: "frequency", Reason: "custom frequency needs at least one weekday"}
	}

	target := in.Target
	unit := strings.TrimSpace(in.Unit)
	switch in.Kind {
	case HabitKindBoolean:
		target = 1
		unit = ""
	case HabitKindDuration:
		u, err := ParseDurationUnit(unit)
		if err != nil {
			return nil, InvalidInputError{Field: "unit", Reason: err.Error()}
		}
		unit = string(u)
		if target < 1 {
			return nil, InvalidInputError{Field: "target", Reason: "duration habits need a target >= 1"}
		}
	default:
		if target < 1 {
			return nil, InvalidInputError{Field: "target", Reason: "quantity habits need a target >= 1"}
		}
	}

	xpValue := in.XPValue
	if xpValue <= 0 {
		xpValue = DefaultHabitXP
	}

	if _, err := s.users.GetOrCreate(ctx, in.UserKey); err != nil {
		return nil, err
	}

	var unitPtr *string
	if unit != "" {
		unitPtr = &unit
	}
	var days []int
	for d := time.Sunday; d <= time.Saturday; d++ {
		if in.CustomDays[d] {
			days = append(days, int(d))
		}
	}

	id, err := s.habits.Insert(ctx, storage.HabitInsert{
		UserKey:    in.UserKey,
		Name:       name,
		Kind:       string(in.Kind),
		Frequency:  string(in.Frequency),
		Target:     target,
		Unit:       unitPtr,
		CustomDays: days,
		XPValue:    xpValue,
	})
	if err != nil {
		return nil, err
	}
	return s.habits.Get(ctx, id)
}

// DefaultHabitXP is the XP a habit completion is worth unless the habit
// says otherwise.
const DefaultHabitXP = 10

func (s *Service) ArchiveHabit(ctx context.Context, userKey string, habitID int64) error {
	h, err := s.userHabit(ctx, s.habits, userKey, habitID)
	if err != nil {
		return err
	}
	return s.habits.SetArchived(ctx, h.ID, true)
}

func (s *Service) userHabit(ctx context.Context, repo *storage.HabitRepo, userKey string, habitID int64) (*storage.Habit, error) {
	h, err := repo.Get(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if h == nil || h.UserKey != userKey {
		return nil, fmt.Errorf("habit %d not found", habitID)
	}
	return h, nil
}

func (s *Service) streakPolicy(h *storage.Habit) StreakPolicy {
	policy := StreakPolicy{
		Frequency: Frequency(h.Frequency),
		Location:  s.calendar.location(),
		WeekStart: s.calendar.WeekStart,
	}
	if len(h.CustomDays) > 0 {
		policy.CustomDays = map[time.Weekday]bool{}
		for _, d := range h.CustomDays {
			policy.CustomDays[time.Weekday(d)] = true
		}
	}
	return policy
}

func logEntries(logs []storage.HabitLog, loc *time.Location) []LogEntry {
	out := make([]LogEntry, 0, len(logs))
	for _, l := range logs {
		at, err := time.ParseInLocation("2006-01-02", l.LogDate, loc)
		if err != nil {
			continue
		}
		out = append(out, LogEntry{At: at, Value: l.Value})
	}
	return out
}

// HabitStatus is one row of the list/board views.
type HabitStatus struct {
	Habit        storage.Habit
	Streak       StreakResult
	TodayValue   int
	TimerRunning bool
}

// HabitOverview derives streaks for every unarchived habit as of now.
// Read-only; the stored streak columns are not trusted here.
func (s *Service) HabitOverview(ctx context.Context, userKey string, now time.Time) ([]HabitStatus, error) {
	habits, err := s.habits.ListByUser(ctx, userKey, false)
	if err != nil {
		return nil, err
	}
	timer, err := s.timers.Get(ctx, userKey)
	if err != nil {
		return nil, err
	}

	loc := s.calendar.location()
	today := now.In(loc).Format("2006-01-02")

	out := make([]HabitStatus, 0, len(habits))
	for i := range habits {
		h := habits[i]
		logs, err := s.logs.ListByHabit(ctx, h.ID)
		if err != nil {
			return nil, err
		}
		st := HabitStatus{
			Habit:  h,
			Streak: ComputeStreaks(HabitKind(h.Kind), h.Target, s.streakPolicy(&h), logEntries(logs, loc), now),
		}
		for _, l := range logs {
			if l.LogDate == today {
				st.TodayValue = l.Value
			}
		}
		st.TimerRunning = timer != nil && timer.HabitID == h.ID
		out = append(out, st)
	}
	return out, nil
}

// AchievementStatus pairs a catalog entry with the user's unlock
// history for it.
type AchievementStatus struct {
	Achievement  Achievement
	Unlocked     bool
	TimesEarned  int
	LastUnlocked *time.Time
}

func (s *Service) AchievementOverview(ctx context.Context, userKey string) ([]AchievementStatus, error) {
	recs, err := s.unlocks.ListByUser(ctx, userKey)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	last := map[string]time.Time{}
	for _, rec := range recs {
		counts[rec.AchievementKey]++
		if t, ok := last[rec.AchievementKey]; !ok || rec.UnlockedAt.After(t) {
			last[rec.AchievementKey] = rec.UnlockedAt
		}
	}

	var out []AchievementStatus
	for _, a := range s.catalog.All() {
		st := AchievementStatus{Achievement: a, TimesEarned: counts[a.Key]}
		st.Unlocked = st.TimesEarned > 0
		if t, ok := last[a.Key]; ok {
			lt := t
			st.LastUnlocked = &lt
		}
		out = append(out, st)
	}
	return out, nil
}

// ActiveTimer returns the user's running timer, or nil.
func (s *Service) ActiveTimer(ctx context.Context, userKey string) (*storage.ActiveTimer, error) {
	return s.timers.Get(ctx, userKey)
}

// StartTimer begins timing a duration habit. The timer table's primary
// key arbitrates concurrent starts; the loser gets
// ActiveTimerConflictError and the running timer is untouched.
func (s *Service) StartTimer(ctx context.Context, userKey string, habitID int64, now time.Time) (*storage.ActiveTimer, error) {
	h, err := s.userHabit(ctx, s.habits, userKey, habitID)
	if err != nil {
		return nil, err
	}
	if HabitKind(h.Kind) != HabitKindDuration {
		return nil, InvalidInputError{Field: "habit", Reason: fmt.Sprintf("habit %d is not a duration habit", habitID)}
	}
	if h.Archived {
		return nil, fmt.Errorf("habit %d is archived", habitID)
	}
	if _, err := s.users.GetOrCreate(ctx, userKey); err != nil {
		return nil, err
	}

	inserted, err := s.timers.Insert(ctx, userKey, habitID, now)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := s.timers.Get(ctx, userKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ActiveTimerConflictError{HabitID: existing.HabitID, StartedAt: existing.StartedAt}
		}
		// Lost the row between insert and read; report a conflict anyway.
		return nil, ActiveTimerConflictError{HabitID: habitID}
	}
	s.log.Debug("timer started", "user", userKey, "habit", habitID)
	return s.timers.Get(ctx, userKey)
}
