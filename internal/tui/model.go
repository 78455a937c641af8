package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	user     *storage.User
	habits   []engine.HabitStatus
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	user   *storage.User
	habits []engine.HabitStatus
	err    error
}

type loggedMsg struct {
	name string
	res  *engine.HabitLogResult
	err  error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		u, err := m.svc.User(m.ctx, storage.MainUserKey)
		if err != nil {
			return loadedMsg{err: err}
		}
		habits, err := m.svc.HabitOverview(m.ctx, storage.MainUserKey, time.Now())
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{user: u, habits: habits}
	}
}

func (m boardModel) logCmd(h storage.Habit) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.LogHabit(m.ctx, storage.MainUserKey, h.ID, 1, time.Now())
		return loggedMsg{name: h.Name, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.user = msg.user
		m.habits = msg.habits
		if m.selected >= len(m.habits) {
			m.selected = len(m.habits) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case loggedMsg:
		if msg.err != nil {
			m.lastLog = "Log failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = summarize(msg.name, msg.res)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.habits)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < 0 || m.selected >= len(m.habits) {
				return m, nil
			}
			st := m.habits[m.selected]
			if st.Habit.Kind == string(engine.HabitKindDuration) {
				m.lastLog = "Use `lq timer start/stop` for duration habits."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("Logging %s…", st.Habit.Name)
			return m, m.logCmd(st.Habit)
		}
	}
	return m, nil
}

func summarize(name string, res *engine.HabitLogResult) string {
	if !res.NewlyQualified {
		return fmt.Sprintf("%s: logged (day already counted)", name)
	}
	s := fmt.Sprintf("%s: +%d XP", name, res.XPAwarded)
	if res.LeveledUp {
		s += fmt.Sprintf(", level %d → %d", res.PreviousLevel, res.NewLevel)
	}
	if n := len(res.Unlocked); n > 0 {
		s += fmt.Sprintf(", %d achievement(s)", n)
	}
	return s
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderHabits())
	b.WriteString("\n")
	b.WriteString(m.renderKeys())
	b.WriteString("\n")
	b.WriteString(m.lastLog)
	b.WriteString("\n")
	return b.String()
}

func (m boardModel) renderHeader() string {
	if m.user == nil {
		return "LifeQuest — loading…"
	}
	p := m.svc.Curve().ProgressFor(m.user.XP)
	return fmt.Sprintf("LifeQuest | Level %d | XP %d %s %d%%",
		p.Level, m.user.XP, ui.ProgressBar(p.Percentage, 30), p.Percentage)
}

func (m boardModel) renderHabits() string {
	if m.loading {
		return "Loading…"
	}
	if len(m.habits) == 0 {
		return "(no habits yet — `lq add` one)"
	}

	var out []string
	out = append(out, "Habits")
	for i, st := range m.habits {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		done := "  "
		if st.Streak.TodayDone {
			done = ui.IconDone + " "
		}
		timer := ""
		if st.TimerRunning {
			timer = " " + ui.IconTimer + " running"
		}
		out = append(out, fmt.Sprintf("%s%s %s%s  %s%s",
			cursor, ui.KindIcon(st.Habit.Kind), done, st.Habit.Name,
			ui.StreakText(st.Streak.Current), timer))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderKeys() string {
	keys := []string{
		"- ↑/↓ or j/k: move",
		"- c/space/enter: log completion",
		"- r: refresh",
		"- q: quit",
	}
	return "Keys\n" + strings.Join(keys, "\n") + "\n"
}
