package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List habits with streaks and today's state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.HabitOverview(ctx, storage.MainUserKey, time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconLoop, "Habits"))
			if len(habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none — `lq add` one)"))
				return nil
			}
			for _, st := range habits {
				h := st.Habit
				done := " "
				if st.Streak.TodayDone {
					done = ui.IconDone
				}
				detail := h.Frequency
				if h.Kind != string(engine.HabitKindBoolean) {
					u := ""
					if h.Unit != nil {
						u = " " + *h.Unit
					}
					detail += fmt.Sprintf(", target %d%s", h.Target, u)
				}
				timer := ""
				if st.TimerRunning {
					timer = "  " + ui.IconTimer + " running"
				}
				fmt.Fprintf(out, "- %d %s %s %s %s %s%s\n",
					h.ID, done, ui.KindIcon(h.Kind), ui.Key.Render(h.Name),
					ui.Muted.Render("("+detail+")"), ui.StreakText(st.Streak.Current), timer)
			}
			return nil
		},
	}

	return cmd
}
