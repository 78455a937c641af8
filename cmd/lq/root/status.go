package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP and streak summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := svc.User(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			p := svc.Curve().ProgressFor(u.XP)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			if p.Required > 0 {
				fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d (%d/%d into level, %d to next)",
					u.XP, p.Current, p.Required, p.Required-p.Current)))
			} else {
				fmt.Fprintln(out, ui.LabelValue("XP", fmt.Sprintf("%d (level cap reached)", u.XP)))
			}
			fmt.Fprintf(out, "%s %s %d%%\n", ui.Key.Render("Progress:"), ui.ProgressBar(p.Percentage, 30), p.Percentage)
			fmt.Fprintln(out, "")

			habits, err := svc.HabitOverview(ctx, storage.MainUserKey, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconFlame+" Streaks"))
			if len(habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no habits yet)"))
			}
			for _, st := range habits {
				done := " "
				if st.Streak.TodayDone {
					done = ui.IconDone
				}
				fmt.Fprintf(out, "- %s %s %s  current %s, longest %d, total %d\n",
					done, ui.KindIcon(st.Habit.Kind), st.Habit.Name,
					ui.StreakText(st.Streak.Current), st.Streak.Longest, st.Streak.Total)
			}
			fmt.Fprintln(out, "")

			achievements, err := svc.AchievementOverview(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			earned := 0
			for _, a := range achievements {
				if a.Unlocked {
					earned++
				}
			}
			fmt.Fprintln(out, ui.H2.Render(ui.IconTrophy+" Achievements"))
			fmt.Fprintf(out, "- %s %d/%d %s\n", ui.Key.Render("Earned:"), earned, len(achievements),
				ui.Muted.Render("(see `lq achievements`)"))

			timer, err := svc.ActiveTimer(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			if timer != nil {
				fmt.Fprintln(out, "")
				fmt.Fprintf(out, "%s timer running on habit %d since %s\n",
					ui.IconTimer, timer.HabitID, timer.StartedAt.Local().Format("15:04:05"))
			}
			return nil
		},
	}

	return cmd
}
