package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

func newLogCmd() *cobra.Command {
	var value int

	cmd := &cobra.Command{
		Use:   "log <id>",
		Short: "Log a habit completion for today",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("id must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, _ := strconv.ParseInt(args[0], 10, 64)
			res, err := svc.LogHabit(ctx, storage.MainUserKey, id, value, time.Now())
			if err != nil {
				return err
			}

			printProgression(cmd, res)
			return nil
		},
	}

	cmd.Flags().IntVar(&value, "value", 1, "Logged value (count for quantity, duration in the habit's unit)")

	return cmd
}

// printProgression renders one combined summary for a habit log: XP,
// streak, level-up and unlocks all in one block.
func printProgression(cmd *cobra.Command, res *engine.HabitLogResult) {
	out := cmd.OutOrStdout()

	if !res.NewlyQualified {
		fmt.Fprintln(out, ui.Heading(ui.IconInfo, res.Habit.Name))
		fmt.Fprintln(out, ui.Muted.Render("Logged, but today already counted — no new XP."))
		fmt.Fprintln(out, ui.LabelValue("Today", res.TodayValue))
		fmt.Fprintln(out, ui.LabelValue("Streak", ui.StreakText(res.Streak.Current)))
		return
	}

	fmt.Fprintln(out, ui.Heading(ui.IconDone, res.Habit.Name))
	fmt.Fprintln(out, ui.LabelValue("XP", ui.Good.Render(fmt.Sprintf("+%d", res.XPAwarded))))
	fmt.Fprintln(out, ui.LabelValue("Streak", ui.StreakText(res.Streak.Current)))
	if res.LeveledUp {
		fmt.Fprintf(out, "%s  level %d → %d\n", ui.BadgeLevelUp, res.PreviousLevel, res.NewLevel)
	}
	for _, u := range res.Unlocked {
		fmt.Fprintf(out, "%s %s %s %s\n",
			ui.IconTrophy,
			ui.Gold.Render(u.Achievement.Name),
			u.Achievement.Icon,
			ui.Muted.Render(fmt.Sprintf("(+%d XP)", u.Achievement.XPReward)))
	}
}
