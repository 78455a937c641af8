package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

// track maps friendly CLI nouns to activity categories.
var trackCategories = map[string]engine.Category{
	"expense":  engine.CategoryExpensesLogged,
	"deadline": engine.CategoryDeadlinesMet,
	"note":     engine.CategoryNotesCreated,
}

func newTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <expense|deadline|note>",
		Short: "Record a non-habit activity (expenses, deadlines met, notes)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("activity kind is required")
			}
			if _, ok := trackCategories[args[0]]; !ok {
				return fmt.Errorf("unknown activity %q (want expense, deadline or note)", args[0])
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

			res, err := svc.Track(ctx, storage.MainUserKey, trackCategories[args[0]], time.Now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconDone, "Tracked "+args[0]))
			if res.XPAwarded > 0 {
				fmt.Fprintln(out, ui.LabelValue("XP", ui.Good.Render(fmt.Sprintf("+%d", res.XPAwarded))))
			}
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
			return nil
		},
	}
	return cmd
}
