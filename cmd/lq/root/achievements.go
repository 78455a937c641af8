package root

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

func newAchievementsCmd() *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and unlock progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := svc.AchievementOverview(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			sort.SliceStable(list, func(i, j int) bool {
				if list[i].Achievement.Tier != list[j].Achievement.Tier {
					return list[i].Achievement.Tier < list[j].Achievement.Tier
				}
				return list[i].Achievement.Key < list[j].Achievement.Key
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, st := range list {
				a := st.Achievement
				// Hidden entries stay masked until unlocked.
				if a.Hidden && !st.Unlocked && !showHidden {
					fmt.Fprintf(out, "- %s %s\n", ui.IconHidden, ui.Muted.Render("???"))
					continue
				}

				mark := ui.Muted.Render("locked")
				if st.Unlocked {
					mark = ui.Good.Render("unlocked")
					if a.Type == engine.AchievementRepeatable || a.Type.ResetPeriod() != engine.PeriodNone {
						mark = ui.Good.Render(fmt.Sprintf("earned ×%d", st.TimesEarned))
					}
				}
				fmt.Fprintf(out, "- %s %s — %s %s %s\n",
					a.Icon,
					ui.Key.Render(a.Name),
					a.Description,
					ui.Muted.Render(fmt.Sprintf("(+%d XP)", a.XPReward)),
					mark)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHidden, "all", false, "Include hidden achievements not yet unlocked")

	return cmd
}
