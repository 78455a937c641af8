package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lifequest/internal/engine"
	"lifequest/internal/storage"
	"lifequest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var kind string
	var freq string
	var target int
	var unit string
	var days string
	var xp int

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("name is required")
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

			k, err := engine.ParseHabitKind(kind)
			if err != nil {
				return err
			}
			f, err := engine.ParseFrequency(freq)
			if err != nil {
				return err
			}
			in := engine.CreateHabitInput{
				UserKey:   storage.MainUserKey,
				Name:      args[0],
				Kind:      k,
				Frequency: f,
				Target:    target,
				Unit:      unit,
				XPValue:   xp,
			}
			if f == engine.FrequencyCustom {
				in.CustomDays, err = engine.ParseWeekdays(days)
				if err != nil {
					return err
				}
			}

			h, err := svc.CreateHabit(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconSparkle, "Habit created"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("ID", h.ID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Name", h.Name))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Kind", fmt.Sprintf("%s %s", ui.KindIcon(h.Kind), h.Kind)))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Frequency", h.Frequency))
			if h.Kind != string(engine.HabitKindBoolean) {
				u := ""
				if h.Unit != nil {
					u = " " + *h.Unit
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Target", fmt.Sprintf("%d%s", h.Target, u)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "boolean", "Habit kind (boolean|quantity|duration)")
	cmd.Flags().StringVarP(&freq, "freq", "f", "daily", "Frequency (daily|weekly|custom)")
	cmd.Flags().IntVarP(&target, "target", "t", 1, "Target value per day (quantity/duration)")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "Unit (quantity: free text; duration: seconds|minutes|hours)")
	cmd.Flags().StringVar(&days, "days", "", "Custom weekdays, comma-separated (mon,wed,fri)")
	cmd.Flags().IntVar(&xp, "xp", engine.DefaultHabitXP, "XP per completion")

	return cmd
}
