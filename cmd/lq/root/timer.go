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

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start/stop a duration habit timer",
	}
	cmd.AddCommand(newTimerStartCmd(), newTimerStopCmd(), newTimerShowCmd())
	return cmd
}

func newTimerStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start timing a duration habit",
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
			t, err := svc.StartTimer(ctx, storage.MainUserKey, id, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTimer, "Timer started"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Habit", t.HabitID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Started", t.StartedAt.Local().Format("15:04:05")))
			return nil
		},
	}
	return cmd
}

func newTimerStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop [id]",
		Short: "Stop the running timer and log the elapsed time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var id int64
			if len(args) == 1 {
				id, err = strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return errors.New("id must be an integer")
				}
			} else {
				t, err := svc.ActiveTimer(ctx, storage.MainUserKey)
				if err != nil {
					return err
				}
				if t == nil {
					return engine.NoActiveTimerError{}
				}
				id = t.HabitID
			}

			res, err := svc.StopTimer(ctx, storage.MainUserKey, id, time.Now())
			if err != nil {
				return err
			}

			printProgression(cmd, res)
			return nil
		},
	}
	return cmd
}

func newTimerShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the running timer, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := svc.ActiveTimer(ctx, storage.MainUserKey)
			if err != nil {
				return err
			}
			if t == nil {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No timer running."))
				return nil
			}

			elapsed := engine.ElapsedSeconds(t.StartedAt, time.Now())
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconTimer, "Timer running"))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Habit", t.HabitID))
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Elapsed", fmt.Sprintf("%ds", elapsed)))
			return nil
		},
	}
	return cmd
}
