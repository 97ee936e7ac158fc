package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/tracker"
)

func newRemindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Inactivity reminder",
		Long: `The reminder is raised when no task has been running for the configured
number of minutes (10 by default). It is raised once per idle stretch and
stays up until it is dismissed or a task is started.`,
	}
	cmd.AddCommand(newRemindCheckCommand(), newRemindDismissCommand(), newRemindWatchCommand())
	return cmd
}

func newRemindCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check for inactivity once",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.cfg.Reminder.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Reminders are disabled in the config.")
				return nil
			}
			raised, err := a.store.CheckInactive(cmd.Context())
			if err != nil {
				return err
			}
			switch {
			case raised:
				fmt.Fprintln(cmd.OutOrStdout(), "🔔 Time to focus! Nothing has been running for a while.")
			case a.store.Snapshot().ShowInactiveReminder:
				fmt.Fprintln(cmd.OutOrStdout(), "🔔 Reminder is already up.")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "👍 No reminder due.")
			}
			return nil
		}),
	}
}

func newRemindDismissCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dismiss",
		Short: "Hide the reminder and restart the idle timer",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			startLast, _ := cmd.Flags().GetBool("start-last")
			if !startLast {
				if err := a.store.Dismiss(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "🔕 Reminder dismissed.")
				return nil
			}

			task, ok, err := a.store.DismissAndStartLast(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "🔕 Reminder dismissed. No paused or todo task to start.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "▶️  Reminder dismissed, tracking task %s: %s\n", task.ShortID(), task.Title)
			return nil
		}),
	}
	cmd.Flags().Bool("start-last", false, "Also start the most recent paused or todo task")
	return cmd
}

func newRemindWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep checking for inactivity until interrupted",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			if !a.cfg.Reminder.Enabled {
				return errors.New("reminders are disabled in the config")
			}
			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				interval = a.cfg.CheckInterval()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "👀 Watching for inactivity every %s (ctrl+c to stop)\n", interval)
			monitor := tracker.NewMonitor(a.store, interval, func() {
				fmt.Fprintf(out, "🔔 %s Time to focus! Nothing has been running for %d minutes.\n",
					a.store.Now().Local().Format("15:04"), a.cfg.Reminder.InactivityMinutes)
			})
			if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info("inactivity watch stopped")
			return nil
		}),
	}
	cmd.Flags().Duration("interval", 0, "Check interval (default from config)")
	return cmd
}
