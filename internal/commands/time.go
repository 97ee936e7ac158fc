package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/timecalc"
	"github.com/balkashynov/tally/internal/tui"
)

var errNoActiveTask = errors.New("no task is running")

func newStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [task-id]",
		Short: "Start tracking time on a task",
		Long: `Start tracking time on a task. Any other running task is paused first.
Opens the interactive timer by default, use --no-ui for a simple start.

Examples:
  tally start 3f2a        # Start timer with interactive UI
  tally start 3f2a --no-ui # Start timer without UI
  tally start --last      # Start the most recent paused or new task`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(runStart),
	}
	cmd.Flags().Bool("no-ui", false, "Start timer without interactive UI")
	cmd.Flags().Bool("last", false, "Start the most recently added paused or todo task")
	return cmd
}

func runStart(cmd *cobra.Command, args []string, a *app) error {
	last, _ := cmd.Flags().GetBool("last")
	noUI, _ := cmd.Flags().GetBool("no-ui")

	var target models.Task
	switch {
	case len(args) == 1:
		t, err := findTask(a, args[0])
		if err != nil {
			return err
		}
		target = t
	case last:
		t, ok := a.store.Snapshot().LastResumable()
		if !ok {
			return errors.New("no paused or todo task to start")
		}
		target = t
	default:
		return errors.New("specify a task id or use --last")
	}

	if target.Status == models.StatusDone {
		return fmt.Errorf("task %s is already finished", target.ShortID())
	}

	previous, hadActive := a.store.Snapshot().Active()
	task, changed, err := a.store.Start(cmd.Context(), target.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !changed {
		fmt.Fprintf(out, "⏱️  Task %s is already running: %s\n", task.ShortID(), task.Title)
	} else {
		if hadActive && previous.ID != task.ID {
			fmt.Fprintf(out, "⏸️  Paused task %s: %s\n", previous.ShortID(), previous.Title)
		}
		fmt.Fprintf(out, "⏱️  Started tracking time for task %s: %s\n", task.ShortID(), task.Title)
		fmt.Fprintf(out, "Started at: %s\n", task.StartedAt.Local().Format("15:04:05"))
	}

	if noUI {
		return nil
	}
	return openWatch(cmd, a, task.ID)
}

func newPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause [task-id]",
		Short: "Pause the running task",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			target, err := taskOrActive(a, args)
			if err != nil {
				return err
			}
			task, changed, err := a.store.Pause(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is not running (%s)\n", task.ShortID(), task.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "⏸️  Paused task %s: %s\n", task.ShortID(), task.Title)
			fmt.Fprintf(cmd.OutOrStdout(), "Elapsed time: %s\n", timecalc.FormatClock(task.Elapsed))
			return nil
		}),
	}
}

func newResumeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume [task-id]",
		Short: "Resume a paused task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			target, err := findTask(a, args[0])
			if err != nil {
				return err
			}
			task, changed, err := a.store.Resume(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			if !changed {
				return fmt.Errorf("task %s is %s, only paused tasks can be resumed", task.ShortID(), task.Status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "▶️  Resumed task %s: %s\n", task.ShortID(), task.Title)

			if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
				return nil
			}
			return openWatch(cmd, a, task.ID)
		}),
	}
	cmd.Flags().Bool("no-ui", false, "Resume without interactive UI")
	return cmd
}

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [task-id]",
		Short: "Pause the running task or start the last one",
		Long: `Toggle a task between running and paused. Without an id it pauses the
running task, or starts the most recently added paused or todo task when
nothing is running.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			var target models.Task
			if len(args) == 1 {
				t, err := findTask(a, args[0])
				if err != nil {
					return err
				}
				target = t
			} else {
				st := a.store.Snapshot()
				t, ok := st.Active()
				if !ok {
					t, ok = st.LastResumable()
				}
				if !ok {
					return errors.New("nothing to toggle")
				}
				target = t
			}

			task, changed, err := a.store.Toggle(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s is %s and cannot be toggled\n", task.ShortID(), task.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (%s)\n", task.Status.Icon(), task.ShortID(), task.Title, task.Status)
			return nil
		}),
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current time tracking status",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			out := cmd.OutOrStdout()
			st := a.store.Snapshot()

			if task, ok := st.Active(); ok {
				elapsed := task.CurrentElapsed(a.store.Now())
				fmt.Fprintf(out, "⏱️  Currently tracking: task %s: %s\n", task.ShortID(), task.Title)
				fmt.Fprintf(out, "Started at: %s\n", task.StartedAt.Local().Format("15:04:05"))
				fmt.Fprintf(out, "Elapsed time: %s of %s expected\n", timecalc.FormatClock(elapsed), timecalc.FormatMinutes(task.ExpectedTime))
				fmt.Fprintf(out, "Points if finished now: %d\n", timecalc.Points(elapsed, task.Difficulty))
			} else {
				fmt.Fprintln(out, "No active time tracking session")
			}

			if st.ShowInactiveReminder {
				fmt.Fprintln(out, "🔔 Inactivity reminder is up. Dismiss it with 'tally remind dismiss'.")
			}
			if st.Settings.AudioMuted {
				fmt.Fprintln(out, "🔇 Finish sound is muted")
			}
			backups, err := a.repo.Backups(cmd.Context())
			if err != nil {
				return err
			}
			if len(backups) > 0 {
				fmt.Fprintf(out, "⚠️  %d unreadable state backup(s) kept, latest: %s\n", len(backups), backups[len(backups)-1])
			}
			return nil
		}),
	}
}

// findTask resolves a full id or unique prefix to the stored task.
func findTask(a *app, ref string) (models.Task, error) {
	id, err := a.store.Resolve(ref)
	if err != nil {
		return models.Task{}, err
	}
	task, _ := a.store.Snapshot().Find(id)
	return task, nil
}

// taskOrActive resolves args[0], or the running task when no id is given.
func taskOrActive(a *app, args []string) (models.Task, error) {
	if len(args) > 0 {
		return findTask(a, args[0])
	}
	task, ok := a.store.Snapshot().Active()
	if !ok {
		return models.Task{}, errNoActiveTask
	}
	return task, nil
}

// openWatch runs the full-screen timer and reports how it was left.
func openWatch(cmd *cobra.Command, a *app, id string) error {
	// The screen draws the reminder itself; a bell on stderr would corrupt it.
	a.store.SetNotifier(nil)

	interval := a.cfg.CheckInterval()
	if !a.cfg.Reminder.Enabled {
		interval = 0
	}
	m, err := tui.RunWatch(cmd.Context(), a.store, id, interval)
	if err != nil {
		return err
	}

	task := m.Task()
	out := cmd.OutOrStdout()
	switch m.Outcome() {
	case tui.WatchFinished:
		printFinished(out, task)
	case tui.WatchDetached:
		if task.Status == models.StatusActive {
			fmt.Fprintln(out, "⏱️  Timer keeps running. Check it with 'tally status'.")
		}
	}
	return nil
}
