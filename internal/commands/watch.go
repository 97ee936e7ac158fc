package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/tui"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [task-id]",
		Short: "Open the full-screen timer",
		Long: `Open the full-screen timer for a task, the running one by default.

Keys:
  space/p   Pause or resume
  f         Finish
  d         Dismiss the inactivity reminder
  r         Dismiss and resume the last task
  esc/q     Leave the timer running and exit`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			task, err := taskOrActive(a, args)
			if errors.Is(err, errNoActiveTask) {
				return errors.New("no task is running. Start one with: tally start <id>")
			}
			if err != nil {
				return err
			}
			return openWatch(cmd, a, task.ID)
		}),
	}
}

func newBoardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Browse and control tasks interactively",
		Long: `Open the interactive task board.

Keys:
  ↑/↓ or k/j   Navigate tasks
  ←/→          Previous/next page
  /            Search by title or tag
  a            Show or hide finished tasks
  s/space      Start or pause
  f            Finish
  enter/w      Open the timer for the task
  esc/q        Quit`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			a.store.SetNotifier(nil)
			id, open, err := tui.RunBoard(cmd.Context(), a.store)
			if err != nil {
				return err
			}
			if !open {
				if task, ok := a.store.Snapshot().Active(); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "⏱️  Still tracking task %s: %s\n", task.ShortID(), task.Title)
				}
				return nil
			}
			return openWatch(cmd, a, id)
		}),
	}
}
