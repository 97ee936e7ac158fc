package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/timecalc"
)

func newFinishCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "finish [task-id]",
		Aliases: []string{"done"},
		Short:   "Finish a task and score it",
		Long: `Finish a running or paused task. The tracked time is frozen and the task
earns one point per started minute multiplied by its difficulty.
Without an id the running task is finished.`,
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			target, err := taskOrActive(a, args)
			if err != nil {
				return err
			}
			task, changed, err := a.store.Finish(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			if !changed {
				switch task.Status {
				case models.StatusDone:
					fmt.Fprintf(cmd.OutOrStdout(), "Task %s is already finished\n", task.ShortID())
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "Task %s has no tracked time yet. Start it first: tally start %s\n", task.ShortID(), task.ShortID())
				}
				return nil
			}
			printFinished(cmd.OutOrStdout(), task)
			return nil
		}),
	}
}

func printFinished(w io.Writer, task models.Task) {
	fmt.Fprintf(w, "✅ Finished task %s: %s\n", task.ShortID(), task.Title)
	fmt.Fprintf(w, "Time: %s (%d min)\n", timecalc.FormatClock(task.Elapsed), task.Minutes())
	fmt.Fprintf(w, "Points: %d (%d min × difficulty %d)\n", task.Points, task.Minutes(), task.Difficulty)
	if task.FinishedAt != nil {
		fmt.Fprintf(w, "Completed at: %s\n", task.FinishedAt.Local().Format("15:04:05"))
	}
}
