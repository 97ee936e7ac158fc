package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [task-id]",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Long:    "Delete a task in any status, including a running one. This cannot be undone.",
		Args:    cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			target, err := findTask(a, args[0])
			if err != nil {
				return err
			}
			task, err := a.store.Delete(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Deleted task %s: %s\n", task.ShortID(), task.Title)
			return nil
		}),
	}
}
