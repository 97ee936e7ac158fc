package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/tui"
)

func newEditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task_id>",
		Short: "Edit an existing task",
		Long: `Edit the title, tags or difficulty of a task.

With no flags the interactive form opens pre-populated with the current
task data. Changing the difficulty of a finished task rescores it.

Usage:
  tally edit 3f2a                      - Edit in the form
  tally edit 3f2a --title "New title"  - Rename
  tally edit 3f2a --tags docs,review   - Replace the tags
  tally edit 3f2a -d 4                 - Change the difficulty`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(runEdit),
	}
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().StringSliceP("tags", "t", nil, "Replace the tags (comma-separated)")
	cmd.Flags().Bool("clear-tags", false, "Remove all tags")
	cmd.Flags().StringP("difficulty", "d", "", "New difficulty 1-5")
	return cmd
}

func runEdit(cmd *cobra.Command, args []string, a *app) error {
	task, err := findTask(a, args[0])
	if err != nil {
		return err
	}

	update, err := editFlags(cmd)
	if err != nil {
		return err
	}
	if update.IsEmpty() {
		result, err := tui.RunEditForm(cmd.Context(), task)
		if err != nil {
			return err
		}
		if !result.Saved {
			fmt.Fprintln(cmd.OutOrStdout(), "❌ Edit cancelled.")
			return nil
		}
		update = models.TaskUpdate{
			Title:      &result.Title,
			Tags:       result.Tags,
			Difficulty: &result.Difficulty,
		}
		if update.Tags == nil {
			update.Tags = []string{}
		}
	}

	updated, err := a.store.Update(cmd.Context(), task.ID, update)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✏️  Updated task %s: %s\n", updated.ShortID(), updated.Title)
	if len(updated.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(updated.Tags, ", "))
	}
	fmt.Fprintf(out, "  Difficulty: %s\n", stars(updated.Difficulty))
	if updated.Status == models.StatusDone && updated.Points != task.Points {
		fmt.Fprintf(out, "  Points: %d → %d\n", task.Points, updated.Points)
	}
	return nil
}

// editFlags builds the update from the flags that were given.
func editFlags(cmd *cobra.Command) (models.TaskUpdate, error) {
	var u models.TaskUpdate
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		u.Title = &title
	}
	if tags, _ := cmd.Flags().GetStringSlice("tags"); len(tags) > 0 {
		u.Tags = parser.ParseTags(strings.Join(tags, ","))
	}
	if clearTags, _ := cmd.Flags().GetBool("clear-tags"); clearTags {
		u.Tags = []string{}
	}
	if cmd.Flags().Changed("difficulty") {
		raw, _ := cmd.Flags().GetString("difficulty")
		d, err := parser.ParseDifficulty(raw)
		if err != nil {
			return u, err
		}
		u.Difficulty = &d
	}
	return u, nil
}
