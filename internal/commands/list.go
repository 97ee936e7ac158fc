package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/timecalc"
)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks",
		Long:    "List open tasks. Finished tasks are hidden unless --done or --all is given.",
		Args:    cobra.NoArgs,
		RunE:    withApp(runList),
	}
	cmd.Flags().Bool("done", false, "Show only finished tasks")
	cmd.Flags().BoolP("all", "a", false, "Show open and finished tasks")
	cmd.Flags().StringP("search", "s", "", "Filter by title or tag substring")
	cmd.Flags().String("tag", "", "Filter by exact tag")
	return cmd
}

func runList(cmd *cobra.Command, args []string, a *app) error {
	done, _ := cmd.Flags().GetBool("done")
	all, _ := cmd.Flags().GetBool("all")
	search, _ := cmd.Flags().GetString("search")
	tag, _ := cmd.Flags().GetString("tag")

	st := a.store.Snapshot()
	if len(st.Tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Use 'tally add \"task description\"' to create your first task.")
		return nil
	}

	tasks := st.Filter(func(t models.Task) bool {
		switch {
		case done && t.Status != models.StatusDone:
			return false
		case !done && !all && t.Status == models.StatusDone:
			return false
		case search != "" && !t.Matches(search):
			return false
		case tag != "" && !t.HasTag(tag):
			return false
		}
		return true
	})
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching tasks.")
		return nil
	}

	printTaskTable(cmd.OutOrStdout(), tasks, a.store.Now())
	return nil
}

// Column widths of the task table, in terminal cells.
const (
	colID      = 8
	colStatus  = 8
	colTitle   = 40
	colTags    = 18
	colElapsed = 9
)

// printTaskTable writes tasks as an aligned table. Widths are measured in
// cells so wide and Cyrillic titles line up.
func printTaskTable(w io.Writer, tasks []models.Task, now time.Time) {
	fmt.Fprintf(w, "%s %s %s %s %s %s\n",
		cell("ID", colID), cell("STATUS", colStatus), cell("TITLE", colTitle),
		cell("TAGS", colTags), cell("ELAPSED", colElapsed), "PTS")
	fmt.Fprintln(w, strings.Repeat("-", colID+colStatus+colTitle+colTags+colElapsed+9))

	for _, t := range tasks {
		status := lipgloss.NewStyle().Foreground(statusColor(t.Status)).Render(cell(string(t.Status), colStatus))
		points := "-"
		if t.Status == models.StatusDone {
			points = fmt.Sprint(t.Points)
		}
		fmt.Fprintf(w, "%s %s %s %s %s %s\n",
			cell(t.ShortID(), colID),
			status,
			cell(t.Title, colTitle),
			cell(strings.Join(t.Tags, ","), colTags),
			cell(timecalc.FormatClock(t.CurrentElapsed(now)), colElapsed),
			points)
	}
}

// cell truncates s to width cells and pads it to exactly width.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func statusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusActive:
		return lipgloss.Color("#10B981")
	case models.StatusPaused:
		return lipgloss.Color("#F59E0B")
	case models.StatusDone:
		return lipgloss.Color("#6B7280")
	default:
		return lipgloss.Color("#E5E7EB")
	}
}
