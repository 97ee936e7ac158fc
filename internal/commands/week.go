package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
)

func newWeekCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show this week's finished work by day",
		Long: `Show a timesheet of the tasks finished during the current calendar week.

Minutes are booked on the day a task was finished. Weekend columns only
appear when something was finished on them.

Example output:
  Task                     Mon  Tue  Wed  Thu  Fri  Total  Pts
  3f2a1b0c Fix login bug    45    -    -    -    -     45   135
  9d8e7f6a Release notes     -   30   20    -    -     50    50
  Total                     45   30   20    0    0     95   185`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			now := a.store.Now().Local()
			weekStart := getWeekStart(now)
			weekEnd := weekStart.AddDate(0, 0, 7)

			tasks := a.store.Snapshot().Filter(func(t models.Task) bool {
				if t.Status != models.StatusDone || t.FinishedAt == nil {
					return false
				}
				finished := t.FinishedAt.Local()
				return !finished.Before(weekStart) && finished.Before(weekEnd)
			})
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing finished this week.")
				return nil
			}
			displayTimesheet(cmd.OutOrStdout(), tasks, weekStart)
			return nil
		}),
	}
}

// getWeekStart returns the start of the calendar week (Monday) for the given time
func getWeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6 // Sunday is 6 days from Monday
	}

	weekStart := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
}

// displayTimesheet outputs the formatted timesheet table
func displayTimesheet(w io.Writer, tasks []models.Task, weekStart time.Time) {
	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	dayIndex := func(t time.Time) int {
		return (int(t.Local().Weekday()) + 6) % 7 // Monday=0
	}

	// Weekdays always show; weekend days only with work on them.
	var days []int
	for i := range dayNames {
		if i < 5 {
			days = append(days, i)
			continue
		}
		for _, t := range tasks {
			if dayIndex(*t.FinishedAt) == i {
				days = append(days, i)
				break
			}
		}
	}

	nameWidth := 20
	for _, t := range tasks {
		nameWidth = max(nameWidth, runewidth.StringWidth(taskLabel(t)))
	}
	nameWidth = min(nameWidth, 40)

	const dayWidth = 5
	separator := func() {
		fmt.Fprint(w, strings.Repeat("-", nameWidth))
		for range days {
			fmt.Fprint(w, strings.Repeat("-", dayWidth))
		}
		fmt.Fprintln(w, strings.Repeat("-", 7+5))
	}

	fmt.Fprint(w, cell("Task", nameWidth))
	for _, d := range days {
		fmt.Fprintf(w, "%*s", dayWidth, dayNames[d])
	}
	fmt.Fprintf(w, "%7s%5s\n", "Total", "Pts")
	separator()

	dayTotals := make([]int, len(dayNames))
	grandMinutes, grandPoints := 0, 0
	for _, t := range tasks {
		finishedOn := dayIndex(*t.FinishedAt)
		fmt.Fprint(w, cell(taskLabel(t), nameWidth))
		for _, d := range days {
			if d == finishedOn {
				fmt.Fprintf(w, "%*d", dayWidth, t.Minutes())
			} else {
				fmt.Fprintf(w, "%*s", dayWidth, "-")
			}
		}
		fmt.Fprintf(w, "%7d%5d\n", t.Minutes(), t.Points)

		dayTotals[finishedOn] += t.Minutes()
		grandMinutes += t.Minutes()
		grandPoints += t.Points
	}

	separator()
	fmt.Fprint(w, cell("Total", nameWidth))
	for _, d := range days {
		fmt.Fprintf(w, "%*d", dayWidth, dayTotals[d])
	}
	fmt.Fprintf(w, "%7d%5d\n", grandMinutes, grandPoints)

	fmt.Fprintf(w, "\nWeek of %s to %s (minutes)\n",
		weekStart.Format("Jan 2"),
		weekStart.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}

// taskLabel is the row name of a task in reports.
func taskLabel(t models.Task) string {
	return t.ShortID() + " " + t.Title
}
