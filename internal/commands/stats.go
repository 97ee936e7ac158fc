package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/balkashynov/tally/internal/analytics"
	"github.com/balkashynov/tally/internal/timecalc"
)

func newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show analytics for finished tasks",
		Long: `Show totals for the tasks finished within the last day, week or month:
tracked time, task count, points, average duration, focus and top tags.

Focus is tracked time as a share of the expected time, capped at 100%.`,
		Args: cobra.NoArgs,
		RunE: withApp(runStats),
	}
	cmd.Flags().StringP("period", "p", string(analytics.PeriodWeek), "Window: day, week or month")
	cmd.Flags().StringP("format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().IntP("top", "n", 5, "Number of tags to show (0 for all)")
	return cmd
}

func runStats(cmd *cobra.Command, args []string, a *app) error {
	periodFlag, _ := cmd.Flags().GetString("period")
	format, _ := cmd.Flags().GetString("format")
	top, _ := cmd.Flags().GetInt("top")

	period, err := analytics.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}

	report := analytics.Compute(a.store.Snapshot().Tasks, period, a.store.Now())
	if top > 0 {
		report.TopTags = report.Top(top)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		renderReport(out, report)
		return nil
	default:
		return fmt.Errorf("invalid format %q. Use: table, json or yaml", format)
	}
}

var periodTitles = map[analytics.Period]string{
	analytics.PeriodDay:   "last 24 hours",
	analytics.PeriodWeek:  "last 7 days",
	analytics.PeriodMonth: "last 30 days",
}

// renderReport prints the report with a bar per tag
func renderReport(w io.Writer, r analytics.Report) {
	heading := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
	fmt.Fprintln(w, heading.Render("📊 Stats for the "+periodTitles[r.Period]))
	fmt.Fprintln(w)

	if r.CompletedTasks == 0 {
		fmt.Fprintln(w, "No tasks finished in this period.")
		return
	}

	fmt.Fprintf(w, "  Tracked time:   %s\n", timecalc.FormatMinutes(r.TotalTime))
	fmt.Fprintf(w, "  Tasks finished: %d\n", r.CompletedTasks)
	fmt.Fprintf(w, "  Points:         %d\n", r.TotalPoints)
	fmt.Fprintf(w, "  Avg duration:   %d min\n", r.AvgDuration)
	fmt.Fprintf(w, "  Focus:          %d%%\n", r.FocusCoefficient)

	if len(r.TopTags) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading.Render("🏷️  Top tags"))

	const barWidth = 24
	longest := r.TopTags[0].Time
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	for _, tag := range r.TopTags {
		n := 0
		if longest > 0 {
			n = max(tag.Time*barWidth/longest, 1)
		}
		fmt.Fprintf(w, "  %s %s %d min · %d task(s)\n",
			cell("#"+tag.Tag, 16),
			bar.Render(cell(strings.Repeat("█", n), barWidth)),
			tag.Time, tag.Count)
	}
}

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export finished tasks as CSV",
		Long: `Export the tasks finished within a period as CSV.

The window is the last day, week or month, or an explicit date range with
--from and --to (YYYY-MM-DD, both days included). The file is named
tasks-<period>-<date>.csv unless -o is given; use -o - for stdout.`,
		Args: cobra.NoArgs,
		RunE: withApp(runExport),
	}
	cmd.Flags().StringP("period", "p", string(analytics.PeriodWeek), "Window: day, week or month")
	cmd.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "Last day to include (YYYY-MM-DD, default today)")
	cmd.Flags().StringP("output", "o", "", "Output file, - for stdout")
	return cmd
}

func runExport(cmd *cobra.Command, args []string, a *app) error {
	periodFlag, _ := cmd.Flags().GetString("period")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	output, _ := cmd.Flags().GetString("output")

	period, err := analytics.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}
	now := a.store.Now()
	start, end, err := exportRange(period, from, to, now)
	if err != nil {
		return err
	}

	csv := analytics.ExportCSV(a.store.Snapshot().Tasks, start, end)
	rows := strings.Count(csv, "\n") // header excluded

	if output == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), csv)
		return err
	}
	if output == "" {
		output = analytics.ExportFileName(period, now.Local())
	}
	if err := os.WriteFile(output, []byte(csv), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📄 Exported %d task(s) to %s\n", rows, output)
	return nil
}

// exportRange resolves the flags into an inclusive time range.
func exportRange(period analytics.Period, from, to string, now time.Time) (time.Time, time.Time, error) {
	if from == "" && to == "" {
		return now.Add(-period.Duration()), now, nil
	}
	if from == "" {
		return time.Time{}, time.Time{}, errors.New("--to needs --from")
	}

	start, err := time.ParseInLocation(time.DateOnly, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q. Use YYYY-MM-DD", from)
	}
	end := now
	if to != "" {
		day, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q. Use YYYY-MM-DD", to)
		}
		end = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("--to is before --from")
	}
	return start, end, nil
}
