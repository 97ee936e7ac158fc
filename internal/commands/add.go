package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/timecalc"
	"github.com/balkashynov/tally/internal/tui"
)

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [task description]",
		Short: "Add a new task",
		Long: `Add a new task with optional metadata.

Modes:
  Interactive: tally add -i (or just 'tally add' with no arguments)
  Quick: tally add "Task title" (with optional flags)
  Smart parsing: tally add "Fix login bug #backend,auth ~1h30m !4"

Smart parsing syntax:
  #tag1,tag2  - Tags (comma-separated or individual)
  ~45m        - Expected time (45, 45m, 1h30m, 2 hours; up to 24h)
  !3          - Difficulty from 1 (easy) to 5 (hard)`,
		Args: cobra.ArbitraryArgs,
		RunE: withApp(runAdd),
	}
	cmd.Flags().StringSliceP("tags", "t", nil, "Comma-separated tags")
	cmd.Flags().StringP("expected", "e", "", "Expected time, e.g. 45m or 1h30m")
	cmd.Flags().StringP("difficulty", "d", "", "Difficulty 1-5")
	cmd.Flags().BoolP("interactive", "i", false, "Open the interactive form")
	cmd.Flags().Bool("no-ui", false, "Never open the interactive form")
	return cmd
}

func runAdd(cmd *cobra.Command, args []string, a *app) error {
	interactive, _ := cmd.Flags().GetBool("interactive")
	noUI, _ := cmd.Flags().GetBool("no-ui")

	parsed := parser.ParseTitle(strings.Join(args, " "))
	applyAddFlags(cmd, &parsed)

	if len(parsed.Errors) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠️  Found issues with parsing: %s\n", strings.Join(parsed.Errors, ", "))
		if noUI {
			return fmt.Errorf("task not created: %d parsing issue(s)", len(parsed.Errors))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Opening interactive mode for confirmation...")
		interactive = true
	}
	if parsed.Title == "" && !interactive {
		if noUI {
			return models.ErrEmptyTitle
		}
		interactive = true
	}

	nt := models.NewTask{
		Title:        parsed.Title,
		Tags:         parsed.Tags,
		ExpectedTime: parsed.ExpectedTime,
		Difficulty:   parsed.Difficulty,
	}
	if interactive && !noUI {
		result, err := tui.RunAddForm(cmd.Context(), parsed, a.cfg.Defaults.ExpectedMinutes, a.cfg.Defaults.Difficulty)
		if err != nil {
			return err
		}
		if !result.Saved {
			fmt.Fprintln(cmd.OutOrStdout(), "❌ Task creation cancelled.")
			return nil
		}
		nt = result.NewTask()
	}
	if nt.ExpectedTime == 0 {
		nt.ExpectedTime = a.cfg.Defaults.ExpectedMinutes
	}
	if nt.Difficulty == 0 {
		nt.Difficulty = a.cfg.Defaults.Difficulty
	}

	task, err := a.store.Add(cmd.Context(), nt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ New task \"%s\" added - ID: %s\n", task.Title, task.ShortID())
	if len(task.Tags) > 0 {
		fmt.Fprintf(out, "  Tags: %s\n", strings.Join(task.Tags, ", "))
	}
	fmt.Fprintf(out, "  Expected: %s\n", timecalc.FormatMinutes(task.ExpectedTime))
	fmt.Fprintf(out, "  Difficulty: %s\n", stars(task.Difficulty))
	return nil
}

// applyAddFlags overlays explicit flags on the parsed title. Flags win.
func applyAddFlags(cmd *cobra.Command, parsed *parser.ParsedTask) {
	if tags, _ := cmd.Flags().GetStringSlice("tags"); len(tags) > 0 {
		parsed.Tags = parser.ParseTags(strings.Join(tags, ","))
	}
	if expected, _ := cmd.Flags().GetString("expected"); expected != "" {
		minutes, err := parser.ParseExpected(expected)
		if err != nil {
			parsed.Errors = append(parsed.Errors, "Invalid expected time '"+expected+"': "+err.Error())
		} else {
			parsed.ExpectedTime = minutes
		}
	}
	if difficulty, _ := cmd.Flags().GetString("difficulty"); difficulty != "" {
		d, err := parser.ParseDifficulty(difficulty)
		if err != nil {
			parsed.Errors = append(parsed.Errors, err.Error())
		} else {
			parsed.Difficulty = d
		}
	}
}

// stars renders a difficulty as filled and empty stars.
func stars(difficulty int) string {
	difficulty = timecalc.ClampDifficulty(difficulty)
	return strings.Repeat("★", difficulty) + strings.Repeat("☆", timecalc.MaxDifficulty-difficulty)
}
