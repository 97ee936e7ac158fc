package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/tally/internal/models"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search all tasks by title or tag",
		Long: `Search open and finished tasks with ranked matching:
- Exact match (highest priority)
- Prefix match
- Contains match (lowest priority)

Search is case insensitive and looks at the title and the tags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: withApp(runSearch),
	}
	cmd.Flags().Bool("json", false, "Output results as JSON")
	cmd.Flags().IntP("limit", "n", 0, "Show at most n results")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string, a *app) error {
	query := strings.Join(args, " ")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	limit, _ := cmd.Flags().GetInt("limit")

	tasks := rankTasks(a.store.Snapshot().Tasks, query)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}

	if jsonOutput {
		return renderSearchJSON(cmd.OutOrStdout(), tasks, query)
	}
	if len(tasks) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No tasks match \"%s\".\n", query)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🔍 %d result(s) for \"%s\"\n\n", len(tasks), query)
	printTaskTable(cmd.OutOrStdout(), tasks, a.store.Now())
	return nil
}

// matchRank scores how well t matches query; 0 means no match.
func matchRank(t models.Task, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	best := 0
	for _, field := range append([]string{t.Title}, t.Tags...) {
		f := strings.ToLower(field)
		switch {
		case f == q:
			return 3
		case strings.HasPrefix(f, q):
			best = max(best, 2)
		case strings.Contains(f, q):
			best = max(best, 1)
		}
	}
	return best
}

// rankTasks returns the matching tasks, best match first. Equal ranks keep
// their stored order.
func rankTasks(tasks []models.Task, query string) []models.Task {
	type ranked struct {
		task models.Task
		rank int
	}
	var hits []ranked
	for _, t := range tasks {
		if r := matchRank(t, query); r > 0 {
			hits = append(hits, ranked{t, r})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].rank > hits[j].rank
	})

	out := make([]models.Task, len(hits))
	for i, h := range hits {
		out[i] = h.task
	}
	return out
}

// renderSearchJSON outputs search results as JSON
func renderSearchJSON(w io.Writer, tasks []models.Task, query string) error {
	type jsonTask struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		Status     string   `json:"status"`
		Tags       []string `json:"tags"`
		Minutes    int      `json:"minutes"`
		Points     int      `json:"points"`
		FinishedAt string   `json:"finished_at,omitempty"`
	}

	results := make([]jsonTask, 0, len(tasks))
	for _, t := range tasks {
		jt := jsonTask{
			ID:      t.ID,
			Title:   t.Title,
			Status:  string(t.Status),
			Tags:    t.Tags,
			Minutes: t.Minutes(),
			Points:  t.Points,
		}
		if jt.Tags == nil {
			jt.Tags = []string{}
		}
		if t.FinishedAt != nil {
			jt.FinishedAt = t.FinishedAt.Format(time.RFC3339)
		}
		results = append(results, jt)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
