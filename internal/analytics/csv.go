package analytics

import (
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/models"
)

// csvHeader is the column row of the export. Existing spreadsheets expect
// these exact Russian column names.
var csvHeader = []string{"Название", "Теги", "Время (мин)", "Очки", "Дата завершения"}

// csvDateLayout matches the short ru-RU date (dd.mm.yyyy).
const csvDateLayout = "02.01.2006"

// ExportCSV renders the tasks finished within [start, end] as CSV text.
// Every field is wrapped in double quotes; embedded quotes are written as
// is, which keeps the output byte-compatible with earlier exports.
func ExportCSV(tasks []models.Task, start, end time.Time) string {
	rows := [][]string{csvHeader}
	for _, t := range tasks {
		if t.Status != models.StatusDone || t.FinishedAt == nil {
			continue
		}
		finished := *t.FinishedAt
		if finished.Before(start) || finished.After(end) {
			continue
		}
		rows = append(rows, []string{
			t.Title,
			strings.Join(t.Tags, ", "),
			strconv.Itoa(t.Minutes()),
			strconv.Itoa(t.Points),
			finished.Local().Format(csvDateLayout),
		})
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = `"` + cell + `"`
		}
		lines[i] = strings.Join(cells, ",")
	}
	return strings.Join(lines, "\n")
}

// ExportFileName is the default file name for an export of period taken on day.
func ExportFileName(period Period, day time.Time) string {
	return "tasks-" + string(period) + "-" + day.Format("2006-01-02") + ".csv"
}
