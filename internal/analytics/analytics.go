// Package analytics derives completion statistics and CSV exports from the
// task list.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/models"
)

// Period selects a rolling reporting window that ends now.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Duration returns the width of the window.
func (p Period) Duration() time.Duration {
	switch p {
	case PeriodWeek:
		return 7 * 24 * time.Hour
	case PeriodMonth:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ParsePeriod converts user input into a Period.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q. Use: day, week or month", s)
	}
}

// TagStat aggregates the finished tasks carrying one tag.
type TagStat struct {
	Tag   string `json:"tag" yaml:"tag"`
	Time  int    `json:"time" yaml:"time"`   // minutes
	Count int    `json:"count" yaml:"count"` // tasks
}

// Report is the aggregate view over one period.
type Report struct {
	Period           Period    `json:"period" yaml:"period"`
	TotalTime        int       `json:"total_time" yaml:"total_time"` // minutes
	CompletedTasks   int       `json:"completed_tasks" yaml:"completed_tasks"`
	TotalPoints      int       `json:"total_points" yaml:"total_points"`
	AvgDuration      int       `json:"avg_duration" yaml:"avg_duration"`           // minutes
	FocusCoefficient int       `json:"focus_coefficient" yaml:"focus_coefficient"` // percent, capped at 100
	TopTags          []TagStat `json:"top_tags" yaml:"top_tags"`
}

// Compute builds the report for the finished tasks of the period ending at now.
func Compute(tasks []models.Task, period Period, now time.Time) Report {
	window := period.Duration()
	report := Report{Period: period, TopTags: []TagStat{}}

	totalExpected := 0
	tagIndex := make(map[string]int)
	for _, t := range tasks {
		if t.Status != models.StatusDone || t.FinishedAt == nil {
			continue
		}
		if now.Sub(*t.FinishedAt) >= window {
			continue
		}

		minutes := t.Minutes()
		report.CompletedTasks++
		report.TotalTime += minutes
		report.TotalPoints += t.Points
		totalExpected += t.ExpectedTime

		for _, tag := range t.Tags {
			i, ok := tagIndex[tag]
			if !ok {
				i = len(report.TopTags)
				tagIndex[tag] = i
				report.TopTags = append(report.TopTags, TagStat{Tag: tag})
			}
			report.TopTags[i].Time += minutes
			report.TopTags[i].Count++
		}
	}

	if report.CompletedTasks > 0 {
		report.AvgDuration = roundHalfUp(float64(report.TotalTime) / float64(report.CompletedTasks))
	}
	if totalExpected > 0 {
		report.FocusCoefficient = min(100, roundHalfUp(float64(report.TotalTime)/float64(totalExpected)*100))
	}

	// Ties keep the order in which tags were first seen.
	sort.SliceStable(report.TopTags, func(i, j int) bool {
		return report.TopTags[i].Time > report.TopTags[j].Time
	})
	return report
}

// Top returns at most n tag stats.
func (r Report) Top(n int) []TagStat {
	if n < 0 || n >= len(r.TopTags) {
		return r.TopTags
	}
	return r.TopTags[:n]
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
