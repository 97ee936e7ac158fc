package models

import (
	"strings"
	"time"

	"github.com/balkashynov/tally/internal/timecalc"
)

// DefaultExpectedMinutes is used when a task is created without an estimate.
const DefaultExpectedMinutes = 30

// DefaultDifficulty is the difficulty quick-add assumes when none is given.
const DefaultDifficulty = 3

// Task represents one unit of trackable work
type Task struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Tags         []string      `json:"tags"`
	ExpectedTime int           `json:"expected_time"` // minutes
	Difficulty   int           `json:"difficulty"`    // 1-5
	Elapsed      time.Duration `json:"elapsed"`
	Points       int           `json:"points"`
	Status       Status        `json:"status"`
	StartedAt    *time.Time    `json:"started_at"`  // set only while active
	FinishedAt   *time.Time    `json:"finished_at"` // set once, on done
	CreatedAt    time.Time     `json:"created_at"`
}

// NewTask holds the user-supplied fields of a task being created
type NewTask struct {
	Title        string
	Tags         []string
	ExpectedTime int
	Difficulty   int
}

// TaskUpdate holds the editable fields; nil means "leave unchanged"
type TaskUpdate struct {
	Title      *string
	Tags       []string
	Difficulty *int
}

// IsEmpty reports whether the update carries no fields.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Tags == nil && u.Difficulty == nil
}

// HasTitle reports whether the title has any non-whitespace content.
func (t Task) HasTitle() bool {
	return strings.TrimSpace(t.Title) != ""
}

// CurrentElapsed returns the accumulated time plus the running interval, if any.
func (t Task) CurrentElapsed(now time.Time) time.Duration {
	if t.Status == StatusActive && t.StartedAt != nil {
		if running := now.Sub(*t.StartedAt); running > 0 {
			return t.Elapsed + running
		}
	}
	return t.Elapsed
}

// Minutes returns the elapsed time rounded up to whole minutes.
func (t Task) Minutes() int {
	return timecalc.MinutesElapsed(t.Elapsed)
}

// ShortID returns the id prefix shown in listings.
func (t Task) ShortID() string {
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}

// HasTag reports whether the task carries tag, case-insensitively.
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Matches reports whether query appears in the title or in any tag.
func (t Task) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// clone returns a copy that shares no mutable memory with t.
func (t Task) clone() Task {
	c := t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.StartedAt != nil {
		ts := *t.StartedAt
		c.StartedAt = &ts
	}
	if t.FinishedAt != nil {
		ts := *t.FinishedAt
		c.FinishedAt = &ts
	}
	return c
}
