package models

import (
	"fmt"
	"strings"
	"time"
)

// CurrentSchemaVersion is the version stamped on freshly written state.
const CurrentSchemaVersion = 1

// Settings holds process-wide preferences that persist with the tasks
type Settings struct {
	AudioMuted    bool `json:"audio_muted"`
	SchemaVersion int  `json:"schema_version"`
}

// State is the whole persisted tracker state.
// Tasks keep insertion order and ids are unique.
type State struct {
	Tasks                []Task     `json:"tasks"`
	Settings             Settings   `json:"settings"`
	LastActivityAt       *time.Time `json:"last_activity_at"`
	ShowInactiveReminder bool       `json:"show_inactive_reminder"`
}

// NewState returns an empty state at the current schema version.
func NewState() State {
	return State{
		Tasks:    []Task{},
		Settings: Settings{SchemaVersion: CurrentSchemaVersion},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.Tasks = make([]Task, len(s.Tasks))
	for i, t := range s.Tasks {
		c.Tasks[i] = t.clone()
	}
	if s.LastActivityAt != nil {
		ts := *s.LastActivityAt
		c.LastActivityAt = &ts
	}
	return c
}

// Find returns the task with the given id.
func (s State) Find(id string) (Task, bool) {
	if i := s.index(id); i >= 0 {
		return s.Tasks[i], true
	}
	return Task{}, false
}

// Active returns the task whose timer is running, if any.
func (s State) Active() (Task, bool) {
	for _, t := range s.Tasks {
		if t.Status == StatusActive {
			return t, true
		}
	}
	return Task{}, false
}

// Resolve maps a user-typed reference to a task id. The reference may be
// the full id or any unique prefix of it.
func (s State) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrTaskNotFound
	}
	if _, ok := s.Find(ref); ok {
		return ref, nil
	}

	var matches []string
	for _, t := range s.Tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
	}
}

// LastResumable returns the most recently added task that is paused or todo.
func (s State) LastResumable() (Task, bool) {
	for i := len(s.Tasks) - 1; i >= 0; i-- {
		t := s.Tasks[i]
		if t.Status == StatusPaused || t.Status == StatusTodo {
			return t, true
		}
	}
	return Task{}, false
}

// Filter returns the tasks for which keep returns true, in order.
func (s State) Filter(keep func(Task) bool) []Task {
	var out []Task
	for _, t := range s.Tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s State) index(id string) int {
	for i, t := range s.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// touch records a user action at now and hides the reminder.
func (s *State) touch(now time.Time) {
	ts := now
	s.LastActivityAt = &ts
	s.ShowInactiveReminder = false
}

// Normalize repairs loaded state so the task invariants hold: difficulty in
// range, known statuses, timestamps consistent with status, unique ids and
// at most one running timer. Extra running timers are paused at now.
func (s State) Normalize(now time.Time) State {
	next := s.Clone()
	if next.Settings.SchemaVersion == 0 {
		next.Settings.SchemaVersion = CurrentSchemaVersion
	}

	seen := make(map[string]bool, len(next.Tasks))
	tasks := make([]Task, 0, len(next.Tasks))
	activeSeen := false
	for _, t := range next.Tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		t.Difficulty = clampDifficulty(t.Difficulty)
		if t.ExpectedTime <= 0 {
			t.ExpectedTime = DefaultExpectedMinutes
		}
		if t.Elapsed < 0 {
			t.Elapsed = 0
		}
		if !t.Status.IsValid() {
			t.Status = StatusTodo
		}

		switch t.Status {
		case StatusActive:
			if t.StartedAt == nil {
				t.Status = StatusPaused
			} else if activeSeen {
				pauseAt(&t, now)
			}
			activeSeen = activeSeen || t.Status == StatusActive
		default:
			t.StartedAt = nil
		}
		if t.Status != StatusDone {
			t.FinishedAt = nil
		}
		tasks = append(tasks, t)
	}
	next.Tasks = tasks
	return next
}
