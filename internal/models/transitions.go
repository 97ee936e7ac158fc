package models

import (
	"time"

	"github.com/balkashynov/tally/internal/timecalc"
)

// The functions below are the only way task state changes. Each takes the
// current state by value and returns the next state plus whether anything
// changed; the input is never modified. A failed precondition is a silent
// no-op that returns the input unchanged.

// AddTask appends a new todo task with the given id.
func AddTask(s State, nt NewTask, id string, now time.Time) (State, Task) {
	expected := nt.ExpectedTime
	if expected <= 0 {
		expected = DefaultExpectedMinutes
	}
	task := Task{
		ID:           id,
		Title:        nt.Title,
		Tags:         append([]string{}, nt.Tags...),
		ExpectedTime: expected,
		Difficulty:   clampDifficulty(nt.Difficulty),
		Status:       StatusTodo,
		CreatedAt:    now,
	}

	next := s.Clone()
	next.Tasks = append(next.Tasks, task)
	return next, task.clone()
}

// StartTask makes id the running task. A task that is already running is
// left alone; any other running task is paused first.
func StartTask(s State, id string, now time.Time) (State, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	target := s.Tasks[i]
	if target.Status == StatusDone || target.Status == StatusActive || !target.HasTitle() {
		return s, false
	}
	return activate(s, i, now), true
}

// ResumeTask restarts a paused task. Other running tasks are paused first.
func ResumeTask(s State, id string, now time.Time) (State, bool) {
	i := s.index(id)
	if i < 0 || s.Tasks[i].Status != StatusPaused || !s.Tasks[i].HasTitle() {
		return s, false
	}
	return activate(s, i, now), true
}

// PauseTask stops the timer of a running task and banks the interval.
func PauseTask(s State, id string, now time.Time) (State, bool) {
	i := s.index(id)
	if i < 0 || s.Tasks[i].Status != StatusActive {
		return s, false
	}
	next := s.Clone()
	pauseAt(&next.Tasks[i], now)
	next.touch(now)
	return next, true
}

// FinishTask completes a running or paused task and scores it. Finishing a
// task with no tracked time does nothing.
func FinishTask(s State, id string, now time.Time) (State, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	t := s.Tasks[i]
	if !t.Status.CanTransitionTo(StatusDone) {
		return s, false
	}
	final := t.CurrentElapsed(now)
	if final <= 0 {
		return s, false
	}

	next := s.Clone()
	done := &next.Tasks[i]
	done.Elapsed = final
	done.Points = timecalc.Points(final, done.Difficulty)
	done.Status = StatusDone
	done.StartedAt = nil
	finishedAt := now
	done.FinishedAt = &finishedAt
	next.touch(now)
	return next, true
}

// ToggleTask pauses a running task, resumes a paused one and starts a todo one.
func ToggleTask(s State, id string, now time.Time) (State, bool) {
	t, ok := s.Find(id)
	if !ok {
		return s, false
	}
	switch t.Status {
	case StatusActive:
		return PauseTask(s, id, now)
	case StatusPaused:
		return ResumeTask(s, id, now)
	default:
		return StartTask(s, id, now)
	}
}

// UpdateTask overwrites the given fields in any status. Editing the
// difficulty of a finished task rescores it from its frozen elapsed time.
func UpdateTask(s State, id string, u TaskUpdate) (State, bool) {
	i := s.index(id)
	if i < 0 || u.IsEmpty() {
		return s, false
	}

	next := s.Clone()
	t := &next.Tasks[i]
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Tags != nil {
		t.Tags = append([]string{}, u.Tags...)
	}
	if u.Difficulty != nil {
		t.Difficulty = clampDifficulty(*u.Difficulty)
		if t.Status == StatusDone {
			t.Points = timecalc.Points(t.Elapsed, t.Difficulty)
		}
	}
	return next, true
}

// DeleteTask removes the task unconditionally.
func DeleteTask(s State, id string) (State, bool) {
	i := s.index(id)
	if i < 0 {
		return s, false
	}
	next := s.Clone()
	next.Tasks = append(next.Tasks[:i], next.Tasks[i+1:]...)
	return next, true
}

// RecoverTimers folds the time a task spent running while the process was
// not around into its elapsed time and restarts its interval at now.
func RecoverTimers(s State, now time.Time) (State, bool) {
	changed := false
	next := s.Clone()
	for i := range next.Tasks {
		t := &next.Tasks[i]
		if t.Status != StatusActive || t.StartedAt == nil {
			continue
		}
		if gap := now.Sub(*t.StartedAt); gap > 0 {
			t.Elapsed += gap
		}
		ts := now
		t.StartedAt = &ts
		changed = true
	}
	if !changed {
		return s, false
	}
	return next, true
}

// CheckInactive raises the reminder once per inactivity episode: nothing is
// running, the last action is at least threshold old and the reminder is
// not already up. It reports whether the reminder was raised by this call.
func CheckInactive(s State, now time.Time, threshold time.Duration) (State, bool) {
	if s.ShowInactiveReminder || s.LastActivityAt == nil {
		return s, false
	}
	if _, running := s.Active(); running {
		return s, false
	}
	if now.Sub(*s.LastActivityAt) < threshold {
		return s, false
	}
	next := s.Clone()
	next.ShowInactiveReminder = true
	return next, true
}

// DismissReminder hides the reminder and starts a new inactivity episode.
func DismissReminder(s State, now time.Time) State {
	next := s.Clone()
	next.touch(now)
	return next
}

// ToggleAudioMute flips the finish sound setting.
func ToggleAudioMute(s State) State {
	next := s.Clone()
	next.Settings.AudioMuted = !next.Settings.AudioMuted
	return next
}

// activate pauses whatever is running and starts the task at index i.
func activate(s State, i int, now time.Time) State {
	next := s.Clone()
	for j := range next.Tasks {
		if j != i && next.Tasks[j].Status == StatusActive {
			pauseAt(&next.Tasks[j], now)
		}
	}
	t := &next.Tasks[i]
	t.Status = StatusActive
	ts := now
	t.StartedAt = &ts
	next.touch(now)
	return next
}

// pauseAt banks the running interval of t. Clock skew never shrinks elapsed.
func pauseAt(t *Task, now time.Time) {
	if t.StartedAt != nil {
		if running := now.Sub(*t.StartedAt); running > 0 {
			t.Elapsed += running
		}
	}
	t.Status = StatusPaused
	t.StartedAt = nil
}

func clampDifficulty(d int) int {
	return timecalc.ClampDifficulty(d)
}
