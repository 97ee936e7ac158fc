package models

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo   Status = "todo"   // Created, never started
	StatusActive Status = "active" // Timer running
	StatusPaused Status = "paused" // Timer stopped, can resume
	StatusDone   Status = "done"   // Finished, elapsed time frozen
)

// transitions defines the allowed status transitions.
// Flow: todo → active ⇄ paused → done
var transitions = map[Status][]Status{
	StatusTodo:   {StatusActive},
	StatusActive: {StatusPaused, StatusDone},
	StatusPaused: {StatusActive, StatusDone},
	StatusDone:   {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no transition leaves this status.
func (s Status) IsTerminal() bool {
	return s == StatusDone
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// Icon returns the glyph used for the status in listings.
func (s Status) Icon() string {
	switch s {
	case StatusActive:
		return "▶"
	case StatusPaused:
		return "⏸"
	case StatusDone:
		return "✅"
	default:
		return "○"
	}
}
