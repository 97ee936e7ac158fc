package tracker

import (
	"context"
	"time"
)

// DefaultCheckInterval is how often the monitor evaluates inactivity.
const DefaultCheckInterval = time.Minute

// Monitor periodically asks the store whether the inactivity reminder is due.
type Monitor struct {
	store    *Store
	interval time.Duration
	onRaise  func()
}

// NewMonitor creates a monitor that checks every interval. onRaise, when
// not nil, is called each time the reminder is raised.
func NewMonitor(store *Store, interval time.Duration, onRaise func()) *Monitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &Monitor{store: store, interval: interval, onRaise: onRaise}
}

// Run checks once immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.check(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	raised, err := m.store.CheckInactive(ctx)
	if err != nil {
		m.store.log.Warn("inactivity check", "error", err)
	}
	if raised && m.onRaise != nil {
		m.onRaise()
	}
}
