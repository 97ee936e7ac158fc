// Package tracker owns the live task state. It applies the transitions from
// the models package under a lock, saves after every change and drives the
// side effects (finish chime, inactivity notification) those changes imply.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/logging"
	"github.com/balkashynov/tally/internal/models"
)

// DefaultInactivityThreshold is how long the tracker may sit idle before
// the reminder is raised.
const DefaultInactivityThreshold = 10 * time.Minute

// Persister loads and saves the whole state.
type Persister interface {
	LoadState(ctx context.Context, now time.Time) (models.State, error)
	SaveState(ctx context.Context, st models.State) error
	BackupState(ctx context.Context, now time.Time) (string, error)
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Clock               Clock
	Logger              *slog.Logger
	Notifier            Notifier
	Chime               Chime
	InactivityThreshold time.Duration
	NewID               func() string
}

// Store serialises every state change and persists the result.
type Store struct {
	persist   Persister
	clock     Clock
	log       *slog.Logger
	notifier  Notifier
	chime     Chime
	newID     func() string
	state     models.State
	threshold time.Duration
	mu        sync.Mutex
}

// Open loads the saved state and recovers timers that were running when the
// previous process exited. An unreadable blob is backed up and replaced by
// an empty state rather than failing.
func Open(ctx context.Context, p Persister, opts Options) (*Store, error) {
	s := &Store{
		persist:   p,
		clock:     opts.Clock,
		log:       opts.Logger,
		notifier:  opts.Notifier,
		chime:     opts.Chime,
		newID:     opts.NewID,
		threshold: opts.InactivityThreshold,
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.chime == nil {
		s.chime = nopChime{}
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.threshold <= 0 {
		s.threshold = DefaultInactivityThreshold
	}

	now := s.clock.Now()
	st, err := p.LoadState(ctx, now)
	switch {
	case errors.Is(err, db.ErrCorruptState):
		backup, berr := p.BackupState(ctx, now)
		s.log.Warn("stored state unreadable, starting empty", "error", err, "backup", backup, "backup_error", berr)
		st = models.NewState()
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}
	s.state = st

	if next, changed := models.RecoverTimers(st, now); changed {
		s.log.Info("recovered running timer", "at", now)
		if err := s.commit(ctx, next); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// reload replaces the in-memory state with the stored one so that changes
// saved by other processes are not overwritten. A corrupt blob keeps the
// in-memory state, which the next commit writes over it.
func (s *Store) reload(ctx context.Context) error {
	st, err := s.persist.LoadState(ctx, s.clock.Now())
	switch {
	case errors.Is(err, db.ErrCorruptState):
		s.log.Warn("stored state unreadable, keeping memory state", "error", err)
		return nil
	case err != nil:
		return fmt.Errorf("load state: %w", err)
	}
	s.state = st
	return nil
}

// Reload picks up changes saved since the last operation.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// commit installs next as the current state and saves it. The in-memory
// state advances even if the save fails.
func (s *Store) commit(ctx context.Context, next models.State) error {
	s.state = next
	if err := s.persist.SaveState(ctx, next); err != nil {
		s.log.Error("save state", "error", err)
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// SetNotifier replaces the notifier. A nil n silences notifications, which
// full-screen views use while they draw the reminder themselves.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Resolve maps a full id or unique id prefix to a task id.
func (s *Store) Resolve(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Resolve(ref)
}

// Add creates a todo task.
func (s *Store) Add(ctx context.Context, nt models.NewTask) (models.Task, error) {
	nt.Title = strings.TrimSpace(nt.Title)
	if nt.Title == "" {
		return models.Task{}, models.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return models.Task{}, err
	}
	next, task := models.AddTask(s.state, nt, s.newID(), s.clock.Now())
	s.log.Info("task added", "id", task.ID, "title", task.Title)
	return task, s.commit(ctx, next)
}

// Start runs the task's timer, pausing any other running task.
func (s *Store) Start(ctx context.Context, id string) (models.Task, bool, error) {
	return s.apply(ctx, "start", id, models.StartTask)
}

// Resume restarts a paused task.
func (s *Store) Resume(ctx context.Context, id string) (models.Task, bool, error) {
	return s.apply(ctx, "resume", id, models.ResumeTask)
}

// Pause stops a running task.
func (s *Store) Pause(ctx context.Context, id string) (models.Task, bool, error) {
	return s.apply(ctx, "pause", id, models.PauseTask)
}

// Toggle pauses, resumes or starts the task depending on its status.
func (s *Store) Toggle(ctx context.Context, id string) (models.Task, bool, error) {
	return s.apply(ctx, "toggle", id, models.ToggleTask)
}

// Finish completes the task and plays the chime unless audio is muted.
func (s *Store) Finish(ctx context.Context, id string) (models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, changed, err := s.applyLocked(ctx, "finish", id, models.FinishTask)
	if changed && !s.state.Settings.AudioMuted {
		if cerr := s.chime.Play(); cerr != nil {
			s.log.Warn("finish chime", "error", cerr)
		}
	}
	return task, changed, err
}

// Update edits title, tags or difficulty.
func (s *Store) Update(ctx context.Context, id string, u models.TaskUpdate) (models.Task, error) {
	if u.IsEmpty() {
		return models.Task{}, models.ErrNoFieldsToSet
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return models.Task{}, models.ErrEmptyTitle
		}
		u.Title = &title
	}
	task, _, err := s.apply(ctx, "update", id, func(st models.State, target string, _ time.Time) (models.State, bool) {
		return models.UpdateTask(st, target, u)
	})
	return task, err
}

// Delete removes the task.
func (s *Store) Delete(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return models.Task{}, err
	}

	task, ok := s.state.Find(id)
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	next, _ := models.DeleteTask(s.state, id)
	s.log.Info("task deleted", "id", id)
	return task, s.commit(ctx, next)
}

// Import appends the tasks of other whose ids are not yet known and returns
// how many were added.
func (s *Store) Import(ctx context.Context, other models.State) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return 0, err
	}

	next := s.state.Clone()
	added := 0
	for _, t := range other.Tasks {
		if _, exists := next.Find(t.ID); exists {
			continue
		}
		next.Tasks = append(next.Tasks, t)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	s.log.Info("tasks imported", "count", added)
	return added, s.commit(ctx, next.Normalize(s.clock.Now()))
}

// ToggleMute flips the finish chime setting and returns the new value.
func (s *Store) ToggleMute(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return false, err
	}
	next := models.ToggleAudioMute(s.state)
	return next.Settings.AudioMuted, s.commit(ctx, next)
}

// CheckInactive raises the inactivity reminder when it is due and sends one
// notification for it. It reports whether the reminder was raised.
func (s *Store) CheckInactive(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(ctx); err != nil {
		return false, err
	}

	next, raised := models.CheckInactive(s.state, s.clock.Now(), s.threshold)
	if !raised {
		return false, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return true, err
	}
	minutes := int(s.threshold / time.Minute)
	if err := s.notifier.Notify("Time to focus", fmt.Sprintf("No task has been running for %d minutes.", minutes)); err != nil {
		s.log.Warn("inactivity notification", "error", err)
	}
	s.log.Info("inactivity reminder raised")
	return true, nil
}

// Dismiss hides the inactivity reminder and restarts the inactivity window.
func (s *Store) Dismiss(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dismissLocked(ctx)
}

func (s *Store) dismissLocked(ctx context.Context) error {
	if err := s.reload(ctx); err != nil {
		return err
	}
	return s.commit(ctx, models.DismissReminder(s.state, s.clock.Now()))
}

// DismissAndStartLast dismisses the reminder and gets the most recently
// added paused or todo task going again. It reports false when there is no
// such task.
func (s *Store) DismissAndStartLast(ctx context.Context) (models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dismissLocked(ctx); err != nil {
		return models.Task{}, false, err
	}
	last, ok := s.state.LastResumable()
	if !ok {
		return models.Task{}, false, nil
	}
	return s.applyLocked(ctx, "toggle", last.ID, models.ToggleTask)
}

// apply runs a status transition on id and saves the result when it changed
// something. The returned task reflects the state after the call.
func (s *Store) apply(ctx context.Context, op, id string, fn transition) (models.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, op, id, fn)
}

type transition func(models.State, string, time.Time) (models.State, bool)

// applyLocked is apply for callers already holding s.mu.
func (s *Store) applyLocked(ctx context.Context, op, id string, fn transition) (models.Task, bool, error) {
	if err := s.reload(ctx); err != nil {
		return models.Task{}, false, err
	}
	if _, ok := s.state.Find(id); !ok {
		return models.Task{}, false, fmt.Errorf("%w: %s", models.ErrTaskNotFound, id)
	}
	next, changed := fn(s.state, id, s.clock.Now())
	if !changed {
		s.log.Debug("transition ignored", "op", op, "id", id)
		task, _ := s.state.Find(id)
		return task, false, nil
	}
	s.log.Info("task "+op, "id", id)
	err := s.commit(ctx, next)
	task, _ := s.state.Find(id)
	return task, true, err
}
