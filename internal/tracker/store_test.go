package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/db"
	"github.com/balkashynov/tally/internal/models"
)

type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memPersister struct {
	state   *models.State
	loadErr error
	saveErr error
	saves   int
	backups int
}

func (p *memPersister) LoadState(context.Context, time.Time) (models.State, error) {
	if p.loadErr != nil {
		return models.NewState(), p.loadErr
	}
	if p.state == nil {
		return models.NewState(), nil
	}
	return p.state.Clone(), nil
}

func (p *memPersister) SaveState(_ context.Context, st models.State) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	c := st.Clone()
	p.state = &c
	p.saves++
	return nil
}

func (p *memPersister) BackupState(context.Context, time.Time) (string, error) {
	p.backups++
	return "backup", nil
}

type countingNotifier struct{ calls int }

func (n *countingNotifier) Notify(string, string) error {
	n.calls++
	return nil
}

type countingChime struct{ plays int }

func (c *countingChime) Play() error {
	c.plays++
	return nil
}

type fixture struct {
	store    *Store
	clock    *mockClock
	persist  *memPersister
	notifier *countingNotifier
	chime    *countingChime
}

func newFixture(t *testing.T, persist *memPersister) *fixture {
	t.Helper()
	if persist == nil {
		persist = &memPersister{}
	}
	f := &fixture{
		clock:    &mockClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		persist:  persist,
		notifier: &countingNotifier{},
		chime:    &countingChime{},
	}
	n := 0
	store, err := Open(context.Background(), persist, Options{
		Clock:    f.clock,
		Notifier: f.notifier,
		Chime:    f.chime,
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		},
	})
	require.NoError(t, err)
	f.store = store
	return f
}

func TestStore_AddAndFinish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	task, err := f.store.Add(ctx, models.NewTask{Title: "  write  ", Difficulty: 3})
	require.NoError(t, err)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, "write", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)

	_, changed, err := f.store.Start(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	f.clock.Advance(125 * time.Second)
	done, changed, err := f.store.Finish(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusDone, done.Status)
	assert.Equal(t, 9, done.Points)
	assert.Equal(t, 1, f.chime.plays)

	require.NotNil(t, f.persist.state)
	saved, ok := f.persist.state.Find(task.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDone, saved.Status)
}

func TestStore_FinishMutedSkipsChime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	muted, err := f.store.ToggleMute(ctx)
	require.NoError(t, err)
	assert.True(t, muted)

	task, err := f.store.Add(ctx, models.NewTask{Title: "quiet"})
	require.NoError(t, err)
	_, _, err = f.store.Start(ctx, task.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, changed, err := f.store.Finish(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, f.chime.plays)
}

func TestStore_AddRejectsEmptyTitle(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.store.Add(context.Background(), models.NewTask{Title: "   "})
	assert.ErrorIs(t, err, models.ErrEmptyTitle)
	assert.Zero(t, f.persist.saves)
}

func TestStore_UnknownTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, _, err := f.store.Start(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
	_, err = f.store.Delete(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestStore_NoOpDoesNotSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	task, err := f.store.Add(ctx, models.NewTask{Title: "a"})
	require.NoError(t, err)
	saves := f.persist.saves

	_, changed, err := f.store.Pause(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, saves, f.persist.saves)
}

func TestStore_StartPausesOther(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	a, _ := f.store.Add(ctx, models.NewTask{Title: "a"})
	b, _ := f.store.Add(ctx, models.NewTask{Title: "b"})

	_, _, err := f.store.Start(ctx, a.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, _, err = f.store.Start(ctx, b.ID)
	require.NoError(t, err)

	st := f.store.Snapshot()
	first, _ := st.Find(a.ID)
	assert.Equal(t, models.StatusPaused, first.Status)
	assert.Equal(t, time.Minute, first.Elapsed)
	active, ok := st.Active()
	require.True(t, ok)
	assert.Equal(t, b.ID, active.ID)
}

func TestStore_UpdateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	task, _ := f.store.Add(ctx, models.NewTask{Title: "a"})

	_, err := f.store.Update(ctx, task.ID, models.TaskUpdate{})
	assert.ErrorIs(t, err, models.ErrNoFieldsToSet)

	blank := " "
	_, err = f.store.Update(ctx, task.ID, models.TaskUpdate{Title: &blank})
	assert.ErrorIs(t, err, models.ErrEmptyTitle)

	title := " renamed "
	updated, err := f.store.Update(ctx, task.ID, models.TaskUpdate{Title: &title, Tags: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, []string{"x"}, updated.Tags)
}

func TestStore_DeleteAndResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	task, _ := f.store.Add(ctx, models.NewTask{Title: "a"})

	id, err := f.store.Resolve("task-")
	require.NoError(t, err)
	assert.Equal(t, task.ID, id)

	deleted, err := f.store.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", deleted.Title)
	assert.Empty(t, f.store.Snapshot().Tasks)
}

func TestOpen_RecoversRunningTimer(t *testing.T) {
	started := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	st := models.NewState()
	st, _ = models.AddTask(st, models.NewTask{Title: "long"}, "x", started)
	st, _ = models.StartTask(st, "x", started)
	persist := &memPersister{state: &st}

	f := newFixture(t, persist)

	task, ok := f.store.Snapshot().Find("x")
	require.True(t, ok)
	assert.Equal(t, models.StatusActive, task.Status)
	assert.Equal(t, time.Hour, task.Elapsed)
	require.NotNil(t, task.StartedAt)
	assert.Equal(t, f.clock.Now(), *task.StartedAt)
	assert.Equal(t, 1, persist.saves)
}

func TestOpen_CorruptStateStartsEmpty(t *testing.T) {
	persist := &memPersister{loadErr: fmt.Errorf("%w: bad json", db.ErrCorruptState)}
	f := newFixture(t, persist)

	assert.Empty(t, f.store.Snapshot().Tasks)
	assert.Equal(t, 1, persist.backups)
}

func TestOpen_LoadErrorFails(t *testing.T) {
	persist := &memPersister{loadErr: errors.New("disk on fire")}
	_, err := Open(context.Background(), persist, Options{})
	assert.Error(t, err)
}

func TestStore_SaveErrorKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.persist.saveErr = errors.New("read-only")

	task, err := f.store.Add(ctx, models.NewTask{Title: "a"})
	assert.Error(t, err)
	_, ok := f.store.Snapshot().Find(task.ID)
	assert.True(t, ok)
}

func TestStore_InactivityReminder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	task, _ := f.store.Add(ctx, models.NewTask{Title: "a"})
	_, _, _ = f.store.Start(ctx, task.ID)
	_, _, _ = f.store.Pause(ctx, task.ID)

	f.clock.Advance(9 * time.Minute)
	raised, err := f.store.CheckInactive(ctx)
	require.NoError(t, err)
	assert.False(t, raised)

	f.clock.Advance(time.Minute)
	raised, err = f.store.CheckInactive(ctx)
	require.NoError(t, err)
	assert.True(t, raised)
	assert.True(t, f.store.Snapshot().ShowInactiveReminder)

	f.clock.Advance(time.Hour)
	raised, err = f.store.CheckInactive(ctx)
	require.NoError(t, err)
	assert.False(t, raised, "one notification per episode")
	assert.Equal(t, 1, f.notifier.calls)

	require.NoError(t, f.store.Dismiss(ctx))
	assert.False(t, f.store.Snapshot().ShowInactiveReminder)
	f.clock.Advance(10 * time.Minute)
	raised, err = f.store.CheckInactive(ctx)
	require.NoError(t, err)
	assert.True(t, raised)
	assert.Equal(t, 2, f.notifier.calls)
}

func TestStore_SetNotifierNilSilences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	require.NoError(t, f.store.Dismiss(ctx))
	f.store.SetNotifier(nil)

	f.clock.Advance(DefaultInactivityThreshold)
	raised, err := f.store.CheckInactive(ctx)
	require.NoError(t, err)
	assert.True(t, raised)
	assert.Zero(t, f.notifier.calls)
}

func TestStore_DismissAndStartLast(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, ok, err := f.store.DismissAndStartLast(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	a, _ := f.store.Add(ctx, models.NewTask{Title: "a"})
	b, _ := f.store.Add(ctx, models.NewTask{Title: "b"})
	_, _, _ = f.store.Start(ctx, b.ID)
	f.clock.Advance(time.Minute)
	_, _, _ = f.store.Finish(ctx, b.ID)

	task, ok, err := f.store.DismissAndStartLast(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a.ID, task.ID)
	assert.Equal(t, models.StatusActive, task.Status)
}

func TestStore_Import(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	existing, _ := f.store.Add(ctx, models.NewTask{Title: "mine"})

	other := models.NewState()
	other, _ = models.AddTask(other, models.NewTask{Title: "dup"}, existing.ID, f.clock.Now())
	other, _ = models.AddTask(other, models.NewTask{Title: "new"}, "imported", f.clock.Now())

	added, err := f.store.Import(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	st := f.store.Snapshot()
	require.Len(t, st.Tasks, 2)
	assert.Equal(t, "mine", st.Tasks[0].Title)
	assert.Equal(t, "new", st.Tasks[1].Title)
}

func TestMonitor_RunRaisesReminder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t, nil)
	require.NoError(t, f.store.Dismiss(ctx))
	f.clock.Advance(11 * time.Minute)

	raised := make(chan struct{}, 1)
	m := NewMonitor(f.store, time.Hour, func() { raised <- struct{}{} })
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-raised:
	case <-time.After(2 * time.Second):
		t.Fatal("reminder was not raised")
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 1, f.notifier.calls)
}

// openShared opens a store on repo the way a separate tally process would.
func openShared(t *testing.T, repo *db.Repository, clock Clock, prefix string, chime Chime) *Store {
	t.Helper()
	n := 0
	store, err := Open(context.Background(), repo, Options{
		Clock: clock,
		Chime: chime,
		NewID: func() string {
			n++
			return fmt.Sprintf("%s-%d", prefix, n)
		},
	})
	require.NoError(t, err)
	return store
}

func TestStore_SharedRepositorySeesOtherWrites(t *testing.T) {
	ctx := context.Background()
	repo, err := db.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	clock := &mockClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}

	watcher := openShared(t, repo, clock, "w", nil)
	require.NoError(t, watcher.Dismiss(ctx))

	cli := openShared(t, repo, clock, "c", nil)
	task, err := cli.Add(ctx, models.NewTask{Title: "b"})
	require.NoError(t, err)
	_, _, err = cli.Start(ctx, task.ID)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	raised, err := watcher.CheckInactive(ctx)
	require.NoError(t, err)
	assert.False(t, raised, "a task is running in another process")

	st, err := repo.LoadState(ctx, clock.Now())
	require.NoError(t, err)
	require.Len(t, st.Tasks, 1)
	assert.Equal(t, models.StatusActive, st.Tasks[0].Status)

	// watcher writes must keep what the other process saved
	other, err := watcher.Add(ctx, models.NewTask{Title: "from watcher"})
	require.NoError(t, err)
	st, err = repo.LoadState(ctx, clock.Now())
	require.NoError(t, err)
	require.Len(t, st.Tasks, 2)
	assert.Equal(t, task.ID, st.Tasks[0].ID)
	assert.Equal(t, other.ID, st.Tasks[1].ID)
}

func TestStore_FinishHonoursMuteFromOtherProcess(t *testing.T) {
	ctx := context.Background()
	repo, err := db.Open(filepath.Join(t.TempDir(), "tally.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	clock := &mockClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	chime := &countingChime{}

	a := openShared(t, repo, clock, "a", chime)
	task, err := a.Add(ctx, models.NewTask{Title: "quiet"})
	require.NoError(t, err)
	_, _, err = a.Start(ctx, task.ID)
	require.NoError(t, err)

	b := openShared(t, repo, clock, "b", nil)
	muted, err := b.ToggleMute(ctx)
	require.NoError(t, err)
	require.True(t, muted)

	clock.Advance(time.Minute)
	_, changed, err := a.Finish(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, chime.plays)
}

func TestStore_ReloadPicksUpOtherWrites(t *testing.T) {
	ctx := context.Background()
	persist := &memPersister{}
	f := newFixture(t, persist)

	other := models.NewState()
	other, _ = models.AddTask(other, models.NewTask{Title: "elsewhere"}, "x", f.clock.Now())
	persist.state = &other

	assert.Empty(t, f.store.Snapshot().Tasks)
	require.NoError(t, f.store.Reload(ctx))
	_, ok := f.store.Snapshot().Find("x")
	assert.True(t, ok)
}

func TestNewMonitor_DefaultInterval(t *testing.T) {
	f := newFixture(t, nil)
	m := NewMonitor(f.store, 0, nil)
	assert.Equal(t, time.Minute, m.interval)
}
