package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// fakeTracker applies the model transitions in memory.
type fakeTracker struct {
	state models.State
	now   time.Time
	n     int
}

func newFakeTracker(titles ...string) *fakeTracker {
	f := &fakeTracker{state: models.NewState(), now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	for _, title := range titles {
		f.n++
		f.state, _ = models.AddTask(f.state, models.NewTask{Title: title, Difficulty: 2}, fmt.Sprintf("task-%d", f.n), f.now)
	}
	return f
}

func (f *fakeTracker) Reload(context.Context) error { return nil }
func (f *fakeTracker) Snapshot() models.State       { return f.state.Clone() }
func (f *fakeTracker) Now() time.Time               { return f.now }

func (f *fakeTracker) apply(id string, fn func(models.State, string, time.Time) (models.State, bool)) (models.Task, bool, error) {
	if _, ok := f.state.Find(id); !ok {
		return models.Task{}, false, models.ErrTaskNotFound
	}
	var changed bool
	f.state, changed = fn(f.state, id, f.now)
	task, _ := f.state.Find(id)
	return task, changed, nil
}

func (f *fakeTracker) Start(_ context.Context, id string) (models.Task, bool, error) {
	return f.apply(id, models.StartTask)
}

func (f *fakeTracker) Pause(_ context.Context, id string) (models.Task, bool, error) {
	return f.apply(id, models.PauseTask)
}

func (f *fakeTracker) Toggle(_ context.Context, id string) (models.Task, bool, error) {
	return f.apply(id, models.ToggleTask)
}

func (f *fakeTracker) Finish(_ context.Context, id string) (models.Task, bool, error) {
	return f.apply(id, models.FinishTask)
}

func (f *fakeTracker) CheckInactive(context.Context) (bool, error) {
	var raised bool
	f.state, raised = models.CheckInactive(f.state, f.now, 10*time.Minute)
	return raised, nil
}

func (f *fakeTracker) Dismiss(context.Context) error {
	f.state = models.DismissReminder(f.state, f.now)
	return nil
}

func (f *fakeTracker) DismissAndStartLast(ctx context.Context) (models.Task, bool, error) {
	_ = f.Dismiss(ctx)
	last, ok := f.state.LastResumable()
	if !ok {
		return models.Task{}, false, nil
	}
	return f.Toggle(ctx, last.ID)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWatchModel_ToggleAndFinish(t *testing.T) {
	tracker := newFakeTracker("write report")
	ctx := context.Background()
	m := NewWatchModel(ctx, tracker, "task-1", time.Second)

	next, _ := m.Update(key(" "))
	m = next.(WatchModel)
	assert.Equal(t, models.StatusActive, m.Task().Status)

	tracker.now = tracker.now.Add(90 * time.Second)
	next, cmd := m.Update(key("f"))
	m = next.(WatchModel)
	require.NotNil(t, cmd)
	assert.Equal(t, WatchFinished, m.Outcome())
	assert.Equal(t, models.StatusDone, m.Task().Status)
	assert.Equal(t, 4, m.Task().Points) // 2 minutes at difficulty 2
}

func TestWatchModel_ReminderRaisedOnTick(t *testing.T) {
	tracker := newFakeTracker("idle")
	ctx := context.Background()
	require.NoError(t, tracker.Dismiss(ctx))
	m := NewWatchModel(ctx, tracker, "task-1", time.Second)

	tracker.now = tracker.now.Add(11 * time.Minute)
	next, _ := m.Update(watchTickMsg{})
	m = next.(WatchModel)
	assert.True(t, m.reminder)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, next.View(), "Nothing has been running")

	next, _ = next.Update(key("r"))
	m = next.(WatchModel)
	assert.False(t, m.reminder)
	assert.Equal(t, models.StatusActive, m.Task().Status)
}

func TestWatchModel_Detach(t *testing.T) {
	m := NewWatchModel(context.Background(), newFakeTracker("a"), "task-1", time.Second)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, WatchDetached, next.(WatchModel).Outcome())
}

func TestBoardModel_NavigateAndOpen(t *testing.T) {
	tracker := newFakeTracker("first", "second", "third")
	m := NewBoardModel(context.Background(), tracker)
	require.Len(t, m.tasks, 3)

	next, _ := m.Update(key("j"))
	next, _ = next.Update(key("j"))
	next, cmd := next.Update(key("enter"))
	require.NotNil(t, cmd)

	id, ok := next.(BoardModel).OpenTask()
	assert.True(t, ok)
	assert.Equal(t, "task-3", id)
}

func TestBoardModel_ToggleHidesDoneByDefault(t *testing.T) {
	tracker := newFakeTracker("first", "second")
	m := NewBoardModel(context.Background(), tracker)

	next, _ := m.Update(key("s"))
	tracker.now = tracker.now.Add(time.Minute)
	next, _ = next.Update(key("f"))
	m = next.(BoardModel)
	assert.Len(t, m.tasks, 1)
	assert.Contains(t, m.message, "2 points")

	next, _ = m.Update(key("a"))
	assert.Len(t, next.(BoardModel).tasks, 2)
}

func TestBoardModel_Search(t *testing.T) {
	tracker := newFakeTracker("write docs", "fix bug")
	m := NewBoardModel(context.Background(), tracker)

	next, _ := m.Update(key("/"))
	for _, r := range "bug" {
		next, _ = next.Update(key(string(r)))
	}
	m = next.(BoardModel)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "fix bug", m.tasks[0].Title)

	next, _ = m.Update(key("esc"))
	assert.Len(t, next.(BoardModel).tasks, 2)
}

func TestFormModel_AddFlow(t *testing.T) {
	prefill := parser.ParseTitle("write docs #work ~45")
	m := NewAddFormModel(prefill, 30, 3)

	var model tea.Model = m
	for i := 0; i < 5; i++ { // four fields plus the save step
		model, _ = model.Update(key("enter"))
	}
	result := model.(FormModel).Result()
	require.True(t, result.Saved)
	assert.Equal(t, "write docs", result.Title)
	assert.Equal(t, []string{"work"}, result.Tags)
	assert.Equal(t, 45, result.ExpectedTime)
	assert.Equal(t, 3, result.Difficulty)
}

func TestFormModel_TitleRequired(t *testing.T) {
	m := NewAddFormModel(parser.ParsedTask{}, 30, 3)
	next, _ := m.Update(key("enter"))
	fm := next.(FormModel)
	assert.Equal(t, "Task title is required", fm.validationErr)
	assert.Equal(t, 0, fm.current)
}

func TestFormModel_InvalidDifficultyBlocksSave(t *testing.T) {
	task := models.Task{ID: "task-1", Title: "a", Difficulty: 2}
	m := NewEditFormModel(task)
	m.inputs[FieldDifficulty].SetValue("9")

	var model tea.Model = m
	for i := 0; i < 3; i++ {
		model, _ = model.Update(key("enter"))
	}
	fm := model.(FormModel)
	assert.False(t, fm.Result().Saved)
	assert.NotEmpty(t, fm.validationErr)
}

func TestFormModel_CancelWithoutChanges(t *testing.T) {
	m := NewEditFormModel(models.Task{ID: "task-1", Title: "a", Difficulty: 2})
	next, cmd := m.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.False(t, next.(FormModel).Result().Saved)
}

func TestFormModel_EscWithChangesAsksToSave(t *testing.T) {
	m := NewEditFormModel(models.Task{ID: "task-1", Title: "a", Difficulty: 2})
	m.inputs[FieldTitle].SetValue("renamed")

	next, _ := m.Update(key("esc"))
	require.True(t, next.(FormModel).showSaveModal)
	next, _ = next.Update(key("y"))

	result := next.(FormModel).Result()
	assert.True(t, result.Saved)
	assert.Equal(t, "renamed", result.Title)
}

func TestShimmerState_AdvanceWrapsAfterPause(t *testing.T) {
	cfg := DefaultShimmerConfig()
	s := NewShimmerState(cfg)
	for i := 0; i < 100; i++ {
		s.Advance(20)
	}
	assert.LessOrEqual(t, s.center, 20*(1+cfg.WidthRatio))
	assert.NotEmpty(t, s.Render("some title", 20))
}
