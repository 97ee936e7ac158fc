// Package tui holds the interactive bubbletea screens: the live timer,
// the task board and the add/edit form.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
)

// RunWatch shows the live timer for taskID until the user leaves it.
func RunWatch(ctx context.Context, tracker Tracker, taskID string, checkInterval time.Duration) (WatchModel, error) {
	finalModel, err := run(ctx, NewWatchModel(ctx, tracker, taskID, checkInterval))
	if err != nil {
		return WatchModel{}, err
	}
	m, ok := finalModel.(WatchModel)
	if !ok {
		return WatchModel{}, fmt.Errorf("unexpected watch model %T", finalModel)
	}
	return m, m.err
}

// RunBoard shows the task board. It returns the id of the task the user
// chose to open in the timer, if any.
func RunBoard(ctx context.Context, tracker Tracker) (string, bool, error) {
	finalModel, err := run(ctx, NewBoardModel(ctx, tracker))
	if err != nil {
		return "", false, err
	}
	m, ok := finalModel.(BoardModel)
	if !ok {
		return "", false, fmt.Errorf("unexpected board model %T", finalModel)
	}
	id, open := m.OpenTask()
	return id, open, nil
}

// RunAddForm starts the interactive add task form
func RunAddForm(ctx context.Context, prefill parser.ParsedTask, defaultExpected, defaultDifficulty int) (FormResult, error) {
	return runForm(ctx, NewAddFormModel(prefill, defaultExpected, defaultDifficulty))
}

// RunEditForm starts the interactive edit form for task
func RunEditForm(ctx context.Context, task models.Task) (FormResult, error) {
	return runForm(ctx, NewEditFormModel(task))
}

func runForm(ctx context.Context, model FormModel) (FormResult, error) {
	finalModel, err := run(ctx, model)
	if err != nil {
		return FormResult{}, err
	}
	m, ok := finalModel.(FormModel)
	if !ok {
		return FormResult{}, fmt.Errorf("unexpected form model %T", finalModel)
	}
	return m.Result(), nil
}

func run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	return p.Run()
}
