package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/timecalc"
)

// Tracker is the part of the task store the screens drive.
type Tracker interface {
	Reload(ctx context.Context) error
	Snapshot() models.State
	Now() time.Time
	Start(ctx context.Context, id string) (models.Task, bool, error)
	Pause(ctx context.Context, id string) (models.Task, bool, error)
	Toggle(ctx context.Context, id string) (models.Task, bool, error)
	Finish(ctx context.Context, id string) (models.Task, bool, error)
	CheckInactive(ctx context.Context) (bool, error)
	Dismiss(ctx context.Context) error
	DismissAndStartLast(ctx context.Context) (models.Task, bool, error)
}

// WatchOutcome tells the caller how the watch screen was left.
type WatchOutcome int

const (
	WatchDetached WatchOutcome = iota // exited, timer state untouched
	WatchFinished                     // task finished from the screen
	WatchCancelled                    // ctrl+c
)

// WatchModel shows one task's live timer with pause and finish controls
type WatchModel struct {
	ctx     context.Context
	tracker Tracker
	width   int
	height  int

	taskID   string
	task     models.Task
	elapsed  time.Duration
	reminder bool

	// Inactivity is checked every checkEvery ticks; 0 disables the check.
	checkEvery int
	ticks      int

	frame   int
	outcome WatchOutcome
	err     error
}

// watchTickMsg is sent every second to refresh the clock
type watchTickMsg struct{}

// NewWatchModel creates a watch screen for taskID. A non-positive
// checkInterval turns the inactivity check off.
func NewWatchModel(ctx context.Context, tracker Tracker, taskID string, checkInterval time.Duration) WatchModel {
	every := 0
	if checkInterval > 0 {
		every = max(int(checkInterval/time.Second), 1)
	}
	m := WatchModel{
		ctx:        ctx,
		tracker:    tracker,
		taskID:     taskID,
		checkEvery: every,
	}
	m.err = tracker.Reload(ctx)
	m.refresh()
	return m
}

func watchTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

// Init initializes the watch model
func (m WatchModel) Init() tea.Cmd {
	return watchTick()
}

// refresh reloads the task and reminder flag from the store.
func (m *WatchModel) refresh() {
	st := m.tracker.Snapshot()
	if t, ok := st.Find(m.taskID); ok {
		m.task = t
	}
	m.elapsed = m.task.CurrentElapsed(m.tracker.Now())
	m.reminder = st.ShowInactiveReminder
}

// Update handles messages
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case watchTickMsg:
		m.ticks++
		m.frame = (m.frame + 1) % 4
		if m.checkEvery > 0 && m.ticks%m.checkEvery == 0 {
			if _, err := m.tracker.CheckInactive(m.ctx); err != nil {
				m.err = err
			}
		} else if err := m.tracker.Reload(m.ctx); err != nil {
			m.err = err
		}
		m.refresh()
		return m, watchTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case " ", "p":
			_, _, m.err = m.tracker.Toggle(m.ctx, m.taskID)
			m.refresh()
			return m, nil
		case "f", "F":
			_, finished, err := m.tracker.Finish(m.ctx, m.taskID)
			m.err = err
			if finished {
				m.outcome = WatchFinished
				m.refresh()
				return m, tea.Quit
			}
			return m, nil
		case "d":
			if m.reminder {
				m.err = m.tracker.Dismiss(m.ctx)
				m.refresh()
			}
			return m, nil
		case "r":
			if m.reminder {
				task, ok, err := m.tracker.DismissAndStartLast(m.ctx)
				m.err = err
				if ok {
					m.taskID = task.ID
				}
				m.refresh()
			}
			return m, nil
		case "esc", "q":
			m.outcome = WatchDetached
			return m, tea.Quit
		case "ctrl+c":
			m.outcome = WatchCancelled
			return m, tea.Quit
		}
	}

	return m, nil
}

// Outcome reports how the screen was left.
func (m WatchModel) Outcome() WatchOutcome {
	return m.outcome
}

// Task returns the watched task as last seen.
func (m WatchModel) Task() models.Task {
	return m.task
}

// View renders the watch screen
func (m WatchModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var rows []string
	if m.reminder {
		rows = append(rows, m.renderReminder())
	}
	contentHeight := m.height - 2 - len(rows)

	if m.width < 90 {
		rows = append(rows, m.renderTimerPanel(m.width, contentHeight))
	} else {
		leftWidth := m.width / 2
		rightWidth := m.width - leftWidth - 2
		rows = append(rows, lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.renderTimerPanel(leftWidth, contentHeight),
			"  ",
			m.renderDetailsPanel(rightWidth, contentHeight),
		))
	}
	rows = append(rows, m.renderHelpBar())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderTimerPanel renders the big clock and task title
func (m WatchModel) renderTimerPanel(width, height int) string {
	var components []string

	header := "⏸  PAUSED  ⏸"
	headerColor := ColorWarning
	switch m.task.Status {
	case models.StatusActive:
		anim := []string{"⏱", "⏲", "⏱", "⏲"}[m.frame]
		header = fmt.Sprintf("%s  TRACKING TIME  %s", anim, anim)
		headerColor = ColorAccentBright
	case models.StatusDone:
		header = "✅  FINISHED  ✅"
		headerColor = ColorSuccess
	case models.StatusTodo:
		header = "○  NOT STARTED  ○"
		headerColor = ColorSecondaryText
	}
	center := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	components = append(components,
		center.Foreground(lipgloss.Color(headerColor)).Bold(true).Render(header),
		center.Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).Render(runewidth.Truncate(m.task.Title, width-4, "…")),
	)

	clockColor := ColorAccentBright
	if m.task.Status != models.StatusActive {
		clockColor = ColorSecondaryText
	}
	components = append(components, center.UnsetForeground().UnsetBold().Render(renderBigClock(m.elapsed, clockColor)))

	expected := time.Duration(m.task.ExpectedTime) * time.Minute
	progress := fmt.Sprintf("%s of %s expected", timecalc.FormatClock(m.elapsed), timecalc.FormatMinutes(m.task.ExpectedTime))
	progressColor := ColorSecondaryText
	if expected > 0 && m.elapsed > expected {
		progress += " · over estimate"
		progressColor = ColorWarning
	}
	components = append(components, center.Foreground(lipgloss.Color(progressColor)).Italic(true).Render(progress))

	if m.err != nil {
		components = append(components, center.Foreground(lipgloss.Color(ColorError)).Render("❌ "+m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(components, "\n\n"))
}

// renderDetailsPanel renders the task details next to the clock
func (m WatchModel) renderDetailsPanel(width, height int) string {
	task := m.task
	line := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)
	value := func(s, color string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1).
		Render(task.Title))
	b.WriteString("\n\n")

	b.WriteString(line.Render(fmt.Sprintf("%s Status: %s", task.Status.Icon(), value(string(task.Status), statusColor(string(task.Status))))))
	b.WriteString("\n")

	tags := "none"
	tagsColor := ColorDisabledText
	if len(task.Tags) > 0 {
		tags = "#" + strings.Join(task.Tags, " #")
		tagsColor = ColorAccentBright
	}
	b.WriteString(line.Render("🏷️  Tags: " + value(tags, tagsColor)))
	b.WriteString("\n")

	b.WriteString(line.Render("🎯 Difficulty: " + value(strings.Repeat("★", task.Difficulty)+strings.Repeat("☆", timecalc.MaxDifficulty-task.Difficulty), ColorWarning)))
	b.WriteString("\n")

	points := timecalc.Points(m.elapsed, task.Difficulty)
	label := "💎 Points if finished now: "
	if task.Status == models.StatusDone {
		points = task.Points
		label = "💎 Points: "
	}
	b.WriteString(line.Render(label + value(fmt.Sprint(points), ColorAccentBright)))
	b.WriteString("\n")

	b.WriteString(line.Render("📝 Created: " + value(task.CreatedAt.Local().Format("Jan 02, 2006 15:04"), ColorSecondaryText)))

	return lipgloss.NewStyle().Height(height).Render(b.String())
}

// renderReminder renders the inactivity banner
func (m WatchModel) renderReminder() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorCardBackground)).
		Background(lipgloss.Color(ColorWarning)).
		Bold(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("🔔 Nothing has been running for a while · d dismiss · r resume last task")
}

// renderHelpBar renders the help bar at the bottom
func (m WatchModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("space pause/resume · f finish · esc/q exit (keep running) · ctrl+c quit")
}

// bigDigits is 5-row block art for the clock.
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders d as HH:MM:SS in block digits
func renderBigClock(d time.Duration, color string) string {
	var rows [5]strings.Builder
	for _, ch := range timecalc.FormatClock(d) {
		art, ok := bigDigits[ch]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(art[i])
			rows[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = style.Render(rows[i].String())
	}
	return strings.Join(lines, "\n")
}
