package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/timecalc"
)

// BoardModel is the interactive task list
type BoardModel struct {
	ctx     context.Context
	tracker Tracker
	width   int
	height  int

	// Task data
	tasks    []models.Task // visible after filtering
	selected int
	showDone bool

	// UI state
	searching bool
	search    textinput.Model
	shimmer   *ShimmerState
	message   string
	err       error

	// syncedAt is when tasks were last read back from storage.
	syncedAt time.Time

	// Pagination
	currentPage  int
	tasksPerPage int

	// open is the task to watch after the board closes
	open string
}

// boardTickMsg refreshes live timers and the glint
type boardTickMsg struct{}

// NewBoardModel creates a new board model
func NewBoardModel(ctx context.Context, tracker Tracker) BoardModel {
	search := textinput.New()
	search.Placeholder = "title or tag"
	search.Prompt = "Search: "
	search.CharLimit = 100
	search.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	search.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))

	m := BoardModel{
		ctx:          ctx,
		tracker:      tracker,
		search:       search,
		shimmer:      NewShimmerState(DefaultShimmerConfig()),
		tasksPerPage: 10,
	}
	m.sync()
	m.reload()
	return m
}

func (m BoardModel) tick() tea.Cmd {
	return tea.Tick(m.shimmer.Interval(), func(time.Time) tea.Msg {
		return boardTickMsg{}
	})
}

// Init initializes the model
func (m BoardModel) Init() tea.Cmd {
	return m.tick()
}

// sync picks up changes other tally processes saved.
func (m *BoardModel) sync() {
	if err := m.tracker.Reload(m.ctx); err != nil {
		m.err = err
	}
	m.syncedAt = time.Now()
}

// reload re-reads the tasks and applies the filters, keeping the selection
// on the same task where possible.
func (m *BoardModel) reload() {
	var selectedID string
	if m.selected < len(m.tasks) {
		selectedID = m.tasks[m.selected].ID
	}

	query := strings.TrimSpace(m.search.Value())
	m.tasks = m.tracker.Snapshot().Filter(func(t models.Task) bool {
		if !m.showDone && t.Status == models.StatusDone {
			return false
		}
		return query == "" || t.Matches(query)
	})

	m.selected = 0
	for i, t := range m.tasks {
		if t.ID == selectedID {
			m.selected = i
			break
		}
	}
	m.syncPage()
}

func (m *BoardModel) syncPage() {
	if m.tasksPerPage < 1 {
		m.tasksPerPage = 1
	}
	m.currentPage = m.selected / m.tasksPerPage
}

func (m BoardModel) selectedTask() (models.Task, bool) {
	if m.selected < len(m.tasks) {
		return m.tasks[m.selected], true
	}
	return models.Task{}, false
}

// Update handles messages
func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case boardTickMsg:
		if t, ok := m.selectedTask(); ok {
			m.shimmer.Advance(runewidth.StringWidth(t.Title))
		}
		if time.Since(m.syncedAt) >= time.Second {
			m.sync()
		}
		m.reload()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// header, column titles, pagination, help and borders
		m.tasksPerPage = max(m.height-12, 3)
		m.syncPage()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		m.message, m.err = "", nil

		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.shimmer.Reset()
			}
			m.syncPage()
			return m, nil

		case "down", "j":
			if m.selected < len(m.tasks)-1 {
				m.selected++
				m.shimmer.Reset()
			}
			m.syncPage()
			return m, nil

		case "left", "h":
			m.selected = max(m.selected-m.tasksPerPage, 0)
			m.syncPage()
			return m, nil

		case "right", "l":
			m.selected = max(min(m.selected+m.tasksPerPage, len(m.tasks)-1), 0)
			m.syncPage()
			return m, nil

		case "/":
			m.searching = true
			m.shimmer.SetActive(false)
			cmd := m.search.Focus()
			return m, cmd

		case "a":
			m.showDone = !m.showDone
			m.reload()
			return m, nil

		case "s", " ":
			if t, ok := m.selectedTask(); ok {
				task, changed, err := m.tracker.Toggle(m.ctx, t.ID)
				m.err = err
				if changed {
					m.message = fmt.Sprintf("%s %s", task.Status.Icon(), task.Title)
				}
				m.reload()
			}
			return m, nil

		case "f":
			if t, ok := m.selectedTask(); ok {
				task, changed, err := m.tracker.Finish(m.ctx, t.ID)
				m.err = err
				if changed {
					m.message = fmt.Sprintf("✅ %s · %d points", task.Title, task.Points)
				} else if err == nil {
					m.message = "Nothing to finish: the task has no tracked time"
				}
				m.reload()
			}
			return m, nil

		case "enter", "w":
			if t, ok := m.selectedTask(); ok {
				m.open = t.ID
				return m, tea.Quit
			}
			return m, nil
		}
	}

	return m, nil
}

// handleSearchKeys handles key input when in search mode
func (m BoardModel) handleSearchKeys(msg tea.KeyMsg) (BoardModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		fallthrough
	case "enter":
		m.searching = false
		m.search.Blur()
		m.shimmer.SetActive(true)
		m.reload()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.reload()
	return m, cmd
}

// OpenTask returns the task chosen for the watch screen, if any.
func (m BoardModel) OpenTask() (string, bool) {
	return m.open, m.open != ""
}

// View renders the board
func (m BoardModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	leftWidth := m.width * 60 / 100
	rightWidth := m.width - leftWidth - 1

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTaskTable(leftWidth),
		" ",
		m.renderTaskDetails(rightWidth),
	)

	bottom := m.renderHelpBar()
	if m.searching {
		bottom = m.renderSearchBar()
	} else if m.err != nil {
		bottom = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ " + m.err.Error())
	} else if m.message != "" {
		bottom = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Render(m.message)
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", content, "", bottom)
}

// renderTaskTable renders the left panel with the task table
func (m BoardModel) renderTaskTable(width int) string {
	var b strings.Builder

	header := "📋 Open tasks"
	if m.showDone {
		header = "📋 All tasks"
	}
	if q := strings.TrimSpace(m.search.Value()); q != "" {
		header += fmt.Sprintf(" matching %q", q)
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Render(header))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Render("No tasks found"))
		return m.outerBorder(width).Render(b.String())
	}

	const (
		idWidth     = 8
		statusWidth = 8
		timeWidth   = 8
	)
	titleWidth := max(width-4-idWidth-statusWidth-timeWidth-6, 12)

	columns := fmt.Sprintf("%-*s %s %-*s %s", idWidth, "ID", runewidth.FillRight("TITLE", titleWidth), statusWidth, "STATUS", "TIME")
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Padding(0, 1).Render(columns))
	b.WriteString("\n\n")

	now := m.tracker.Now()
	start := m.currentPage * m.tasksPerPage
	end := min(start+m.tasksPerPage, len(m.tasks))
	for i := start; i < end; i++ {
		task := m.tasks[i]
		selected := i == m.selected

		title := runewidth.FillRight(runewidth.Truncate(task.Title, titleWidth, "…"), titleWidth)
		if selected {
			truncated := runewidth.Truncate(task.Title, titleWidth, "…")
			title = m.shimmer.Render(truncated, titleWidth) + strings.Repeat(" ", titleWidth-runewidth.StringWidth(truncated))
		}
		status := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor(string(task.Status)))).
			Render(runewidth.FillRight(task.Status.Icon()+" "+string(task.Status), statusWidth))

		row := fmt.Sprintf("%-*s %s %s %s", idWidth, task.ShortID(), title, status, timecalc.FormatClock(task.CurrentElapsed(now)))

		if selected {
			b.WriteString(lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorAccentMain)).
				Bold(true).
				Padding(0, 1).
				Render(row))
		} else {
			b.WriteString(" " + row)
		}
		b.WriteString("\n")
	}

	if m.tasksPerPage < len(m.tasks) {
		totalPages := (len(m.tasks) + m.tasksPerPage - 1) / m.tasksPerPage
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorHelpText)).
			Align(lipgloss.Center).
			Width(width-2).
			MarginTop(1).
			Render(fmt.Sprintf("Page %d/%d (%d tasks)", m.currentPage+1, totalPages, len(m.tasks))))
	}

	return m.outerBorder(width).Render(b.String())
}

func (m BoardModel) outerBorder(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)
}

// renderTaskDetails renders the right panel with task details
func (m BoardModel) renderTaskDetails(width int) string {
	var b strings.Builder
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width)

	task, ok := m.selectedTask()
	if !ok {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentMain)).Bold(true).Align(lipgloss.Center).Width(width).Render("tally"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Align(lipgloss.Center).Width(width).Render("Add a task with 'tally add'"))
		return border.Render(b.String())
	}

	value := func(s, color string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
	}
	now := m.tracker.Now()

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Width(width).Render("📋 " + task.Title))
	b.WriteString("\n\n")
	b.WriteString("Status: " + value(string(task.Status), statusColor(string(task.Status))) + "\n")
	b.WriteString("Elapsed: " + value(timecalc.FormatClock(task.CurrentElapsed(now)), ColorAccentBright) + "\n")
	b.WriteString("Expected: " + value(timecalc.FormatMinutes(task.ExpectedTime), ColorSecondaryText) + "\n")
	b.WriteString("Difficulty: " + value(fmt.Sprintf("%d/%d", task.Difficulty, timecalc.MaxDifficulty), ColorWarning) + "\n")
	if task.Status == models.StatusDone {
		b.WriteString("Points: " + value(fmt.Sprint(task.Points), ColorSuccess) + "\n")
		if task.FinishedAt != nil {
			b.WriteString("Finished: " + value(task.FinishedAt.Local().Format("02/01/2006 15:04"), ColorSecondaryText) + "\n")
		}
	}
	if len(task.Tags) > 0 {
		b.WriteString("Tags: " + value(strings.Join(task.Tags, ", "), ColorAccentBright) + "\n")
	}
	b.WriteString("ID: " + value(task.ID, ColorDisabledText))

	return border.Render(b.String())
}

// renderSearchBar renders the search bar when active
func (m BoardModel) renderSearchBar() string {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(ColorBorder)).
		Padding(0, 1).
		Width(m.width - 2).
		Render(m.search.View())
}

// renderHelpBar renders the help bar with hotkey hints
func (m BoardModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Italic(true).
		Align(lipgloss.Center).
		Width(m.width).
		Render("↑/↓ nav · ←/→ page · / search · s start/pause · f finish · enter watch · a show done · q quit")
}
