package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/tally/internal/models"
	"github.com/balkashynov/tally/internal/parser"
	"github.com/balkashynov/tally/internal/timecalc"
)

// Field identifies one input of the task form
type Field int

const (
	FieldTitle Field = iota
	FieldTags
	FieldExpected
	FieldDifficulty
	fieldCount
)

var fieldLabels = [fieldCount]string{
	FieldTitle:      "Title",
	FieldTags:       "Tags",
	FieldExpected:   "Expected time",
	FieldDifficulty: "Difficulty",
}

// FormResult is what the form produced when it closed
type FormResult struct {
	Title        string
	Tags         []string
	ExpectedTime int
	Difficulty   int
	Saved        bool
}

// NewTask converts the result into creation input.
func (r FormResult) NewTask() models.NewTask {
	return models.NewTask{
		Title:        r.Title,
		Tags:         r.Tags,
		ExpectedTime: r.ExpectedTime,
		Difficulty:   r.Difficulty,
	}
}

// FormModel is the step-by-step add/edit form
type FormModel struct {
	fields  []Field
	current int // index into fields; len(fields) is the save step
	inputs  [fieldCount]textinput.Model
	initial [fieldCount]string
	width   int
	height  int

	heading       string
	validationErr string
	result        FormResult

	showSaveModal   bool
	saveModalChoice bool // true for Yes
	done            bool
}

// NewAddFormModel creates a form for a new task, pre-filled from quick-add
// parsing and configured defaults.
func NewAddFormModel(prefill parser.ParsedTask, defaultExpected, defaultDifficulty int) FormModel {
	expected := prefill.ExpectedTime
	if expected == 0 {
		expected = defaultExpected
	}
	difficulty := prefill.Difficulty
	if difficulty == 0 {
		difficulty = defaultDifficulty
	}
	values := [fieldCount]string{
		FieldTitle:      prefill.Title,
		FieldTags:       strings.Join(prefill.Tags, ", "),
		FieldExpected:   strconv.Itoa(expected),
		FieldDifficulty: strconv.Itoa(difficulty),
	}
	return newFormModel("✨ New task", []Field{FieldTitle, FieldTags, FieldExpected, FieldDifficulty}, values)
}

// NewEditFormModel creates a form editing an existing task. The expected
// time is fixed at creation and is not offered.
func NewEditFormModel(task models.Task) FormModel {
	values := [fieldCount]string{
		FieldTitle:      task.Title,
		FieldTags:       strings.Join(task.Tags, ", "),
		FieldDifficulty: strconv.Itoa(task.Difficulty),
	}
	return newFormModel("✏️  Edit "+task.ShortID(), []Field{FieldTitle, FieldTags, FieldDifficulty}, values)
}

func newFormModel(heading string, fields []Field, values [fieldCount]string) FormModel {
	m := FormModel{heading: heading, fields: fields, initial: values}

	placeholders := [fieldCount]string{
		FieldTitle:      "Enter task title... (required)",
		FieldTags:       "work, docs or #work #docs (Enter to skip)",
		FieldExpected:   "45, 45m, 1h30m or 2 hours",
		FieldDifficulty: "1 (easy) to 5 (hard)",
	}
	limits := [fieldCount]int{FieldTitle: 200, FieldTags: 200, FieldExpected: 20, FieldDifficulty: 1}

	for i := range m.inputs {
		in := textinput.New()
		in.Width = 60
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
		in.SetValue(values[i])
		m.inputs[i] = in
	}
	m.inputs[fields[0]].Focus()
	return m
}

// Init initializes the form
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Result returns what the form produced.
func (m FormModel) Result() FormResult {
	return m.result
}

func (m FormModel) onSaveStep() bool {
	return m.current >= len(m.fields)
}

// Update handles messages
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		width := min(max(m.width*2/3-10, 30), 80)
		for i := range m.inputs {
			m.inputs[i].Width = width
		}
		return m, nil

	case tea.KeyMsg:
		if m.showSaveModal {
			switch msg.String() {
			case "left", "right":
				m.saveModalChoice = !m.saveModalChoice
				return m, nil
			case "y", "Y":
				m.saveModalChoice = true
				return m.handleSaveChoice()
			case "n", "N":
				m.saveModalChoice = false
				return m.handleSaveChoice()
			case "enter":
				return m.handleSaveChoice()
			case "esc":
				m.showSaveModal = false
				return m, nil
			case "ctrl+c":
				return m.cancel()
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m.cancel()
		case "esc":
			if m.onSaveStep() {
				return m.prevStep()
			}
			if !m.hasChanges() {
				return m.cancel()
			}
			m.showSaveModal = true
			m.saveModalChoice = true
			return m, nil
		case "enter":
			return m.handleEnter()
		case "tab", "down":
			if err := m.validateCurrent(); err != "" {
				m.validationErr = err
				return m, nil
			}
			return m.nextStep()
		case "shift+tab", "up":
			return m.prevStep()
		}
	}

	var cmd tea.Cmd
	if !m.onSaveStep() {
		f := m.fields[m.current]
		m.inputs[f], cmd = m.inputs[f].Update(msg)
	}
	return m, cmd
}

// validateCurrent checks the focused field and returns a message if invalid.
func (m FormModel) validateCurrent() string {
	if m.onSaveStep() {
		return ""
	}
	return m.validate(m.fields[m.current])
}

func (m FormModel) validate(f Field) string {
	value := strings.TrimSpace(m.inputs[f].Value())
	switch f {
	case FieldTitle:
		if value == "" {
			return "Task title is required"
		}
	case FieldExpected:
		if value == "" {
			return ""
		}
		if _, err := parser.ParseExpected(value); err != nil {
			return "Invalid expected time: " + err.Error()
		}
	case FieldDifficulty:
		if _, err := parser.ParseDifficulty(value); err != nil {
			return err.Error()
		}
	}
	return ""
}

func (m FormModel) handleEnter() (tea.Model, tea.Cmd) {
	m.validationErr = ""
	if m.onSaveStep() {
		return m.save()
	}
	if err := m.validateCurrent(); err != "" {
		m.validationErr = err
		return m, nil
	}
	return m.nextStep()
}

func (m FormModel) nextStep() (tea.Model, tea.Cmd) {
	m.validationErr = ""
	if m.onSaveStep() {
		return m, nil
	}
	m.inputs[m.fields[m.current]].Blur()
	m.current++
	if !m.onSaveStep() {
		m.inputs[m.fields[m.current]].Focus()
	}
	return m, textinput.Blink
}

func (m FormModel) prevStep() (tea.Model, tea.Cmd) {
	m.validationErr = ""
	if m.current == 0 {
		return m, nil
	}
	if !m.onSaveStep() {
		m.inputs[m.fields[m.current]].Blur()
	}
	m.current--
	m.inputs[m.fields[m.current]].Focus()
	return m, textinput.Blink
}

// hasChanges reports whether any field differs from its initial value.
func (m FormModel) hasChanges() bool {
	for _, f := range m.fields {
		if strings.TrimSpace(m.inputs[f].Value()) != strings.TrimSpace(m.initial[f]) {
			return true
		}
	}
	return false
}

// save validates every field and closes the form with the result.
func (m FormModel) save() (tea.Model, tea.Cmd) {
	for i, f := range m.fields {
		if err := m.validate(f); err != "" {
			m.showSaveModal = false
			m.validationErr = err
			if !m.onSaveStep() {
				m.inputs[m.fields[m.current]].Blur()
			}
			m.current = i
			m.inputs[f].Focus()
			return m, textinput.Blink
		}
	}

	m.result = FormResult{
		Title: strings.TrimSpace(m.inputs[FieldTitle].Value()),
		Tags:  parser.ParseTags(m.inputs[FieldTags].Value()),
		Saved: true,
	}
	if v := strings.TrimSpace(m.inputs[FieldExpected].Value()); v != "" {
		m.result.ExpectedTime, _ = parser.ParseExpected(v)
	}
	m.result.Difficulty, _ = parser.ParseDifficulty(m.inputs[FieldDifficulty].Value())
	m.done = true
	return m, tea.Quit
}

func (m FormModel) cancel() (tea.Model, tea.Cmd) {
	m.result = FormResult{}
	m.done = true
	return m, tea.Quit
}

func (m FormModel) handleSaveChoice() (tea.Model, tea.Cmd) {
	if m.saveModalChoice {
		return m.save()
	}
	return m.cancel()
}

// View renders the form
func (m FormModel) View() string {
	if m.done {
		return ""
	}

	wizard := m.renderWizard()
	if m.width >= 85 {
		rightWidth := 40
		leftWidth := m.width - rightWidth - 4
		wizard = lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.NewStyle().
				Width(leftWidth).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color(ColorBorder)).
				Padding(1).
				Render(wizard),
			" ",
			lipgloss.NewStyle().Width(rightWidth).Padding(1).Render(m.renderPreview()),
		)
	}

	if m.showSaveModal {
		return lipgloss.JoinVertical(lipgloss.Left, wizard, m.renderSaveModal())
	}
	return wizard
}

// renderWizard renders the fields with the focused one highlighted
func (m FormModel) renderWizard() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentMain)).Render(m.heading))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
		marker := "  "
		if i == m.current {
			labelStyle = labelStyle.Foreground(lipgloss.Color(ColorAccentBright)).Bold(true)
			marker = "▸ "
		}
		b.WriteString(marker + labelStyle.Render(fieldLabels[f]))
		b.WriteString("\n  ")
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n\n")
	}

	saveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText))
	if m.onSaveStep() {
		saveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess)).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorSuccess)).
			Padding(0, 2)
	}
	b.WriteString(saveStyle.Render("💾 Save"))
	b.WriteString("\n")

	if m.validationErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError)).Render("❌ " + m.validationErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText)).Italic(true).
		Render("enter next · tab/↓ next · shift+tab/↑ back · esc cancel"))
	return b.String()
}

// renderPreview renders the live preview of the task being built
func (m FormModel) renderPreview() string {
	value := func(s, color string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright)).Render("Preview"))
	b.WriteString("\n\n")

	title := strings.TrimSpace(m.inputs[FieldTitle].Value())
	if title == "" {
		title = value("(untitled)", ColorDisabledText)
	}
	b.WriteString("📋 " + title + "\n")

	if tags := parser.ParseTags(m.inputs[FieldTags].Value()); len(tags) > 0 {
		b.WriteString("🏷️  " + value("#"+strings.Join(tags, " #"), ColorAccentBright) + "\n")
	}
	for _, f := range m.fields {
		if f != FieldExpected {
			continue
		}
		if minutes, err := parser.ParseExpected(m.inputs[FieldExpected].Value()); err == nil {
			b.WriteString("⏳ " + value(timecalc.FormatMinutes(minutes), ColorSecondaryText) + "\n")
		}
	}
	if d, err := parser.ParseDifficulty(m.inputs[FieldDifficulty].Value()); err == nil {
		stars := strings.Repeat("★", d) + strings.Repeat("☆", timecalc.MaxDifficulty-d)
		b.WriteString("🎯 " + value(stars, ColorWarning) + "\n")
		b.WriteString(value(fmt.Sprintf("\n%d point(s) per tracked minute", d), ColorHelpText))
	}
	return b.String()
}

// renderSaveModal renders the unsaved changes prompt
func (m FormModel) renderSaveModal() string {
	yes, no := "[ Yes ]", "  No  "
	if !m.saveModalChoice {
		yes, no = "  Yes  ", "[ No ]"
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Padding(1, 2).
		Render("Save changes before leaving?\n\n" + yes + "   " + no)
}
