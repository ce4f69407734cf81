package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/unowned-ai/notetable/pkg/notes"
	"github.com/unowned-ai/notetable/pkg/render"
	"github.com/unowned-ai/notetable/pkg/tables"
)

const (
	fieldName = iota
	fieldContent
	fieldCategory
	fieldCount
)

type model struct {
	ctrl   *tables.Controller
	logger *zap.Logger

	loaded bool
	width  int // Current terminal width (for layout)
	height int // Current terminal height
	err    error

	dbFilename string
	quitting   bool

	// Row cursor per tab
	cursors [2]int

	form          *tables.Form
	formField     int
	formError     string
	nameInput     textinput.Model
	contentInput  textarea.Model
	categoryIndex int

	deleting         bool
	deleteKey        string
	deleteConfirmIdx int // 0 = "Yes" selected, 1 = "No"

	status      string
	statusIsErr bool
	statusSeq   int
}

// Initialize TUI model
func initModel(c *tables.Controller, dbFilename string, logger *zap.Logger) model {
	if logger == nil {
		logger = zap.NewNop()
	}

	name := textinput.New()
	name.Placeholder = "Note name"
	name.CharLimit = 256

	content := textarea.New()
	content.Placeholder = "Note content (dates like 5/1/2024 are highlighted)"
	content.ShowLineNumbers = false
	content.SetHeight(4)

	return model{
		ctrl:         c,
		logger:       logger,
		dbFilename:   dbFilename,
		nameInput:    name,
		contentInput: content,
	}
}

func (m model) Init() tea.Cmd {
	return loadNotes(m.ctrl)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case error:
		m.err = msg
		return m, nil

	case notesLoadedMsg:
		m.ctrl.Initialize()
		m.loaded = true
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)
		}
		if !m.loaded {
			return m, nil
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.deleting {
			return m.updateDeleteConfirm(msg)
		}
		return m.updateTables(msg)
	}

	return m, nil
}

// Root navigation over the visible table
func (m model) updateTables(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.ctrl.Tab()
	rows := m.ctrl.Visible().Rows()

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Sequence(tea.ExitAltScreen, tea.Quit)

	case "up", "k":
		if m.cursors[tab] > 0 {
			m.cursors[tab]--
		}

	case "down", "j":
		if m.cursors[tab] < len(rows)-1 {
			m.cursors[tab]++
		}

	case "tab", "left", "right", "h", "l":
		if tab == tables.ShowingActive {
			m.ctrl.ShowAnotherTable(tables.ShowingArchived)
		} else {
			m.ctrl.ShowAnotherTable(tables.ShowingActive)
		}

	case "1":
		m.ctrl.ShowAnotherTable(tables.ShowingActive)

	case "2":
		m.ctrl.ShowAnotherTable(tables.ShowingArchived)

	case "n":
		return m.openForm(m.ctrl.NewNoteForm())

	case "e", "enter":
		if row := m.selectedRow(); row != nil {
			out, err := row.Trigger(context.Background(), render.ActionEdit, nil)
			if err != nil {
				return m.setStatus(err.Error(), true)
			}
			if out.Form != nil {
				return m.openForm(out.Form)
			}
		}

	case "a":
		if row := m.selectedRow(); row != nil {
			from := m.ctrl.Tab()
			out, err := row.Trigger(context.Background(), render.ActionArchive, nil)
			m.clampCursors()
			if err != nil {
				return m.setStatus(err.Error(), true)
			}
			if out.Applied {
				if from == tables.ShowingActive {
					return m.setStatus("Note archived", false)
				}
				return m.setStatus("Note restored", false)
			}
		}

	case "d":
		if row := m.selectedRow(); row != nil {
			m.deleting = true
			m.deleteKey = row.Key
			m.deleteConfirmIdx = 1
		}
	}

	return m, nil
}

// Deleting Note Mode
func (m model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.deleteConfirmIdx = 0

	case "down", "j":
		m.deleteConfirmIdx = 1

	case "enter":
		m.deleting = false
		key := m.deleteKey
		m.deleteKey = ""
		if m.deleteConfirmIdx != 0 {
			return m, nil
		}

		// The dialog is the confirmation.
		applied, err := m.ctrl.DeleteNote(context.Background(), key, tables.AlwaysConfirm)
		m.clampCursors()
		if err != nil {
			return m.setStatus(err.Error(), true)
		}
		if applied {
			return m.setStatus("Note deleted", false)
		}
		return m, nil

	case "esc":
		m.deleting = false
		m.deleteKey = ""
	}
	return m, nil
}

// Create or edit form mode
func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	categories := notes.Categories()

	switch msg.String() {
	case "esc":
		m.form.Cancel()
		m.form = nil
		m.formError = ""
		return m, nil

	case "tab":
		return m.focusField((m.formField + 1) % fieldCount)

	case "shift+tab":
		return m.focusField((m.formField + fieldCount - 1) % fieldCount)

	case "ctrl+s":
		return m.submitForm()

	case "enter":
		switch m.formField {
		case fieldName:
			return m.focusField(fieldContent)
		case fieldCategory:
			return m.submitForm()
		}
	}

	if m.formField == fieldCategory {
		switch msg.String() {
		case "left", "up", "h", "k":
			m.categoryIndex = (m.categoryIndex + len(categories) - 1) % len(categories)
		case "right", "down", "l", "j", " ":
			m.categoryIndex = (m.categoryIndex + 1) % len(categories)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.formField == fieldName {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.contentInput, cmd = m.contentInput.Update(msg)
	}
	return m, cmd
}

func (m model) openForm(form *tables.Form) (tea.Model, tea.Cmd) {
	name, content, category := form.Defaults()
	m.form = form
	m.formError = ""
	m.nameInput.Reset()
	m.nameInput.SetValue(name)
	m.contentInput.Reset()
	m.contentInput.SetValue(content)
	m.categoryIndex = 0
	for i, c := range notes.Categories() {
		if c == category {
			m.categoryIndex = i
		}
	}
	return m.focusField(fieldName)
}

func (m model) focusField(field int) (tea.Model, tea.Cmd) {
	m.formField = field
	m.nameInput.Blur()
	m.contentInput.Blur()

	var cmd tea.Cmd
	switch field {
	case fieldName:
		cmd = m.nameInput.Focus()
	case fieldContent:
		cmd = m.contentInput.Focus()
	}
	return m, cmd
}

func (m model) submitForm() (tea.Model, tea.Cmd) {
	category := notes.Categories()[m.categoryIndex]
	err := m.form.Submit(context.Background(), m.nameInput.Value(), m.contentInput.Value(), category)
	if errors.Is(err, tables.ErrInvalidInput) {
		m.formError = fmt.Sprintf("Invalid input: name and content need at least %d characters", tables.MinFieldLength)
		return m, nil
	}
	if errors.Is(err, tables.ErrUnknownCategory) {
		m.formError = "Invalid input: unknown category"
		return m, nil
	}

	created := m.form.CreateMode()
	m.form = nil
	m.formError = ""
	m.clampCursors()
	if err != nil {
		m.logger.Error("failed to save note", zap.Error(err))
		return m.setStatus(err.Error(), true)
	}
	if created {
		m.ctrl.ShowAnotherTable(tables.ShowingActive)
		m.cursors[tables.ShowingActive] = m.ctrl.Active().Len() - 1
		return m.setStatus("Note created", false)
	}
	return m.setStatus("Note saved", false)
}

func (m model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.statusSeq++
	m.status = text
	m.statusIsErr = isErr
	return m, clearStatusAfter(m.statusSeq)
}

func (m model) selectedRow() *tables.BoundRow {
	rows := m.ctrl.Visible().Rows()
	i := m.cursors[m.ctrl.Tab()]
	if i < 0 || i >= len(rows) {
		return nil
	}
	return rows[i]
}

func (m *model) clampCursors() {
	for _, tab := range []tables.Tab{tables.ShowingActive, tables.ShowingArchived} {
		n := m.ctrl.Table(tab.Collection()).Len()
		if m.cursors[tab] >= n {
			m.cursors[tab] = n - 1
		}
		if m.cursors[tab] < 0 {
			m.cursors[tab] = 0
		}
	}
}

// Assembles the UI string for each frame
func (m model) View() string {
	if m.quitting {
		return "Notes saved. Bye.\n"
	}
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}
	if !m.loaded {
		return "Loading notes...\n"
	}

	titleBar := titleStyle.Width(m.width).Render("Notetable - notes by category")

	leftWidth := m.width / 3
	if leftWidth < 30 {
		leftWidth = 30
	}
	rightWidth := m.width - leftWidth
	bordersAndPaddingWidth := 4
	panelHeightPadding := 3

	// Left column: statistics and info
	var leftBuilder strings.Builder
	leftBuilder.WriteString(subtitleStyle.Render("Statistics"))
	leftBuilder.WriteString("\n\n")
	leftBuilder.WriteString(m.statisticsView(leftWidth - bordersAndPaddingWidth))
	leftBuilder.WriteString("\n\n")
	leftBuilder.WriteString(fmt.Sprintf("Database file: %v\n", TextStatusColorize(m.dbFilename, 1)))

	leftPanel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(colorGray)).
		Padding(0, 2).
		Width(leftWidth).Height(m.height - panelHeightPadding).
		Render(leftBuilder.String())

	// Right column: navigator and visible table, or the form / delete dialog
	var rightBuilder strings.Builder
	innerWidth := rightWidth - bordersAndPaddingWidth
	switch {
	case m.form != nil:
		rightBuilder.WriteString(m.formView(innerWidth))
	case m.deleting:
		rightBuilder.WriteString(m.deleteView())
	default:
		rightBuilder.WriteString(m.navigatorView())
		rightBuilder.WriteString("\n\n")
		rightBuilder.WriteString(m.tableView(innerWidth))
	}

	rightPanel := lipgloss.NewStyle().Padding(0, 2).
		Width(rightWidth).Height(m.height - panelHeightPadding).
		Render(rightBuilder.String())

	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	footerText := "\n↑/↓ navigate • tab switch table • n new • e edit • a archive • d delete • q quit"
	if m.form != nil {
		footerText = "\ntab next field • ←/→ category • enter on category or ctrl+s submit • esc cancel"
	}
	if m.status != "" {
		if m.statusIsErr {
			footerText = "\n" + textRedStyle.Render(m.status)
		} else {
			footerText = "\n" + TextStatusColorize(m.status, 1)
		}
	}
	footerBar := footerStyle.Width(m.width).Render(footerText)

	return titleBar + "\n\n" + columns + footerBar
}

func (m model) navigatorView() string {
	var parts []string
	for _, item := range m.ctrl.Navigator() {
		label := fmt.Sprintf(" %s (%d) ", item.Label, m.ctrl.Table(item.Tab.Collection()).Len())
		if item.Selected {
			parts = append(parts, navSelectedStyle.Render(label))
		} else {
			parts = append(parts, navStyle.Render(label))
		}
	}
	return strings.Join(parts, " | ")
}

func (m model) tableView(width int) string {
	const pointerWidth = 2
	widths := columnWidths(width-pointerWidth, len(render.NoteColumns), 3)

	var b strings.Builder
	b.WriteString(generateLinePointer(false, pointerWidth))
	b.WriteString(headerStyle.Render(joinCells(render.NoteColumns, widths)))
	b.WriteString("\n")

	table := m.ctrl.Visible()
	if table.Len() == 0 {
		if table.Collection == notes.Archived {
			b.WriteString("\n  No archived notes.\n")
		} else {
			b.WriteString("\n  No notes yet. Press 'n' to create one.\n")
		}
		return b.String()
	}

	cursor := m.cursors[m.ctrl.Tab()]
	for i, row := range table.Rows() {
		line := joinCells(row.Cells, widths)
		if i == cursor {
			b.WriteString(generateLinePointer(true, pointerWidth) + selectedStyle.Render(line) + "\n")
		} else {
			b.WriteString(generateLinePointer(false, pointerWidth) + inactiveStyle.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m model) statisticsView(width int) string {
	widths := columnWidths(width, len(render.StatsColumns), 0)

	var b strings.Builder
	b.WriteString(headerStyle.Render(joinCells(render.StatsColumns, widths)))
	b.WriteString("\n")
	for _, row := range m.ctrl.Statistics() {
		b.WriteString(inactiveStyle.Render(joinCells(row.Cells(), widths)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) formView(width int) string {
	m.nameInput.Width = width - 8
	m.contentInput.SetWidth(width)

	var b strings.Builder
	b.WriteString(subtitleStyle.Render(m.form.Title()))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Name: ") + m.nameInput.View() + "\n\n")
	b.WriteString(labelStyle.Render("Content:") + "\n" + m.contentInput.View() + "\n\n")

	var cats []string
	for i, c := range notes.Categories() {
		switch {
		case i == m.categoryIndex && m.formField == fieldCategory:
			cats = append(cats, selectedStyle.Render(" "+c+" "))
		case i == m.categoryIndex:
			cats = append(cats, navSelectedStyle.Render(" "+c+" "))
		default:
			cats = append(cats, inactiveStyle.Render(" "+c+" "))
		}
	}
	b.WriteString(labelStyle.Render("Category: ") + strings.Join(cats, " "))

	if m.formError != "" {
		b.WriteString("\n\n" + textRedStyle.Render(m.formError) + "\n")
	}
	return b.String()
}

func (m model) deleteView() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("Delete Note"))
	b.WriteString("\n\n")

	name := m.deleteKey
	if res, ok := m.ctrl.Resolve(m.deleteKey); ok {
		name = res.Note.Name
	}
	b.WriteString(tables.DeletePrompt + "\n\n")
	b.WriteString("Name: " + textRedStyle.Render(name) + "\n\n")

	yesOpt, noOpt := "Yes", "No"
	if m.deleteConfirmIdx == 0 {
		yesOpt = dangerSelectedStyle.Render(" >" + yesOpt)
		noOpt = inactiveStyle.Render("  " + noOpt)
	} else {
		yesOpt = inactiveStyle.Render("  " + yesOpt)
		noOpt = selectedStyle.Render(" >" + noOpt)
	}
	b.WriteString(fmt.Sprintf("%s\n%s\n\n", yesOpt, noOpt))
	b.WriteString("(enter to confirm, esc to cancel, up/down to switch)")
	return b.String()
}

func joinCells(cells []string, widths []int) string {
	out := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		out[i] = fitCell(cell, w)
	}
	return strings.Join(out, " ")
}

// ShowTUI creates and starts the Bubble Tea TUI over c. The store is loaded
// from storage when the program starts.
func ShowTUI(c *tables.Controller, dbFilename string, logger *zap.Logger) error {
	p := tea.NewProgram(initModel(c, dbFilename, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
