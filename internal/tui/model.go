package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"datefilter/internal/apperr"
	"datefilter/internal/sheet"
	"datefilter/internal/view"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 32
	// rows taken by everything except the table body
	chromeLines = 11
)

// reloadedMsg carries a freshly ingested dataset from the watcher
type reloadedMsg struct{ ds *sheet.Dataset }

// reloadFailedMsg reports a re-ingestion that did not produce a dataset
type reloadFailedMsg struct{ err error }

// Model is the terminal counterpart of the upload page: a filter input
// that re-filters on every keystroke above a table of the visible rows.
type Model struct {
	view     *view.View
	snap     view.Snapshot
	input    textinput.Model
	table    table.Model
	styles   Styles
	alert    string
	width    int
	height   int
	quitting bool
}

// NewModel starts in the loaded state with ds
func NewModel(ds *sheet.Dataset) (*Model, error) {
	v := view.New()
	if err := v.Load(ds); err != nil {
		return nil, err
	}

	styles := DefaultStyles()

	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.Placeholder = "Enter date (e.g., 02-01-2025)"
	ti.CharLimit = 256
	ti.Focus()

	tbl := table.New(table.WithFocused(true), table.WithHeight(15))
	tbl.SetStyles(styles.Table)

	m := &Model{
		view:   v,
		input:  ti,
		table:  tbl,
		styles: styles,
	}
	m.refresh()
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-chromeLines, 3))
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.view.SetFilter(after)
			m.refresh()
		}
		return m, cmd

	case reloadedMsg:
		if err := m.view.Load(msg.ds); err != nil {
			m.alert = apperr.UserMessage(err)
			return m, nil
		}
		m.alert = ""
		m.input.SetValue("")
		m.refresh()
		return m, nil

	case reloadFailedMsg:
		m.alert = apperr.UserMessage(msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh rebuilds the table from the view's render model.
func (m *Model) refresh() {
	m.snap = m.view.Snapshot()

	widths := columnWidths(m.snap.Columns, m.snap.Rows)
	cols := make([]table.Column, len(m.snap.Columns))
	for i, title := range m.snap.Columns {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	rows := make([]table.Row, len(m.snap.Rows))
	for i, cells := range m.snap.Rows {
		rows[i] = table.Row(cells)
	}
	if m.snap.NoMatches() {
		cols, rows = placeholderLayout(cols)
	}

	// rows must never be wider than the columns
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// placeholderLayout folds cols into one column spanning the same width,
// with the titles laid out as before, holding the no-match message.
func placeholderLayout(cols []table.Column) ([]table.Column, []table.Row) {
	titles := make([]string, len(cols))
	width := 0
	for i, c := range cols {
		titles[i] = c.Title + strings.Repeat(" ", max(c.Width-lipgloss.Width(c.Title), 0))
		width += c.Width + 2
	}
	width = max(width-2, lipgloss.Width(view.PlaceholderText))
	return []table.Column{{Title: strings.Join(titles, "  "), Width: width}},
		[]table.Row{{view.PlaceholderText}}
}

func columnWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, title := range columns {
		widths[i] = lipgloss.Width(title)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], minColumnWidth), maxColumnWidth)
	}
	return widths
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Excel Date Filter"))
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString(m.styles.Alert.Render(m.alert))
	} else {
		b.WriteString(m.styles.Success.Render(m.snap.StatusLine()))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(m.snap.FileName))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Type any part of a date to filter (day, month, year or full date)"))
	b.WriteString("\n\n")

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Count.Render(m.snap.CountLine()))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("↑/↓ scroll • esc quit"))
	return b.String()
}
