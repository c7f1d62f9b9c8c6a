package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/crmdesk/listview"
)

func (m Model) tableHeight() int {
	if h := m.height - 12; h > 5 {
		return h
	}
	return 5
}

// refreshTable copies the active list view into the table widget.
func (m *Model) refreshTable() {
	t := m.current().table
	cols := []table.Column{{Title: "ID", Width: 5}}
	for _, c := range t.Columns() {
		cols = append(cols, table.Column{Title: c.Title, Width: c.Width})
	}
	var rows []table.Row
	for _, r := range t.Rows() {
		rows = append(rows, append(table.Row{strconv.Itoa(r.ID)}, r.Cells...))
	}

	// Columns are validated against the current rows, so clear those first.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	switch c := m.table.Cursor(); {
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) selectedRowID() int {
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return 0
	}
	id, _ := strconv.Atoi(row[0])
	return id
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CRMDESK"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}
	if filters := m.renderFilters(); filters != "" {
		s.WriteString(filters)
		s.WriteString("\n")
	}

	s.WriteString(m.renderBody())
	s.WriteString("\n")
	if n := m.renderNotice(); n != "" {
		s.WriteString("\n")
		s.WriteString(n)
	}
	s.WriteString("\n")
	s.WriteString(m.renderListHelp())
	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, t := range m.tabs {
		if i == m.active {
			rendered = append(rendered, tabActiveStyle.Render(t.entity.Title))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(t.entity.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderFilters() string {
	t := m.current()
	var parts []string
	for _, key := range t.table.FilterKeys() {
		if v := t.filters[key]; v != "" {
			parts = append(parts, key+"="+v)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return helpStyle.Render("filters: " + strings.Join(parts, ", "))
}

// renderBody shows each list state distinctly.
func (m Model) renderBody() string {
	t := m.current().table
	switch t.State() {
	case listview.StateLoading:
		return fmt.Sprintf("%s Loading %s...", m.spinner.View(), t.Plural())
	case listview.StateError:
		return errorStyle.Render(fmt.Sprintf("Error: %v", t.Err())) + "\n" +
			helpStyle.Render("Press r to retry")
	case listview.StateEmpty:
		return fmt.Sprintf("No %s yet. Press n to add one.", t.Plural())
	}
	if len(m.table.Rows()) == 0 {
		return fmt.Sprintf("No %s match your search.", t.Plural())
	}
	shown, total := t.Count()
	return m.table.View() + "\n" + helpStyle.Render(fmt.Sprintf("%d of %d %s", shown, total, t.Plural()))
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View",
		"/: Search",
		"n: New",
		"e: Edit",
		"d: Delete",
		"x: Export",
		"r: Reload",
	}
	for _, key := range m.current().table.FilterKeys() {
		help = append(help, key[:1]+": "+key)
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	t := m.current()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.switchTab((m.active + 1) % len(m.tabs))
		return m, nil
	case "shift+tab":
		m.switchTab((m.active + len(m.tabs) - 1) % len(m.tabs))
		return m, nil
	case "/":
		m.searching = true
		m.search.SetValue(t.table.Search())
		return m, m.search.Focus()
	case "r":
		return m, m.loadCmd(m.active)
	case "n":
		t.form.OpenNew()
		m.selectedID = 0
		m.startEdit()
		return m, nil
	case "enter", "e":
		id := m.selectedRowID()
		if id == 0 {
			return m, nil
		}
		m.selectedID = id
		mode := ViewDetail
		if msg.String() == "e" {
			mode = ViewEdit
		}
		return m, m.openCmd(id, mode)
	case "d":
		id := m.selectedRowID()
		if id == 0 {
			return m, nil
		}
		return m.askDelete(id)
	case "x":
		return m, m.exportCmd()
	case "s", "p":
		if key := m.filterKey(msg.String()); key != "" {
			m.cycleFilter(key)
			m.refreshTable()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.current().table.SetSearch("")
		fallthrough
	case "enter":
		m.searching = false
		m.search.Blur()
		m.refreshTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.current().table.SetSearch(m.search.Value())
	m.refreshTable()
	return m, cmd
}

func (m *Model) switchTab(i int) {
	m.active = i
	m.search.SetValue(m.current().table.Search())
	m.table.SetCursor(0)
	m.refreshTable()
}

// filterKey maps a shortcut to the filter it cycles, if the tab has one.
func (m Model) filterKey(shortcut string) string {
	for _, key := range m.current().table.FilterKeys() {
		if strings.HasPrefix(key, shortcut) {
			return key
		}
	}
	return ""
}

// cycleFilter steps through "all" and then each option the form offers
// for the same field.
func (m Model) cycleFilter(key string) {
	t := m.current()
	var options []string
	for _, f := range t.form.Fields() {
		if f.Key == key {
			options = f.Options
		}
	}
	values := append([]string{""}, options...)

	next := ""
	for i, v := range values {
		if v == t.filters[key] {
			next = values[(i+1)%len(values)]
			break
		}
	}
	t.filters[key] = next
	_ = t.table.SetFilter(key, next)
}

func (m Model) exportCmd() tea.Cmd {
	t := m.current().table
	dir := m.exportDir
	return func() tea.Msg {
		file, err := t.Export()
		if err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return exportedMsg{path: path, err: fmt.Errorf("failed to write %s: %w", path, err)}
		}
		return exportedMsg{path: path}
	}
}
