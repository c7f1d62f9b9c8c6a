package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/crmdesk/form"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(22)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

// openCmd loads a record into the tab's form, for viewing or editing.
func (m Model) openCmd(id int, mode ViewMode) tea.Cmd {
	f := m.current().form
	ctx := m.ctx
	return func() tea.Msg {
		return openedMsg{mode: mode, err: f.OpenByID(ctx, id)}
	}
}

func (m Model) handleOpened(msg openedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		entity := strings.ToLower(m.current().form.Entity())
		m.notice = &noticeMsg{level: form.LevelError, text: fmt.Sprintf("Failed to load %s: %v", entity, msg.err)}
		m.viewMode = ViewList
		return m, nil
	}
	if msg.mode == ViewEdit {
		m.startEdit()
		return m, nil
	}
	m.viewMode = ViewDetail
	return m, nil
}

func (m Model) renderDetailView() string {
	var s strings.Builder
	f := m.current().form

	s.WriteString(titleStyle.Render(fmt.Sprintf("%s #%d", strings.ToUpper(f.Entity()), m.selectedID)))
	s.WriteString("\n\n")
	for _, field := range f.Fields() {
		value := f.Value(field.Key)
		if value == "" {
			value = "-"
		}
		s.WriteString(fieldLabelStyle.Render(field.Label + ":"))
		s.WriteString(fieldValueStyle.Render(value))
		s.WriteString("\n")
	}
	if n := m.renderNotice(); n != "" {
		s.WriteString("\n")
		s.WriteString(n)
		s.WriteString("\n")
	}
	s.WriteString(m.renderDetailHelp())
	return s.String()
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"e: Edit",
		"d: Delete",
		"Esc: Back",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.current().form
	switch msg.String() {
	case "esc", "q":
		f.Close()
		m.viewMode = ViewList
	case "e":
		m.startEdit()
	case "d":
		f.Close()
		return m.askDelete(m.selectedID)
	}
	return m, nil
}
