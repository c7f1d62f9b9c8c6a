// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Shows the list view's own prompt and deletes only after an explicit yes
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/crmdesk/form"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// askDelete shows the list view's confirmation prompt for the record.
func (m Model) askDelete(id int) (tea.Model, tea.Cmd) {
	prompt, err := m.current().table.Prompt(id)
	if err != nil {
		m.notice = &noticeMsg{level: form.LevelWarning, text: "Record is no longer loaded. Press r to reload."}
		m.viewMode = ViewList
		return m, nil
	}
	m.selectedID = id
	m.deletePrompt = prompt
	m.viewMode = ViewConfirmDelete
	return m, nil
}

func (m Model) deleteCmd(id int) tea.Cmd {
	t := m.current().table
	ctx := m.ctx
	return func() tea.Msg {
		_, err := t.Delete(ctx, id, nil)
		return deletedMsg{err: err}
	}
}

func (m Model) renderConfirmDeleteView() string {
	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	warning := "\nThis action cannot be undone!"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		m.deletePrompt,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewMode = ViewList
		m.deletePrompt = ""
		return m, m.deleteCmd(m.selectedID)
	case "n", "N", "esc":
		m.deletePrompt = ""
		m.viewMode = ViewList
	}
	return m, nil
}
