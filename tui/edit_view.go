package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/models"
)

// startEdit mirrors the open form's draft into text inputs.
func (m *Model) startEdit() {
	f := m.current().form
	fields := f.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, field := range fields {
		inputs[i] = m.newInput()
		inputs[i].Placeholder = field.Placeholder
		if inputs[i].Placeholder == "" && len(field.Options) > 0 {
			inputs[i].Placeholder = strings.Join(field.Options, " / ")
		}
		inputs[i].CharLimit = 500
		inputs[i].Width = 50
		inputs[i].SetValue(f.Value(field.Key))
	}
	m.formInputs = inputs
	m.focusIndex = 0
	m.updateFormFocus()
	m.viewMode = ViewEdit
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) renderEditView() string {
	var s strings.Builder
	f := m.current().form

	verb := "NEW "
	if f.RecordID() != 0 {
		verb = "EDIT "
	}
	s.WriteString(titleStyle.Render(verb + strings.ToUpper(f.Entity())))
	s.WriteString("\n\n")

	errs := f.Errors()
	for i, field := range f.Fields() {
		if i >= len(m.formInputs) {
			break
		}
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(fieldLabelStyle.Render(field.Label))
		s.WriteString(m.formInputs[i].View())
		s.WriteString("\n")
		if msg, ok := errs[field.Key]; ok {
			s.WriteString("    ")
			s.WriteString(errorStyle.Render(msg))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	if f.State() == form.StateSubmitting {
		s.WriteString(m.spinner.View() + " Saving...\n")
	}
	if n := m.renderNotice(); n != "" {
		s.WriteString(n)
		s.WriteString("\n")
	}
	s.WriteString(m.renderEditHelp())
	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Next / save on last",
		"Ctrl+S: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) submitCmd() tea.Cmd {
	f := m.current().form
	ctx := m.ctx
	return func() tea.Msg {
		id, err := f.Save(ctx)
		return savedMsg{id: id, err: err}
	}
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.current().form
	last := len(m.formInputs) - 1

	switch msg.String() {
	case "esc":
		f.Close()
		m.formInputs = nil
		m.viewMode = ViewList
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + last) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "ctrl+s":
		return m, m.submitCmd()
	case "enter":
		if m.focusIndex == last {
			return m, m.submitCmd()
		}
		m.focusIndex++
		m.updateFormFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	key := f.Fields()[m.focusIndex].Key
	if err := f.Set(key, m.formInputs[m.focusIndex].Value()); err != nil {
		m.notice = &noticeMsg{level: form.LevelError, text: err.Error()}
	}
	return m, cmd
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var verr *models.ValidationError
		if errors.As(msg.err, &verr) {
			m.notice = &noticeMsg{level: form.LevelWarning, text: "Please fix the highlighted fields"}
		}
		return m, nil
	}
	m.formInputs = nil
	m.viewMode = ViewList
	return m, m.loadCmd(m.active)
}
