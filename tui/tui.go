// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: One tab per CRM entity with list, detail, edit and delete confirmation views
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/listview"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewConfirmDelete
)

type noticeMsg struct {
	level form.Level
	text  string
}

type loadedMsg struct {
	tab int
	err error
}

type openedMsg struct {
	mode ViewMode
	err  error
}

type savedMsg struct {
	id  int
	err error
}

type deletedMsg struct {
	err error
}

type exportedMsg struct {
	path string
	err  error
}

// Relay forwards notifications from forms and list views into a running
// program. Notices raised before the program starts are held until then.
type Relay struct {
	mu      sync.Mutex
	program *tea.Program
	pending []noticeMsg
}

func NewRelay() *Relay { return &Relay{} }

// Notify never blocks: it may be called from inside Update.
func (r *Relay) Notify(level form.Level, text string) {
	msg := noticeMsg{level: level, text: text}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program == nil {
		r.pending = append(r.pending, msg)
		return
	}
	go r.program.Send(msg)
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
	for _, msg := range r.pending {
		go p.Send(msg)
	}
	r.pending = nil
}

// tab is one entity with its own list view and form.
type tab struct {
	entity  *app.Entity
	table   listview.Table
	form    form.Form
	filters map[string]string
}

// Model is the main bubbletea model
type Model struct {
	ctx      context.Context
	tabs     []*tab
	active   int
	viewMode ViewMode

	// List view state
	table     table.Model
	spinner   spinner.Model
	search    textinput.Model
	searching bool

	// Detail and edit view state
	selectedID int
	formInputs []textinput.Model
	focusIndex int

	// Delete confirmation state
	deletePrompt string

	notice     *noticeMsg
	exportDir  string
	cursorMode cursor.Mode

	// UI state
	width  int
	height int
}

// NewModel creates a new TUI model with one tab per workspace entity.
func NewModel(ctx context.Context, ws *app.Workspace) (Model, error) {
	m := Model{
		ctx:       ctx,
		viewMode:  ViewList,
		exportDir:  ".",
		cursorMode: cursor.CursorBlink,
		width:      100,
		height:     30,
	}
	for _, e := range ws.Entities() {
		f, err := e.NewForm()
		if err != nil {
			return Model{}, fmt.Errorf("failed to build %s form: %w", e.Key, err)
		}
		m.tabs = append(m.tabs, &tab{entity: e, table: e.NewTable(), form: f, filters: map[string]string{}})
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.search = m.newInput()
	m.search.Placeholder = "Search"
	m.search.Prompt = "/ "
	m.table = table.New(table.WithFocused(true), table.WithHeight(m.tableHeight()))
	m.refreshTable()
	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ws *app.Workspace, relay *Relay) error {
	m, err := NewModel(ctx, ws)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	relay.attach(p)
	_, err = p.Run()
	return err
}

func (m Model) newInput() textinput.Model {
	in := textinput.New()
	in.Cursor.SetMode(m.cursorMode)
	return in
}

func (m Model) current() *tab {
	return m.tabs[m.active]
}

func (m Model) loadCmd(i int) tea.Cmd {
	t := m.tabs[i].table
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{tab: i, err: t.Load(ctx)}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for i := range m.tabs {
		cmds = append(cmds, m.loadCmd(i))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case noticeMsg:
		m.notice = &msg
		return m, nil
	case loadedMsg:
		if msg.tab == m.active {
			m.refreshTable()
		}
		return m, nil
	case openedMsg:
		return m.handleOpened(msg)
	case savedMsg:
		return m.handleSaved(msg)
	case deletedMsg:
		m.viewMode = ViewList
		m.refreshTable()
		return m, nil
	case exportedMsg:
		if msg.err != nil && !errors.Is(msg.err, listview.ErrNothingToExport) {
			m.notice = &noticeMsg{level: form.LevelError, text: msg.err.Error()}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}
	return m, nil
}

func (m Model) renderNotice() string {
	if m.notice == nil {
		return ""
	}
	switch m.notice.level {
	case form.LevelSuccess:
		return successStyle.Render(m.notice.text)
	case form.LevelWarning:
		return noticeWarnStyle.Render(m.notice.text)
	}
	return errorStyle.Render(m.notice.text)
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	noticeWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)
