package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
)

type mode int

const (
	modeLoading mode = iota
	modeFields
	modePicker
	modeEdit
	modeHelp
)

// row is one selectable line of the field list. Multi-choice fields get one
// row per choice.
type row struct {
	field  string
	choice string
}

func (r row) isChoice() bool {
	return r.choice != ""
}

// Model is the hook editor TUI model.
type Model struct {
	ctx     context.Context
	editor  *editor.Editor
	save    SaveFunc
	adapter *EventBusAdapter

	spinner spinner.Model
	input   textinput.Model
	picker  *ModelPicker

	mode     mode
	prevMode mode
	rows     []row
	cursor   int
	editing  string
	editType core.FieldType

	status    string
	statusErr bool
	warnings  []string
	width     int
	height    int
	saved     string
}

// Option configures a Model.
type Option func(*Model)

// WithEventBus shows editor events from bus in the status line.
func WithEventBus(bus *events.EventBus) Option {
	return func(m *Model) {
		if bus != nil {
			m.adapter = NewEventBusAdapter(bus)
		}
	}
}

// New creates the TUI for an initialized editor. save is called with the
// final hook; a nil save disables saving.
func New(ctx context.Context, e *editor.Editor, save SaveFunc, opts ...Option) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	m := Model{
		ctx:     ctx,
		editor:  e,
		save:    save,
		spinner: sp,
		input:   ti,
		mode:    modeLoading,
		width:   80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.rebuildRows()
	return m
}

// Saved returns where the hook was saved, or "" when the user quit without
// saving.
func (m Model) Saved() string {
	return m.saved
}

// Close releases the event subscription and discards the editing session.
func (m Model) Close() {
	if m.adapter != nil {
		m.adapter.Close()
	}
	m.editor.Close()
}

// Init starts the spinner and the model fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, loadSchemas(m.ctx, m.editor)}
	if m.adapter != nil {
		cmds = append(cmds, waitForEventBusUpdate(m.adapter))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SchemasLoadedMsg:
		return m.handleSchemasLoaded(msg)

	case eventMsg:
		m = m.applyNotice(msg.inner)
		return m, waitForEventBusUpdate(m.adapter)

	case StatusMsg, WarningMsg:
		return m.applyNotice(msg), nil

	case savedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("save failed: %v", msg.err))
			return m, nil
		}
		m.saved = msg.location
		return m, tea.Quit

	case copiedMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("copy failed: %v", msg.err))
		} else {
			m.setStatus(msg.result.Describe())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleSchemasLoaded(msg SchemasLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError(fmt.Sprintf("could not load hook models: %v", msg.Err))
	}
	m.rebuildRows()

	st := m.editor.State()
	m.mode = modeFields
	if st.ActiveModel == nil && len(st.ActiveConfig) == 0 && len(st.Models) > 0 {
		m.openPicker(st.Models)
	}
	return m, nil
}

func (m Model) applyNotice(msg tea.Msg) Model {
	switch n := msg.(type) {
	case StatusMsg:
		m.setStatus(n.Text)
	case WarningMsg:
		m.warnings = append(m.warnings, n.Text)
	}
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) openPicker(models []core.HookModel) {
	m.picker = NewModelPicker(models)
	m.mode = modePicker
}

// rebuildRows lists the fields of the current config in name order.
func (m *Model) rebuildRows() {
	cfg := m.editor.Config()
	m.rows = m.rows[:0]
	for _, name := range cfg.Keys() {
		mc, ok := cfg[name].(*core.MultiChoiceField)
		if !ok {
			m.rows = append(m.rows, row{field: name})
			continue
		}
		choices := choicesOf(mc)
		if len(choices) == 0 {
			m.rows = append(m.rows, row{field: name})
			continue
		}
		for _, c := range choices {
			m.rows = append(m.rows, row{field: name, choice: c})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// choicesOf lists the declared options followed by selected values the
// model does not declare.
func choicesOf(mc *core.MultiChoiceField) []string {
	choices := mc.Options()
	known := make(map[string]bool, len(choices))
	for _, c := range choices {
		known[c] = true
	}
	for _, k := range mc.TempKeys() {
		if !known[k] {
			choices = append(choices, k)
			known[k] = true
		}
	}
	return choices
}

func (m Model) currentRow() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}
