package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modePicker:
		return m.handlePickerKey(msg)
	case modeEdit:
		return m.handleEditKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			m.mode = m.prevMode
		}
		return m, nil
	case modeLoading:
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}
	return m.handleFieldKey(msg)
}

func (m Model) handleFieldKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "enter":
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		if r.isChoice() {
			m.toggle(r)
			return m, nil
		}
		m.startEdit(r.field)
	case " ":
		if r, ok := m.currentRow(); ok && r.isChoice() {
			m.toggle(r)
		}
	case "m":
		models := m.editor.State().Models
		if len(models) == 0 {
			m.setError("no hook model available")
			return m, nil
		}
		m.openPicker(models)
	case "i":
		m.cycleIntegration()
	case "y":
		return m, copyConfig(m.editor.Config())
	case "s", "ctrl+s":
		return m.trySave()
	case "?":
		m.prevMode = m.mode
		m.mode = modeHelp
	}
	return m, nil
}

func (m *Model) toggle(r row) {
	cfg := m.editor.Config()
	mc, ok := cfg[r.field].(*core.MultiChoiceField)
	if !ok {
		return
	}
	if err := m.editor.ToggleMultiChoice(r.field, r.choice, !mc.Selected(r.choice)); err != nil {
		m.setError(err.Error())
		return
	}
	m.rebuildRows()
}

func (m *Model) startEdit(field string) {
	f, ok := m.editor.Config()[field]
	if !ok {
		return
	}
	if !f.IsConfigurable() {
		m.setError(fmt.Sprintf("%s is not configurable", field))
		return
	}
	switch f.Type() {
	case core.FieldTypeMultiple:
		m.setError(fmt.Sprintf("%s has no choices to toggle", field))
		return
	case core.FieldTypeIntegration:
		m.setStatus("press i to pick an integration")
		return
	case core.FieldTypeJSON:
		if m.editor.Readonly() {
			m.setError(fmt.Sprintf("%s is read-only", field))
			return
		}
	}
	m.editing = field
	m.editType = f.Type()
	m.input.Prompt = field + ": "
	m.input.SetValue(f.Value())
	m.input.CursorEnd()
	m.input.Focus()
	m.mode = modeEdit
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if err := m.editor.SetFieldValue(m.editing, m.input.Value()); err != nil {
			m.setError(err.Error())
		}
		m.endEdit()
		return m, nil
	case "esc":
		// restore the flag for the stored text
		if m.editType == core.FieldTypeJSON {
			if _, err := m.editor.ValidateField(m.editing); err != nil {
				m.setError(err.Error())
			}
		}
		m.endEdit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.editType == core.FieldTypeJSON {
		m.editor.ValidateRawText(m.input.Value())
	}
	return m, cmd
}

func (m *Model) endEdit() {
	m.input.Blur()
	m.editing = ""
	m.editType = ""
	m.mode = modeFields
	m.rebuildRows()
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.picker = nil
		m.mode = modeFields
		return m, nil
	case "up", "ctrl+p":
		m.picker.Move(-1)
		return m, nil
	case "down", "ctrl+n":
		m.picker.Move(1)
		return m, nil
	case "enter":
		model, ok := m.picker.Selected()
		if !ok {
			return m, nil
		}
		m.editor.SelectSchema(model)
		m.picker = nil
		m.mode = modeFields
		m.cursor = 0
		m.rebuildRows()
		return m, nil
	}

	input := m.picker.Input()
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	m.picker.Refilter()
	return m, cmd
}

// cycleIntegration applies the integration after the active one.
func (m *Model) cycleIntegration() {
	if _, ok := m.editor.Config()[core.IntegrationFieldKey]; !ok {
		m.setError("this hook model takes no integration")
		return
	}
	st := m.editor.State()
	if len(st.AvailableIntegrations) == 0 {
		m.setError("no integration available for hooks")
		return
	}
	next := 0
	if st.ActiveIntegration != nil {
		for i, in := range st.AvailableIntegrations {
			if in.Name == st.ActiveIntegration.Name {
				next = (i + 1) % len(st.AvailableIntegrations)
				break
			}
		}
	}
	if err := m.editor.ApplyIntegrationByName(st.AvailableIntegrations[next].Name); err != nil {
		m.setError(err.Error())
		return
	}
	m.rebuildRows()
}

func (m Model) trySave() (tea.Model, tea.Cmd) {
	if m.save == nil {
		m.setError("saving is disabled")
		return m, nil
	}
	st := m.editor.State()
	if st.JSONIsInvalid {
		m.setError("fix the invalid JSON before saving")
		return m, nil
	}
	if st.ActiveModel == nil && !st.IsExistingEntry {
		m.setError("choose a hook model first")
		return m, nil
	}
	m.setStatus("saving...")
	return m, saveHook(m.save, m.editor.Hook())
}
