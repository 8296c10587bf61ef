package tui

import (
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

const maxValueWidth = 48

// View renders the editor.
func (m Model) View() string {
	var b strings.Builder
	st := m.editor.State()

	b.WriteString(m.renderHeader(st.ActiveModel))
	b.WriteString("\n")

	for _, w := range m.warnings {
		b.WriteString(WarnStyle.Render("! " + w))
		b.WriteString("\n")
	}
	if st.JSONIsInvalid {
		b.WriteString(BannerStyle.Render("Invalid JSON in configuration"))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeLoading:
		b.WriteString(m.spinner.View() + " loading hook models...\n")
	case modePicker:
		b.WriteString(BoxStyle.Render(m.picker.View()))
		b.WriteString("\n")
	case modeHelp:
		b.WriteString(RenderMarkdown(helpMarkdown(st.ActiveModel), m.width-4))
	default:
		b.WriteString(m.renderFields(st.ShowConfigSection))
		if in := m.editor.Config()[core.IntegrationFieldKey]; in != nil {
			name := in.Value()
			if name == "" {
				name = "none"
			}
			b.WriteString("\n" + FieldNameStyle.Render("integration") + FieldValueStyle.Render(name) +
				MutedStyle.Render("  (i to change)") + "\n")
		}
	}

	if m.status != "" {
		style := StatusStyle
		if m.statusErr {
			style = ErrorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}
	b.WriteString(FooterStyle.Render(m.footer()))
	return b.String()
}

func (m Model) renderHeader(model *core.HookModel) string {
	hc := m.editor.Context()
	where := hc.ProjectKey
	if hc.WorkflowName != "" {
		where += "/" + hc.WorkflowName
	}
	if hc.NodeName != "" {
		where += "/" + hc.NodeName
	} else if hc.NodeID != 0 {
		where += fmt.Sprintf("/%d", hc.NodeID)
	}

	title := "hookcfg"
	if where != "" {
		title += " · " + where
	}
	if model != nil {
		title += " · " + model.Name
	}
	if hc.Readonly {
		title += " (read-only)"
	}
	return HeaderStyle.Render(title)
}

func (m Model) renderFields(show bool) string {
	if !show || len(m.rows) == 0 {
		return MutedStyle.Render("  no configuration, press m to choose a hook model") + "\n"
	}

	cfg := m.editor.Config()
	var b strings.Builder
	prev := ""
	for i, r := range m.rows {
		f, ok := cfg[r.field]
		if !ok {
			continue
		}
		name := ""
		if r.field != prev {
			name = r.field
		}
		prev = r.field

		var value string
		switch {
		case m.mode == modeEdit && r.field == m.editing:
			value = m.input.View()
		case r.isChoice():
			mc, _ := f.(*core.MultiChoiceField)
			if mc != nil && mc.Selected(r.choice) {
				value = CheckedStyle.Render("[x] ") + r.choice
			} else {
				value = "[ ] " + r.choice
			}
		case f.Type() == core.FieldTypeMultiple:
			value = MutedStyle.Render("(no choices)")
		default:
			value = FieldValueStyle.Render(displayValue(f.Value()))
		}
		if !f.IsConfigurable() {
			value += MutedStyle.Render("  (fixed)")
		}

		line := FieldNameStyle.Render(name) + value
		if i == m.cursor && m.mode != modeEdit {
			b.WriteString(SelectedRowStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) footer() string {
	switch m.mode {
	case modePicker:
		return "type to filter · ↑/↓ move · enter select · esc back"
	case modeEdit:
		return "enter apply · esc cancel"
	case modeHelp:
		return "? or esc to close"
	}
	return "enter edit · space toggle · m model · i integration · y copy · s save · ? help · q quit"
}

// displayValue flattens v to one line of bounded width.
func displayValue(v string) string {
	v = strings.ReplaceAll(v, "\n", "⏎")
	r := []rune(v)
	if len(r) > maxValueWidth {
		return string(r[:maxValueWidth-1]) + "…"
	}
	if v == "" {
		return MutedStyle.Render("(empty)")
	}
	return v
}
