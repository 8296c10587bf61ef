package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sahilm/fuzzy"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

// ModelPicker filters hook models by fuzzy name match.
type ModelPicker struct {
	models   []core.HookModel
	filtered []pickerItem
	input    textinput.Model
	selected int
}

type pickerItem struct {
	model   core.HookModel
	matched []int
}

// NewModelPicker creates a picker over models.
func NewModelPicker(models []core.HookModel) *ModelPicker {
	ti := textinput.New()
	ti.Placeholder = "Filter models..."
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	p := &ModelPicker{models: models, input: ti}
	p.refilter()
	return p
}

// Input exposes the filter input for updates.
func (p *ModelPicker) Input() *textinput.Model {
	return &p.input
}

// SetQuery replaces the filter text.
func (p *ModelPicker) SetQuery(q string) {
	p.input.SetValue(q)
	p.refilter()
}

// Refilter recomputes matches after the input changed.
func (p *ModelPicker) Refilter() {
	p.refilter()
}

func (p *ModelPicker) refilter() {
	query := strings.TrimSpace(p.input.Value())
	p.filtered = p.filtered[:0]

	if query == "" {
		for _, m := range p.models {
			p.filtered = append(p.filtered, pickerItem{model: m})
		}
	} else {
		names := make([]string, len(p.models))
		for i, m := range p.models {
			names[i] = m.Name
		}
		for _, match := range fuzzy.Find(query, names) {
			p.filtered = append(p.filtered, pickerItem{
				model:   p.models[match.Index],
				matched: match.MatchedIndexes,
			})
		}
	}

	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Move shifts the selection by delta, clamped to the list.
func (p *ModelPicker) Move(delta int) {
	p.selected += delta
	if p.selected >= len(p.filtered) {
		p.selected = len(p.filtered) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Selected returns the highlighted model.
func (p *ModelPicker) Selected() (core.HookModel, bool) {
	if len(p.filtered) == 0 {
		return core.HookModel{}, false
	}
	return p.filtered[p.selected].model, true
}

// Matches returns the names of the models currently listed.
func (p *ModelPicker) Matches() []string {
	names := make([]string, len(p.filtered))
	for i, item := range p.filtered {
		names[i] = item.model.Name
	}
	return names
}

// View renders the filter and the model list.
func (p *ModelPicker) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	if len(p.filtered) == 0 {
		b.WriteString(MutedStyle.Render("  no matching model"))
		return b.String()
	}
	for i, item := range p.filtered {
		line := highlight(item.model.Name, item.matched)
		if item.model.Type != "" {
			line += MutedStyle.Render("  " + item.model.Type)
		}
		if i == p.selected {
			b.WriteString(SelectedRowStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func highlight(s string, idx []int) string {
	if len(idx) == 0 {
		return s
	}
	hit := make(map[int]bool, len(idx))
	for _, i := range idx {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range []rune(s) {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
