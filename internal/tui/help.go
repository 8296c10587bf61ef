package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
)

const keyHelp = `
| Key | Action |
|---|---|
| ↑/↓ j/k | move |
| enter | edit field / toggle choice |
| space | toggle choice |
| m | choose hook model |
| i | apply next integration |
| y | copy config |
| s | save and quit |
| ? | toggle help |
| q esc | quit without saving |
`

// ModelMarkdown describes a hook model as markdown.
func ModelMarkdown(m core.HookModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Name)
	if m.Description != "" {
		b.WriteString(m.Description)
		b.WriteString("\n\n")
	}

	var meta []string
	if m.Type != "" {
		meta = append(meta, "type `"+m.Type+"`")
	}
	if m.Author != "" {
		meta = append(meta, "by "+m.Author)
	}
	if m.RequiresRepository {
		meta = append(meta, "requires a repository")
	}
	if len(meta) > 0 {
		b.WriteString("_" + strings.Join(meta, ", ") + "_\n\n")
	}

	if len(m.DefaultConfig) == 0 {
		b.WriteString("No configuration.\n")
		return b.String()
	}
	b.WriteString("| Field | Type | Default |\n|---|---|---|\n")
	for _, name := range m.DefaultConfig.Keys() {
		f := m.DefaultConfig[name]
		def := f.Value()
		if mc, ok := f.(*core.MultiChoiceField); ok && len(mc.Options()) > 0 {
			def = strings.Join(mc.Options(), ", ")
		}
		def = strings.ReplaceAll(def, "|", "\\|")
		if def == "" {
			def = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", name, f.Type(), def)
	}
	return b.String()
}

// RenderMarkdown renders md for a terminal of the given width. The raw
// markdown is returned when rendering fails.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func helpMarkdown(model *core.HookModel) string {
	var b strings.Builder
	if model != nil {
		b.WriteString(ModelMarkdown(*model))
		b.WriteString("\n")
	}
	b.WriteString("## Keys\n")
	b.WriteString(keyHelp)
	return b.String()
}
