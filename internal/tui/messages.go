package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/clip"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/core"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/editor"
)

// SchemasLoadedMsg reports the end of the model fetch.
type SchemasLoadedMsg struct {
	Err error
}

// StatusMsg replaces the status line.
type StatusMsg struct {
	Text string
}

// WarningMsg adds a persistent warning.
type WarningMsg struct {
	Text string
}

type savedMsg struct {
	location string
	err      error
}

type copiedMsg struct {
	result clip.Result
	err    error
}

// SaveFunc persists the edited hook and returns where it went.
type SaveFunc func(core.Hook) (string, error)

func loadSchemas(ctx context.Context, e *editor.Editor) tea.Cmd {
	return func() tea.Msg {
		return SchemasLoadedMsg{Err: e.LoadSchemas(ctx)}
	}
}

func saveHook(save SaveFunc, h core.Hook) tea.Cmd {
	return func() tea.Msg {
		loc, err := save(h)
		return savedMsg{location: loc, err: err}
	}
}

func copyConfig(cfg core.HookConfig) tea.Cmd {
	return func() tea.Msg {
		res, err := clip.CopyConfig(cfg)
		return copiedMsg{result: res, err: err}
	}
}
