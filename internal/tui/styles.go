package tui

import "github.com/charmbracelet/lipgloss"

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	FieldNameStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Width(22)

	FieldValueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(ColorHighlight).
				Bold(true)

	CheckedStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// BannerStyle flags invalid JSON in the config.
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorError).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(ColorSecondary)

	matchStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)
