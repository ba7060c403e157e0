package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent  = lipgloss.Color("208")
	ColorUser    = lipgloss.Color("39")
	ColorBot     = lipgloss.Color("42")
	ColorDim     = lipgloss.Color("240")
	ColorWarning = lipgloss.Color("214")

	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StyleDimmed    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleUser      = lipgloss.NewStyle().Bold(true).Foreground(ColorUser)
	StyleBot       = lipgloss.NewStyle().Bold(true).Foreground(ColorBot)
	StyleThinking  = lipgloss.NewStyle().Italic(true).Foreground(ColorWarning)
	StylePrompt    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	StyleStatusBar = lipgloss.NewStyle().Foreground(ColorDim)
)
