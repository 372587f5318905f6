package cli

import "github.com/charmbracelet/lipgloss"

// Color scheme for CLI output.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF005F")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Italic(true)
)
