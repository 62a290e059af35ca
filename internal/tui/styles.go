// Package tui implements the Bubble Tea TUI for nudge.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/nudge/internal/core/styles"
)

// Icons and symbols.
const (
	iconDot    = "•"
	iconCursor = "▸"
)

// Styles local to the TUI, rebuilt from the active palette by refreshStyles.
var (
	modalStyle               lipgloss.Style
	modalTitleStyle          lipgloss.Style
	modalHelpStyle           lipgloss.Style
	modalButtonStyle         lipgloss.Style
	modalButtonSelectedStyle lipgloss.Style

	toastInfoStyle  lipgloss.Style
	toastErrorStyle lipgloss.Style
)

func refreshStyles() {
	p := styles.CurrentPalette

	modalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	modalHelpStyle = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)
	modalButtonStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Background(p.Surface).
		Padding(0, 2)
	modalButtonSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 2)

	toastInfoStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Foreground(p.Foreground).
		Padding(0, 1)
	toastErrorStyle = toastInfoStyle.BorderForeground(p.Error)
}

func init() {
	refreshStyles()
}
