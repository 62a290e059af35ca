// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	IDStyle            lipgloss.Style
	WarningStyle       lipgloss.Style
	ErrorStyle         lipgloss.Style
	SuccessStyle       lipgloss.Style

	// Task states.
	TaskTextStyle    lipgloss.Style
	TaskDoneStyle    lipgloss.Style
	TaskDueStyle     lipgloss.Style
	TaskOverdueStyle lipgloss.Style
	TaskFiredStyle   lipgloss.Style

	// TUI shared styles.
	TitleStyle            lipgloss.Style
	SelectedStyle         lipgloss.Style
	HelpStyle             lipgloss.Style
	StatusStyle           lipgloss.Style
	BannerStyle           lipgloss.Style
	BannerTitleStyle      lipgloss.Style
	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Muted)
	IDStyle = lipgloss.NewStyle().Foreground(p.Muted)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)

	TaskTextStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	TaskDoneStyle = lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true)
	TaskDueStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	TaskOverdueStyle = lipgloss.NewStyle().Foreground(p.Warning)
	TaskFiredStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Error).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	SelectedStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted)
	StatusStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	BannerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Error).
		Padding(1, 2)
	BannerTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Error)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Muted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(p.Primary).
		PaddingLeft(1)
	FormErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
}

// SetThemeByName applies a built-in theme and reports whether it exists.
func SetThemeByName(name string) bool {
	p, ok := GetPalette(name)
	if ok {
		SetTheme(p)
	}
	return ok
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
