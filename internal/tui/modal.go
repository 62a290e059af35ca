package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/nudge/internal/core/styles"
)

// Modal is a centered dialog. A confirmation has Confirm/Cancel buttons; a
// banner has a single Dismiss button and is used for reminder alerts.
type Modal struct {
	title           string
	message         string
	visible         bool
	banner          bool
	confirmSelected bool // true = confirm button selected, false = cancel button selected
}

// NewModal creates a confirmation modal with the given title and message.
func NewModal(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		confirmSelected: true, // default to confirm button
	}
}

// NewBanner creates an alert banner that can only be dismissed.
func NewBanner(title, message string) Modal {
	return Modal{
		title:           title,
		message:         message,
		visible:         true,
		banner:          true,
		confirmSelected: true,
	}
}

// ToggleSelection switches the selected button. Banners have only one.
func (m *Modal) ToggleSelection() {
	if m.banner {
		return
	}
	m.confirmSelected = !m.confirmSelected
}

// ConfirmSelected returns true if the confirm button is selected.
func (m Modal) ConfirmSelected() bool {
	return m.confirmSelected
}

// Visible returns whether the modal should be displayed.
func (m Modal) Visible() bool {
	return m.visible
}

// Message returns the modal body.
func (m Modal) Message() string {
	return m.message
}

// Overlay renders the modal centered over the screen, replacing background.
func (m Modal) Overlay(background string, width, height int) string {
	if !m.visible {
		return background
	}

	var buttons, help, title string
	if m.banner {
		title = styles.IconBell + " " + m.title
		buttons = modalButtonSelectedStyle.Render("Dismiss")
		help = "enter dismiss"
	} else {
		title = m.title
		var confirmBtn, cancelBtn string
		if m.confirmSelected {
			confirmBtn = modalButtonSelectedStyle.Render("Confirm")
			cancelBtn = modalButtonStyle.Render("Cancel")
		} else {
			confirmBtn = modalButtonStyle.Render("Confirm")
			cancelBtn = modalButtonSelectedStyle.Render("Cancel")
		}
		buttons = lipgloss.JoinHorizontal(lipgloss.Center, confirmBtn, "  ", cancelBtn)
		help = "←/→ select  enter confirm  esc cancel"
	}

	frame, titleStyle := modalStyle, modalTitleStyle
	if m.banner {
		frame, titleStyle = styles.BannerStyle, styles.BannerTitleStyle
	}

	buttonRow := lipgloss.NewStyle().MarginTop(1).Render(buttons)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(title),
		"",
		m.message,
		buttonRow,
		modalHelpStyle.Render(help),
	)

	if width <= 0 || height <= 0 {
		return frame.Render(content)
	}

	return lipgloss.Place(
		width, height,
		lipgloss.Center, lipgloss.Center,
		frame.Render(content),
	)
}
