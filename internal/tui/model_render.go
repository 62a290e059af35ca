package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/internal/core/task"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("nudge"))
	b.WriteString("\n\n")
	b.WriteString(m.renderList())
	b.WriteString("\n")

	if m.state == stateAdding {
		b.WriteString("\n")
		b.WriteString(m.form.View())
		b.WriteString("\n")
	}

	if toasts := m.toastView.View(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	view := b.String()

	switch {
	case len(m.banners) > 0:
		return NewBanner(alarm.DefaultTitle, m.banners[0].Message).Overlay(view, m.width, m.height)
	case m.state == stateConfirming:
		return m.modal.Overlay(view, m.width, m.height)
	}
	return view
}

func (m Model) renderList() string {
	if len(m.list) == 0 {
		return styles.HelpStyle.Render("  No tasks. Press a to add one.")
	}

	now := m.opts.Now()
	lines := make([]string, 0, len(m.list))
	for i, t := range m.list {
		lines = append(lines, m.renderTask(t, i == m.cursor, now))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTask(t task.Task, selected bool, now time.Time) string {
	cursor := "  "
	if selected {
		cursor = styles.SelectedStyle.Render(iconCursor) + " "
	}

	icon := styles.IconPending
	textStyle := styles.TaskTextStyle
	switch {
	case t.Completed:
		icon = styles.IconDone
		textStyle = styles.TaskDoneStyle
	case m.flash.Lit(t.ID):
		icon = styles.IconBell
		textStyle = styles.TaskFiredStyle
	case t.IsOverdue(now):
		textStyle = styles.TaskOverdueStyle
	}
	if selected && !t.Completed && !m.flash.Lit(t.ID) {
		textStyle = textStyle.Bold(true)
	}

	line := cursor + icon + " " + textStyle.Render(t.Text)

	if due := m.schedule(t, now.Location()); due != "" {
		line += "  " + styles.TaskDueStyle.Render(styles.IconClock+" "+due)
	}

	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m Model) schedule(t task.Task, loc *time.Location) string {
	if due, ok := t.DueAt(loc); ok && m.opts.DateFormat != "" {
		return due.Format(m.opts.DateFormat)
	}
	return t.Schedule()
}
