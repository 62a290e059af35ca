package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case drainEventsMsg:
		var cmds []tea.Cmd
		for _, ev := range m.events.Drain() {
			var cmd tea.Cmd
			m, cmd = m.apply(ev)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.events.WaitForSignal())
		return m, tea.Batch(cmds...)

	case blinkTickMsg:
		m.pruneFlash()
		if !m.flash.Tick() {
			m.blinking = false
			return m, nil
		}
		return m, scheduleBlinkTick()

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if !m.toasts.HasToasts() {
			m.toasts.SetTicking(false)
			return m, nil
		}
		return m, scheduleToastTick()

	case mutationDoneMsg:
		if msg.err != nil {
			return m, m.pushToast(ToastError, msg.err.Error())
		}
		if msg.info != "" {
			return m, m.pushToast(ToastInfo, msg.info)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == stateAdding {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply folds one bus event into the view.
func (m Model) apply(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskRenderedMsg:
		if i := m.indexOf(msg.Task.ID); i >= 0 {
			m.list[i] = msg.Task
		} else {
			m.list = append(m.list, msg.Task)
		}

	case taskReflectedMsg:
		if i := m.indexOf(msg.Task.ID); i >= 0 {
			m.list[i] = msg.Task
		}
		// completing stops the blink; reopening re-arms, so the next firing
		// starts it again
		m.flash.Remove(msg.Task.ID)

	case taskRemovedMsg:
		if i := m.indexOf(msg.ID); i >= 0 {
			m.list = append(m.list[:i:i], m.list[i+1:]...)
		}
		m.flash.Remove(msg.ID)
		m.clampCursor()

	case listResetMsg:
		// the restored list follows as render events
		m.list = nil
		m.cursor = 0

	case taskFiredMsg:
		if i := m.indexOf(msg.Task.ID); i < 0 || m.list[i].Completed {
			return m, nil
		}
		m.flash.Add(msg.Task.ID, msg.FiredAt)
		if !m.blinking {
			m.blinking = true
			return m, scheduleBlinkTick()
		}

	case alertMsg:
		m.banners = append(m.banners, msg)
	}

	return m, nil
}

// pruneFlash stops flashing tasks that are gone or completed, e.g. after a
// reload from another process.
func (m Model) pruneFlash() {
	if m.flash.Len() == 0 {
		return
	}
	keep := make(map[string]struct{}, len(m.list))
	for _, t := range m.list {
		if !t.Completed {
			keep[t.ID] = struct{}{}
		}
	}
	m.flash.Retain(keep)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// a reminder banner blocks everything else until dismissed
	if len(m.banners) > 0 {
		return m.handleBannerKey(msg)
	}

	switch m.state {
	case stateAdding:
		return m.handleFormKey(msg)
	case stateConfirming:
		return m.handleConfirmKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleBannerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", " ":
		close(m.banners[0].done)
		m.banners = m.banners[1:]
	}
	return m, nil
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.mutate("", func(ctx context.Context) error {
			_, err := m.tasks.Toggle(ctx, t.ID)
			return err
		})

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.mutate("Deleted "+t.Text, func(ctx context.Context) error {
			_, err := m.tasks.Delete(ctx, t.ID)
			return err
		})

	case key.Matches(msg, m.keys.Add):
		m.state = stateAdding
		m.form = NewAddForm()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		completed := 0
		for _, t := range m.list {
			if t.Completed {
				completed++
			}
		}
		if completed == 0 {
			return m, m.pushToast(ToastInfo, "No completed tasks")
		}
		m.state = stateConfirming
		m.modal = NewModal("Clear completed", pluralTasks(completed)+" will be deleted.")

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateNormal
		return m, nil
	case "tab", "down":
		return m, m.form.Next()
	case "shift+tab", "up":
		return m, m.form.Prev()
	case "enter":
		if !m.form.Validate() {
			return m, nil
		}
		text, date, clock := m.form.Values()
		m.state = stateNormal
		return m, m.mutate("", func(ctx context.Context) error {
			_, err := m.tasks.Add(ctx, text, date, clock)
			return err
		})
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
	case "esc", "q":
		m.state = stateNormal
	case "enter":
		m.state = stateNormal
		if !m.modal.ConfirmSelected() {
			return m, nil
		}
		return m, m.mutate("", func(ctx context.Context) error {
			_, err := m.tasks.ClearCompleted(ctx)
			return err
		})
	}
	return m, nil
}

func pluralTasks(n int) string {
	if n == 1 {
		return "1 completed task"
	}
	return strconv.Itoa(n) + " completed tasks"
}
