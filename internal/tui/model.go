package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/nudge/internal/core/task"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateAdding
	stateConfirming
)

// Tasks is the task service the TUI drives.
type Tasks interface {
	List() []task.Task
	Add(ctx context.Context, text, date, clock string) (task.Task, error)
	Toggle(ctx context.Context, id string) (task.Task, error)
	Delete(ctx context.Context, id string) (bool, error)
	ClearCompleted(ctx context.Context) ([]string, error)
}

// Options configures the TUI.
type Options struct {
	// DateFormat is the Go layout for due instants.
	DateFormat string
	// Interval is the reminder scan period, shown in the status line.
	Interval time.Duration
	// Now overrides time.Now. Used by tests.
	Now func() time.Time
}

// Model is the main Bubble Tea model.
type Model struct {
	tasks   Tasks
	events  *EventBuffer
	alerter *BannerAlerter
	opts    Options

	list   []task.Task
	cursor int
	state  UIState
	form   AddForm
	modal  Modal

	// banners queues reminder alerts; the first one is shown.
	banners []alertMsg

	flash     *FlashStore
	blinking  bool
	toasts    *ToastController
	toastView *ToastView

	keys keyMap
	help help.Model

	width  int
	height int
}

// mutationDoneMsg reports the outcome of a task mutation run off the UI goroutine.
type mutationDoneMsg struct {
	info string
	err  error
}

// New creates a model showing the current task list. events must be the
// buffer the Presenter and BannerAlerter feed.
func New(tasks Tasks, events *EventBuffer, alerter *BannerAlerter, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// pick up a theme applied after package init
	refreshStyles()

	toasts := NewToastController()

	return Model{
		tasks:     tasks,
		events:    events,
		alerter:   alerter,
		opts:      opts,
		list:      tasks.List(),
		flash:     NewFlashStore(),
		toasts:    toasts,
		toastView: NewToastView(toasts),
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
}

// Init starts listening for bus events.
func (m Model) Init() tea.Cmd {
	return m.events.WaitForSignal()
}

func (m Model) quit() (Model, tea.Cmd) {
	if m.alerter != nil {
		m.alerter.Close()
	}
	for _, b := range m.banners {
		close(b.done)
	}
	m.banners = nil
	return m, tea.Quit
}

func (m Model) selected() (task.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.list) {
		return task.Task{}, false
	}
	return m.list[m.cursor], true
}

func (m Model) indexOf(id string) int {
	for i, t := range m.list {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.list) {
		m.cursor = len(m.list) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) pushToast(level ToastLevel, msg string) tea.Cmd {
	m.toasts.Push(level, msg)
	if m.toasts.Ticking() {
		return nil
	}
	m.toasts.SetTicking(true)
	return scheduleToastTick()
}

func (m Model) mutate(info string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{info: info}
	}
}

func (m Model) statusLine() string {
	pending := 0
	for _, t := range m.list {
		if !t.Completed {
			pending++
		}
	}
	s := fmt.Sprintf("%d tasks %s %d pending", len(m.list), iconDot, pending)
	if m.opts.Interval > 0 {
		s += fmt.Sprintf(" %s reminders checked every %s", iconDot, m.opts.Interval)
	}
	return s
}
