package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
)

// Messages delivered from the event bus to the model.
type (
	taskRenderedMsg  struct{ Task task.Task }
	taskReflectedMsg struct{ Task task.Task }
	taskRemovedMsg   struct{ ID string }
	listResetMsg     struct{}
	taskFiredMsg     struct {
		Task    task.Task
		FiredAt time.Time
	}
	// alertMsg carries a blocking reminder alert; closing done releases
	// the waiting Alert call.
	alertMsg struct {
		Message string
		done    chan struct{}
	}
	drainEventsMsg struct{}
)

// EventBuffer buffers messages produced off the UI goroutine and emits
// coalesced drain signals.
type EventBuffer struct {
	mu     sync.Mutex
	msgs   []tea.Msg
	signal chan struct{}
}

// NewEventBuffer constructs a buffer for async message delivery.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{signal: make(chan struct{}, 1)}
}

// Push appends a message and emits a non-blocking drain signal.
func (b *EventBuffer) Push(msg tea.Msg) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered messages in push order and clears the buffer.
func (b *EventBuffer) Drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.msgs) == 0 {
		return nil
	}

	out := make([]tea.Msg, len(b.msgs))
	copy(out, b.msgs)
	b.msgs = b.msgs[:0]
	return out
}

// WaitForSignal blocks until there are messages ready to drain.
func (b *EventBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainEventsMsg{}
	}
}

// Presenter forwards task and alarm events into an EventBuffer.
type Presenter struct {
	buf *EventBuffer
}

var (
	_ nudge.Presenter = (*Presenter)(nil)
	_ nudge.Resetter  = (*Presenter)(nil)
)

// NewPresenter creates a Presenter feeding buf.
func NewPresenter(buf *EventBuffer) *Presenter {
	return &Presenter{buf: buf}
}

func (p *Presenter) Render(t task.Task) { p.buf.Push(taskRenderedMsg{Task: t}) }

func (p *Presenter) Reflect(t task.Task, completed bool) {
	t.Completed = completed
	p.buf.Push(taskReflectedMsg{Task: t})
}

func (p *Presenter) Remove(id string) { p.buf.Push(taskRemovedMsg{ID: id}) }

func (p *Presenter) Emphasize(t task.Task, firedAt time.Time) {
	p.buf.Push(taskFiredMsg{Task: t, FiredAt: firedAt})
}

func (p *Presenter) Reset() { p.buf.Push(listResetMsg{}) }

// BannerAlerter shows reminder alerts as a modal banner. Alert blocks until
// the banner is dismissed, the context ends or the alerter is closed.
type BannerAlerter struct {
	buf       *EventBuffer
	closed    chan struct{}
	closeOnce sync.Once
}

var _ alarm.Alerter = (*BannerAlerter)(nil)

// NewBannerAlerter creates an alerter feeding buf.
func NewBannerAlerter(buf *EventBuffer) *BannerAlerter {
	return &BannerAlerter{buf: buf, closed: make(chan struct{})}
}

func (a *BannerAlerter) Alert(ctx context.Context, message string) error {
	select {
	case <-a.closed:
		return nil
	default:
	}

	done := make(chan struct{})
	a.buf.Push(alertMsg{Message: message, done: done})

	select {
	case <-done:
		return nil
	case <-a.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases every pending and future Alert call.
func (a *BannerAlerter) Close() {
	a.closeOnce.Do(func() { close(a.closed) })
}
