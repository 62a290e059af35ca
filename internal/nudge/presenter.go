package nudge

import (
	"time"

	"github.com/colonyops/nudge/internal/core/eventbus"
	"github.com/colonyops/nudge/internal/core/task"
)

// Presenter renders task state for a user. Methods are called from the
// event bus goroutine, one at a time, in the order changes happened.
type Presenter interface {
	// Render shows a task that was created or restored.
	Render(t task.Task)
	// Reflect shows a task's new completion state.
	Reflect(t task.Task, completed bool)
	// Remove drops a task from view.
	Remove(id string)
	// Emphasize draws attention to a task whose reminder fired.
	Emphasize(t task.Task, firedAt time.Time)
}

// Resetter is implemented by presenters that clear their view before a
// restored list is rendered.
type Resetter interface {
	Reset()
}

// BindPresenter subscribes p to the task and alarm events on bus.
func BindPresenter(bus *eventbus.EventBus, p Presenter) {
	bus.SubscribeTaskCreated(func(e eventbus.TaskCreatedPayload) {
		p.Render(e.Task)
	})
	bus.SubscribeTaskToggled(func(e eventbus.TaskToggledPayload) {
		p.Reflect(e.Task, e.Task.Completed)
	})
	bus.SubscribeTaskDeleted(func(e eventbus.TaskDeletedPayload) {
		p.Remove(e.TaskID)
	})
	bus.SubscribeTasksRestored(func(e eventbus.TasksRestoredPayload) {
		if r, ok := p.(Resetter); ok {
			r.Reset()
		}
		for _, t := range e.Tasks {
			p.Render(t)
		}
	})
	bus.SubscribeAlarmFired(func(e eventbus.AlarmFiredPayload) {
		p.Emphasize(e.Task, e.FiredAt)
	})
}
