package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs every publish at debug level, and drops and
// subscriber panics at warn and error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		describe(logger.Debug(), event, payload).Msg("event published")
	})

	bus.OnDrop(func(event Event, payload any) {
		describe(logger.Warn(), event, payload).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		describe(logger.Error(), event, payload).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func describe(e *zerolog.Event, event Event, payload any) *zerolog.Event {
	e = e.Str("event", string(event))

	switch p := payload.(type) {
	case AlarmFiredPayload:
		e = e.Str("task_id", p.Task.ID).Time("fired_at", p.FiredAt)
	case TaskCreatedPayload:
		e = e.Str("task_id", p.Task.ID)
	case TaskToggledPayload:
		e = e.Str("task_id", p.Task.ID).Bool("completed", p.Task.Completed)
	case TaskDeletedPayload:
		e = e.Str("task_id", p.TaskID)
	case TasksRestoredPayload:
		e = e.Int("tasks", len(p.Tasks))
	}
	return e
}
