// Package eventbus provides a typed publish/subscribe event bus that carries
// task and alarm state changes to presentation adapters.
package eventbus

import (
	"time"

	"github.com/colonyops/nudge/internal/core/task"
)

// Event names a kind of bus message.
type Event string

// Keep list sorted A-Z.
const (
	EventAlarmFired    Event = "alarm.fired"
	EventTaskCreated   Event = "task.created"
	EventTaskDeleted   Event = "task.deleted"
	EventTaskToggled   Event = "task.toggled"
	EventTasksRestored Event = "tasks.restored"
)

// AlarmFiredPayload is emitted when a task's reminder fires.
type AlarmFiredPayload struct {
	Task    task.Task
	FiredAt time.Time
}

// TaskCreatedPayload is emitted when a task is added.
type TaskCreatedPayload struct {
	Task task.Task
}

// TaskDeletedPayload is emitted when a task is deleted or cleared.
type TaskDeletedPayload struct {
	TaskID string
}

// TaskToggledPayload is emitted when a task's completion flag changes.
// Task holds the state after the change.
type TaskToggledPayload struct {
	Task task.Task
}

// TasksRestoredPayload is emitted when the full list is reloaded from storage.
type TasksRestoredPayload struct {
	Tasks []task.Task
}

// PublishAlarmFired enqueues an alarm.fired event.
func (bus *EventBus) PublishAlarmFired(p AlarmFiredPayload) { bus.send(EventAlarmFired, p) }

// PublishTaskCreated enqueues a task.created event.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) { bus.send(EventTaskCreated, p) }

// PublishTaskDeleted enqueues a task.deleted event.
func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) { bus.send(EventTaskDeleted, p) }

// PublishTaskToggled enqueues a task.toggled event.
func (bus *EventBus) PublishTaskToggled(p TaskToggledPayload) { bus.send(EventTaskToggled, p) }

// PublishTasksRestored enqueues a tasks.restored event.
func (bus *EventBus) PublishTasksRestored(p TasksRestoredPayload) { bus.send(EventTasksRestored, p) }

// SubscribeAlarmFired registers fn for alarm.fired events.
func (bus *EventBus) SubscribeAlarmFired(fn func(AlarmFiredPayload)) {
	bus.subscribe(EventAlarmFired, func(p any) { fn(p.(AlarmFiredPayload)) })
}

// SubscribeTaskCreated registers fn for task.created events.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.subscribe(EventTaskCreated, func(p any) { fn(p.(TaskCreatedPayload)) })
}

// SubscribeTaskDeleted registers fn for task.deleted events.
func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.subscribe(EventTaskDeleted, func(p any) { fn(p.(TaskDeletedPayload)) })
}

// SubscribeTaskToggled registers fn for task.toggled events.
func (bus *EventBus) SubscribeTaskToggled(fn func(TaskToggledPayload)) {
	bus.subscribe(EventTaskToggled, func(p any) { fn(p.(TaskToggledPayload)) })
}

// SubscribeTasksRestored registers fn for tasks.restored events.
func (bus *EventBus) SubscribeTasksRestored(fn func(TasksRestoredPayload)) {
	bus.subscribe(EventTasksRestored, func(p any) { fn(p.(TasksRestoredPayload)) })
}
