package nudge

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/nudge/internal/core/eventbus"
	"github.com/colonyops/nudge/internal/core/eventbus/testbus"
	"github.com/colonyops/nudge/internal/core/task"
)

type recordingPresenter struct {
	mu    sync.Mutex
	calls []string
}

func (p *recordingPresenter) add(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, s)
}

func (p *recordingPresenter) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *recordingPresenter) Render(t task.Task) { p.add("render " + t.ID) }
func (p *recordingPresenter) Reflect(t task.Task, completed bool) {
	p.add(fmt.Sprintf("reflect %s %t", t.ID, completed))
}
func (p *recordingPresenter) Remove(id string) { p.add("remove " + id) }
func (p *recordingPresenter) Emphasize(t task.Task, _ time.Time) {
	p.add("emphasize " + t.ID)
}
func (p *recordingPresenter) Reset() { p.add("reset") }

func TestBindPresenter(t *testing.T) {
	tb := testbus.New(t)
	p := &recordingPresenter{}
	BindPresenter(tb.EventBus, p)

	a := task.Task{ID: "a", Text: "a"}
	b := task.Task{ID: "b", Text: "b"}

	tb.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: a})
	tb.PublishAlarmFired(eventbus.AlarmFiredPayload{Task: a, FiredAt: testNow})
	a.Completed = true
	tb.PublishTaskToggled(eventbus.TaskToggledPayload{Task: a})
	tb.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "a"})
	tb.PublishTasksRestored(eventbus.TasksRestoredPayload{Tasks: []task.Task{b}})

	assert.True(t, tb.WaitForCount(eventbus.EventTasksRestored, 1, time.Second))
	assert.Eventually(t, func() bool { return len(p.Calls()) == 6 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{
		"render a",
		"emphasize a",
		"reflect a true",
		"remove a",
		"reset",
		"render b",
	}, p.Calls())
}
