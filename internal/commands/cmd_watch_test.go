package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/pkg/tuitest"
)

func newLinePresenter(buf *bytes.Buffer, jsonOut bool) *linePresenter {
	return &linePresenter{
		w:      buf,
		json:   jsonOut,
		layout: "2006-01-02 15:04",
		now:    func() time.Time { return renderNow },
	}
}

func decodeEvents(t *testing.T, buf *bytes.Buffer) []watchEvent {
	t.Helper()
	var out []watchEvent
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev watchEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		out = append(out, ev)
	}
	return out
}

func TestLinePresenter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := newLinePresenter(&buf, true)
	tasks := sampleTasks()
	firedAt := time.Date(2026, 3, 15, 9, 0, 2, 0, time.UTC)

	p.Render(tasks[2])
	p.Reflect(tasks[0], true)
	p.Emphasize(tasks[0], firedAt)
	p.Remove(tasks[1].ID)
	p.Reset()

	events := decodeEvents(t, &buf)
	require.Len(t, events, 5)

	assert.Equal(t, "render", events[0].Event)
	assert.Equal(t, "Call mom", events[0].Task.Text)

	assert.Equal(t, "reflect", events[1].Event)
	assert.True(t, events[1].Task.Completed)
	assert.False(t, events[1].Task.Overdue, "completed tasks are never overdue")

	assert.Equal(t, "fired", events[2].Event)
	assert.Equal(t, "2026-03-15T09:00:02Z", events[2].FiredAt)
	assert.True(t, events[2].Task.Overdue)

	assert.Equal(t, "remove", events[3].Event)
	assert.Equal(t, tasks[1].ID, events[3].TaskID)
	assert.Nil(t, events[3].Task)

	assert.Equal(t, watchEvent{Event: "reset"}, events[4])
}

func TestLinePresenter_Text(t *testing.T) {
	tasks := sampleTasks()

	t.Run("render", func(t *testing.T) {
		var buf bytes.Buffer
		newLinePresenter(&buf, false).Render(tasks[0])

		out := tuitest.StripANSI(buf.String())
		assert.Contains(t, out, "0000aaaa")
		assert.Contains(t, out, "Pay rent")
		assert.Contains(t, out, "2026-03-15 09:00")
	})

	t.Run("reflect", func(t *testing.T) {
		var buf bytes.Buffer
		p := newLinePresenter(&buf, false)
		p.Reflect(tasks[1], false)
		p.Reflect(tasks[0], true)

		lines := strings.Split(strings.TrimSpace(tuitest.StripANSI(buf.String())), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "reopened"))
		assert.True(t, strings.HasPrefix(lines[1], "completed"))
	})

	t.Run("remove and reset", func(t *testing.T) {
		var buf bytes.Buffer
		p := newLinePresenter(&buf, false)
		p.Remove(tasks[2].ID)
		p.Reset()

		out := tuitest.StripANSI(buf.String())
		assert.Contains(t, out, "removed 0000cccc")
		assert.Contains(t, out, "task list reloaded")
	})

	t.Run("emphasize", func(t *testing.T) {
		var buf bytes.Buffer
		newLinePresenter(&buf, false).Emphasize(tasks[0], renderNow)

		out := tuitest.StripANSI(buf.String())
		assert.Contains(t, out, "due")
		assert.Contains(t, out, "Pay rent")
	})
}
