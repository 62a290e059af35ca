package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/internal/core/task"
)

var renderNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "0195a3b2-0000-7000-8000-00000000aaaa", Text: "Pay rent", Date: "2026-03-15", Time: "09:00"},
		{ID: "0195a3b2-0000-7000-8000-00000000bbbb", Text: "Buy milk", Completed: true},
		{ID: "0195a3b2-0000-7000-8000-00000000cccc", Text: "Call mom", Date: "2026-03-20"},
	}
}

func texts(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}

func TestStatusFilter(t *testing.T) {
	tests := []struct {
		status string
		want   []string
	}{
		{status: "", want: []string{"Pay rent", "Buy milk", "Call mom"}},
		{status: StatusAll, want: []string{"Pay rent", "Buy milk", "Call mom"}},
		{status: StatusPending, want: []string{"Pay rent", "Call mom"}},
		{status: "COMPLETED", want: []string{"Buy milk"}},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f, err := statusFilter(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(filterTasks(sampleTasks(), f)))
		})
	}

	_, err := statusFilter("later")
	assert.Error(t, err)
}

func TestMatchFilter(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{pattern: "", want: []string{"Pay rent", "Buy milk", "Call mom"}},
		{pattern: "rent", want: []string{"Pay rent"}},
		{pattern: "MILK", want: []string{"Buy milk"}},
		{pattern: "c*", want: []string{"Call mom"}},
		{pattern: "{pay,buy} *", want: []string{"Pay rent", "Buy milk"}},
		{pattern: "nothing", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			f, err := matchFilter(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(filterTasks(sampleTasks(), f)))
		})
	}

	_, err := matchFilter("[unclosed")
	assert.Error(t, err)
}

func TestFilterTasks_Combined(t *testing.T) {
	pending, err := statusFilter(StatusPending)
	require.NoError(t, err)
	match, err := matchFilter("*m*")
	require.NoError(t, err)

	assert.Equal(t, []string{"Call mom"}, texts(filterTasks(sampleTasks(), pending, match)))
}

func TestFormatSchedule(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, "2026-03-15 09:00", formatSchedule(tasks[0], time.UTC, "2006-01-02 15:04"))
	assert.Equal(t, "Sun, Mar 15, 2026 at 9:00 AM", formatSchedule(tasks[0], time.UTC, ""))
	assert.Equal(t, "", formatSchedule(tasks[1], time.UTC, "2006-01-02 15:04"))
	assert.Equal(t, "Fri, Mar 20, 2026", formatSchedule(tasks[2], time.UTC, "2006-01-02 15:04"))
}

func TestToJSON(t *testing.T) {
	tasks := sampleTasks()

	got := toJSON(tasks[0], renderNow)
	assert.Equal(t, "0000aaaa", got.Short)
	assert.True(t, got.Overdue)
	assert.Equal(t, "2026-03-15T09:00:00Z", got.Due)

	got = toJSON(tasks[2], renderNow)
	assert.False(t, got.Overdue)
	assert.Empty(t, got.Due)
}

func TestMarkdownChecklist(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "# Tasks\n\n_Nothing to do._\n", markdownChecklist("Tasks", nil, renderNow, ""))
	})

	t.Run("items", func(t *testing.T) {
		tasks := sampleTasks()
		tasks[1].Text = "Buy *oat* milk"

		md := markdownChecklist("Tasks", tasks, renderNow, "2006-01-02 15:04")

		assert.Contains(t, md, "- [ ] Pay rent _2026-03-15 09:00_ **overdue** `0000aaaa`\n")
		assert.Contains(t, md, "- [x] Buy \\*oat\\* milk `0000bbbb`\n")
		assert.Contains(t, md, "- [ ] Call mom _Fri, Mar 20, 2026_ `0000cccc`\n")
	})
}
