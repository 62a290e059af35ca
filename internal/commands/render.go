package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/nudge/internal/core/task"
	"github.com/colonyops/nudge/internal/nudge"
)

// Status filters accepted by ls.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusAll       = "all"
)

type taskFilter func(task.Task) bool

func statusFilter(status string) (taskFilter, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", StatusAll:
		return func(task.Task) bool { return true }, nil
	case StatusPending:
		return func(t task.Task) bool { return !t.Completed }, nil
	case StatusCompleted:
		return func(t task.Task) bool { return t.Completed }, nil
	default:
		return nil, fmt.Errorf("invalid status %q: must be one of pending, completed, all", status)
	}
}

// matchFilter matches task text against a case-insensitive glob. A pattern
// without glob characters matches as a substring.
func matchFilter(pattern string) (taskFilter, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return func(task.Task) bool { return true }, nil
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid match pattern %q", pattern)
	}

	return func(t task.Task) bool {
		ok, _ := doublestar.Match(pattern, strings.ToLower(t.Text))
		return ok
	}, nil
}

func filterTasks(tasks []task.Task, filters ...taskFilter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
next:
	for _, t := range tasks {
		for _, f := range filters {
			if !f(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// formatSchedule renders a task's date/time. Complete due instants use
// layout; a lone date or time falls back to the task's own rendering.
func formatSchedule(t task.Task, loc *time.Location, layout string) string {
	if due, ok := t.DueAt(loc); ok && layout != "" {
		return due.Format(layout)
	}
	return t.Schedule()
}

// taskJSON is the ls --json line format.
type taskJSON struct {
	ID        string `json:"id"`
	Short     string `json:"short_id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
	Overdue   bool   `json:"overdue"`
	Due       string `json:"due,omitempty"`
}

func toJSON(t task.Task, now time.Time) taskJSON {
	out := taskJSON{
		ID:        t.ID,
		Short:     nudge.ShortID(t.ID),
		Text:      t.Text,
		Date:      t.Date,
		Time:      t.Time,
		Completed: t.Completed,
		Overdue:   t.IsOverdue(now),
	}
	if due, ok := t.DueAt(now.Location()); ok {
		out.Due = due.Format(time.RFC3339)
	}
	return out
}

// markdownChecklist renders tasks as a GitHub-style task list for glamour.
func markdownChecklist(title string, tasks []task.Task, now time.Time, layout string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(tasks) == 0 {
		b.WriteString("_Nothing to do._\n")
		return b.String()
	}

	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s", mark, escapeMarkdown(t.Text))
		if s := formatSchedule(t, now.Location(), layout); s != "" {
			fmt.Fprintf(&b, " _%s_", s)
		}
		if t.IsOverdue(now) {
			b.WriteString(" **overdue**")
		}
		fmt.Fprintf(&b, " `%s`\n", nudge.ShortID(t.ID))
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
