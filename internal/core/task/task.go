// Package task defines the task domain model and the ordered in-memory task
// store that keeps itself synchronized with durable storage.
package task

import (
	"strings"
	"time"
)

const (
	// DateLayout is the stored calendar date format.
	DateLayout = "2006-01-02"
	// TimeLayout is the stored time-of-day format.
	TimeLayout = "15:04"

	timeLayoutSeconds = "15:04:05"
)

// Task is a single entry on the task list.
//
// Date and Time are kept in their stored string form; an empty string means
// the value is not set. Completed is the single source of truth for the
// completion state; presenters derive their visual state from it.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
}

// HasDate reports whether a due date is set.
func (t Task) HasDate() bool { return t.Date != "" }

// HasTime reports whether a due time is set.
func (t Task) HasTime() bool { return t.Time != "" }

// DueAt combines Date and Time into a single instant in loc. The second
// return value is false when either part is missing or unparseable, in which
// case the task has no due instant and is never eligible for alarms.
func (t Task) DueAt(loc *time.Location) (time.Time, bool) {
	if !t.HasDate() || !t.HasTime() {
		return time.Time{}, false
	}

	day, err := time.ParseInLocation(DateLayout, t.Date, loc)
	if err != nil {
		return time.Time{}, false
	}

	clock, err := parseClock(t.Time)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc), true
}

// IsOverdue reports whether the task is incomplete and its due instant is at
// or before now.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.DueAt(now.Location())
	return ok && !now.Before(due)
}

// Schedule renders the date and time for display, e.g. "Mon, Jan 2, 2006 at 3:04 PM".
// Unparseable values are rendered verbatim.
func (t Task) Schedule() string {
	var b strings.Builder

	if t.HasDate() {
		if d, err := time.Parse(DateLayout, t.Date); err == nil {
			b.WriteString(d.Format("Mon, Jan 2, 2006"))
		} else {
			b.WriteString(t.Date)
		}
	}

	if t.HasTime() {
		if b.Len() > 0 {
			b.WriteString(" at ")
		}
		if c, err := parseClock(t.Time); err == nil {
			b.WriteString(c.Format("3:04 PM"))
		} else {
			b.WriteString(t.Time)
		}
	}

	return b.String()
}

// parseClock accepts both HH:MM and HH:MM:SS.
func parseClock(s string) (time.Time, error) {
	c, err := time.Parse(TimeLayout, s)
	if err == nil {
		return c, nil
	}
	return time.Parse(timeLayoutSeconds, s)
}
