package nudge

import (
	"fmt"
	"strings"

	"github.com/colonyops/nudge/internal/core/task"
)

// minRefLen is the shortest id prefix accepted on the command line.
const minRefLen = 4

// resolveRef matches ref against task ids: an exact match wins, otherwise a
// unique prefix or suffix of at least minRefLen characters. Listings show
// the suffix (see ShortID).
func resolveRef(tasks []task.Task, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, &task.ValidationError{Field: "id", Message: "must not be empty"}
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if len(ref) >= minRefLen && (strings.HasPrefix(t.ID, ref) || strings.HasSuffix(t.ID, ref)) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, &task.ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("%q matches %d tasks, use more characters", ref, len(matches)),
		}
	}
}

// ShortID returns the abbreviated id shown in listings.
func ShortID(id string) string {
	// UUIDv7 ids share their leading timestamp bits; the tail is random.
	if len(id) == 36 && id[8] == '-' {
		return id[len(id)-8:]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
