package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Normalize validates raw user input and returns the values that will be
// stored. Text is trimmed; date and time are trimmed and must parse when set.
func Normalize(text, date, clock string) (string, string, string, error) {
	text = strings.TrimSpace(text)
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if text == "" {
		return "", "", "", &ValidationError{Field: "text", Message: "task text cannot be empty"}
	}

	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return "", "", "", &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", date)}
		}
	}

	if clock != "" {
		if _, err := parseClock(clock); err != nil {
			return "", "", "", &ValidationError{Field: "time", Message: fmt.Sprintf("%q is not a HH:MM time", clock)}
		}
	}

	return text, date, clock, nil
}

// Encode serializes the full ordered list. A nil or empty list encodes as [].
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}

	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// DecodeResult is the outcome of decoding a stored task list.
type DecodeResult struct {
	Tasks   []Task
	Skipped int
}

// Decode rebuilds a task list from its stored form, preserving order.
// Individual malformed records are skipped and counted; only a payload that
// is not a JSON array at all fails with ErrCorruptRecord. Empty input decodes
// to an empty list.
func Decode(data []byte) (DecodeResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return DecodeResult{Tasks: []Task{}}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return DecodeResult{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	res := DecodeResult{Tasks: make([]Task, 0, len(raw))}
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		t, ok := decodeRecord(r)
		if !ok {
			res.Skipped++
			continue
		}
		if _, dup := seen[t.ID]; dup {
			res.Skipped++
			continue
		}
		seen[t.ID] = struct{}{}
		res.Tasks = append(res.Tasks, t)
	}

	return res, nil
}

func decodeRecord(r json.RawMessage) (Task, bool) {
	r = bytes.TrimSpace(r)
	if len(r) == 0 || r[0] != '{' {
		return Task{}, false
	}

	var t Task
	if err := json.Unmarshal(r, &t); err != nil {
		return Task{}, false
	}

	if strings.TrimSpace(t.ID) == "" {
		return Task{}, false
	}

	text, date, clock, err := Normalize(t.Text, t.Date, t.Time)
	if err != nil {
		return Task{}, false
	}

	t.Text, t.Date, t.Time = text, date, clock
	return t, true
}
