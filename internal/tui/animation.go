package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const blinkInterval = 500 * time.Millisecond

type blinkTickMsg time.Time

func scheduleBlinkTick() tea.Cmd {
	return tea.Tick(blinkInterval, func(t time.Time) tea.Msg {
		return blinkTickMsg(t)
	})
}

// FlashStore tracks tasks whose reminder fired. Flashing tasks blink until
// they are completed, deleted or re-armed.
type FlashStore struct {
	fired map[string]time.Time // task ID -> fire time
	on    bool
}

// NewFlashStore creates an empty store.
func NewFlashStore() *FlashStore {
	return &FlashStore{fired: make(map[string]time.Time)}
}

// Add starts flashing id.
func (s *FlashStore) Add(id string, at time.Time) {
	s.fired[id] = at
	s.on = true
}

// Remove stops flashing id.
func (s *FlashStore) Remove(id string) {
	delete(s.fired, id)
}

// FiredAt returns when id fired, if it is flashing.
func (s *FlashStore) FiredAt(id string) (time.Time, bool) {
	at, ok := s.fired[id]
	return at, ok
}

// Lit reports whether id is flashing and in the highlighted phase.
func (s *FlashStore) Lit(id string) bool {
	_, ok := s.fired[id]
	return ok && s.on
}

// Tick flips the blink phase. Returns true if anything is flashing
// (for scheduling the next tick).
func (s *FlashStore) Tick() bool {
	if len(s.fired) == 0 {
		s.on = false
		return false
	}
	s.on = !s.on
	return true
}

// Retain drops every id not in keep.
func (s *FlashStore) Retain(keep map[string]struct{}) {
	for id := range s.fired {
		if _, ok := keep[id]; !ok {
			delete(s.fired, id)
		}
	}
}

// Len returns the number of flashing tasks.
func (s *FlashStore) Len() int {
	return len(s.fired)
}
