package alarm

import (
	"time"

	"github.com/colonyops/nudge/pkg/kv"
)

// TriggerSet records which task ids have already fired this session and when.
// Entries reference tasks by id only; an entry whose task no longer exists is
// inert and is removed by Prune.
type TriggerSet struct {
	fired *kv.Store[string, time.Time]
}

// NewTriggerSet returns an empty trigger set.
func NewTriggerSet() *TriggerSet {
	return &TriggerSet{fired: kv.New[string, time.Time]()}
}

// Mark records id as fired at the given instant. It returns false when id was
// already recorded, which makes firing idempotent.
func (s *TriggerSet) Mark(id string, at time.Time) bool {
	return s.fired.SetIfAbsent(id, at)
}

// Has reports whether id has fired since it was last armed.
func (s *TriggerSet) Has(id string) bool {
	return s.fired.Has(id)
}

// FiredAt returns when id fired.
func (s *TriggerSet) FiredAt(id string) (time.Time, bool) {
	return s.fired.Get(id)
}

// Clear forgets id and reports whether it was present.
func (s *TriggerSet) Clear(id string) bool {
	return s.fired.Delete(id)
}

// Prune drops every entry whose id is not in live and returns how many were dropped.
func (s *TriggerSet) Prune(live map[string]struct{}) int {
	return s.fired.Retain(func(id string, _ time.Time) bool {
		_, ok := live[id]
		return ok
	})
}

// Len returns the number of recorded ids.
func (s *TriggerSet) Len() int {
	return s.fired.Len()
}
