package task

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Storage is the durable home of the task list: a single keyed record
// written wholesale on every mutation and read wholesale at startup.
type Storage interface {
	// Load returns the stored record. A missing record returns nil data and no error.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored record.
	Save(ctx context.Context, data []byte) error
}

// Versioned is implemented by storages that can report when the record last
// changed. Long-running processes use it to notice writes made elsewhere.
type Versioned interface {
	Revision(ctx context.Context) (int64, error)
	// LastSaved returns the revision this process's latest Save produced.
	LastSaved() int64
}

// IDFunc generates task identifiers.
type IDFunc func() (string, error)

// NewID returns a time-ordered UUIDv7 string. Identifiers are derived from the
// creation time and are never reused.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate task id: %w", err)
	}
	return id.String(), nil
}

// RestoreResult summarizes a Restore call.
type RestoreResult struct {
	Loaded  int
	Skipped int
}

// Store is the authoritative ordered task list. Insertion order is display
// order. Every mutation persists the full list through Storage.
type Store struct {
	mu      sync.RWMutex
	tasks   []Task
	storage Storage
	newID   IDFunc
}

// NewStore creates an empty store backed by storage. Call Restore to load
// previously persisted tasks.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, newID: NewID}
}

// WithIDFunc replaces the identifier generator. Intended for tests.
func (s *Store) WithIDFunc(fn IDFunc) *Store {
	s.newID = fn
	return s
}

// Restore loads the persisted list, replacing the in-memory one. Malformed
// records are skipped. When the record is unreadable as a whole the in-memory
// list is left untouched and an error wrapping ErrCorruptRecord is returned.
func (s *Store) Restore(ctx context.Context) (RestoreResult, error) {
	data, err := s.storage.Load(ctx)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("load tasks: %w", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		return RestoreResult{}, err
	}

	s.mu.Lock()
	s.tasks = decoded.Tasks
	s.mu.Unlock()

	return RestoreResult{Loaded: len(decoded.Tasks), Skipped: decoded.Skipped}, nil
}

// Persist writes the full list to storage.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	data, err := Encode(s.tasks)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := s.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}

// Add validates the input and appends a new incomplete task with a fresh id.
// On a *ValidationError nothing is mutated. A persistence error is returned
// after the task has been added in memory.
func (s *Store) Add(ctx context.Context, text, date, clock string) (Task, error) {
	text, date, clock, err := Normalize(text, date, clock)
	if err != nil {
		return Task{}, err
	}

	id, err := s.newID()
	if err != nil {
		return Task{}, err
	}

	t := Task{ID: id, Text: text, Date: date, Time: clock}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	return t, s.Persist(ctx)
}

// Insert appends existing tasks, keeping their ids. Used by import.
// An id already in the list, or repeated within tasks, rejects the whole
// batch with a *ValidationError.
func (s *Store) Insert(ctx context.Context, tasks ...Task) error {
	s.mu.Lock()
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] || s.indexLocked(t.ID) >= 0 {
			s.mu.Unlock()
			return &ValidationError{Field: "id", Message: fmt.Sprintf("task %s already exists", t.ID)}
		}
		seen[t.ID] = true
	}
	s.tasks = append(s.tasks, tasks...)
	s.mu.Unlock()

	return s.Persist(ctx)
}

// Replace swaps the whole list for tasks and persists it.
func (s *Store) Replace(ctx context.Context, tasks []Task) error {
	s.mu.Lock()
	s.tasks = slices.Clone(tasks)
	s.mu.Unlock()

	return s.Persist(ctx)
}

// Remove deletes the task with id. Removing an absent id is not an error;
// the returned bool reports whether anything was removed. The list is
// persisted either way.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.tasks = slices.Delete(s.tasks, i, i+1)
	}
	s.mu.Unlock()

	return i >= 0, s.Persist(ctx)
}

// RemoveCompleted deletes every completed task and returns them in list order.
func (s *Store) RemoveCompleted(ctx context.Context) ([]Task, error) {
	var removed []Task

	s.mu.Lock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.Completed {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.mu.Unlock()

	return removed, s.Persist(ctx)
}

// SetCompleted updates the completion flag and returns the task as it was
// before the change. Returns ErrNotFound if the task does not exist.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) (Task, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	prev := s.tasks[i]
	s.tasks[i].Completed = completed
	s.mu.Unlock()

	return prev, s.Persist(ctx)
}

// Get returns the task with id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i], true
}

// List returns a copy of all tasks in display order.
func (s *Store) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}
