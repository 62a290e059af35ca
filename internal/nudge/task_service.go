package nudge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/internal/core/eventbus"
	"github.com/colonyops/nudge/internal/core/logging"
	"github.com/colonyops/nudge/internal/core/task"
)

// TaskService applies task mutations and keeps the task store and the alarm
// trigger set consistent. Every operation runs under the session lock that
// the alarm engine also takes per scan, so a scan never observes a
// half-applied mutation.
type TaskService struct {
	mu       sync.Locker
	store    *task.Store
	versions task.Versioned
	engine   *alarm.Engine
	bus      *eventbus.EventBus
	log      zerolog.Logger

	revision int64
}

// NewTaskService creates a TaskService. versions may be nil, which disables
// Sync.
func NewTaskService(mu sync.Locker, store *task.Store, versions task.Versioned, engine *alarm.Engine, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		mu:       mu,
		store:    store,
		versions: versions,
		engine:   engine,
		bus:      bus,
		log:      log.With().Str("component", "task-service").Logger(),
	}
}

// Load restores the persisted list at startup. Skipped records are logged.
// A corrupt record is logged and the session starts empty; the stored value
// is left alone until the next mutation overwrites it.
func (s *TaskService) Load(ctx context.Context) (task.RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.restoreLocked(ctx)
	if errors.Is(err, task.ErrCorruptRecord) {
		s.log.Error().Err(err).Msg("stored task list is unreadable, starting empty")
		return res, nil
	}
	return res, err
}

// Add creates a task. A *task.ValidationError leaves everything unchanged.
func (s *TaskService) Add(ctx context.Context, text, date, clock string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	t, err := s.store.Add(ctx, text, date, clock)
	if task.IsValidationError(err) {
		return task.Task{}, err
	}
	if t.ID == "" {
		return task.Task{}, err
	}

	s.log.Debug().Str("task_id", t.ID).Msg("task added")
	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: t})
	return t, s.persisted(ctx, err)
}

// Toggle flips the completion flag of id.
func (s *TaskService) Toggle(ctx context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	t, ok := s.store.Get(id)
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	return s.setCompletedLocked(ctx, id, !t.Completed)
}

// SetCompleted sets the completion flag of id. Setting the current value is
// a no-op apart from persisting.
func (s *TaskService) SetCompleted(ctx context.Context, id string, completed bool) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)
	return s.setCompletedLocked(ctx, id, completed)
}

func (s *TaskService) setCompletedLocked(ctx context.Context, id string, completed bool) (task.Task, error) {
	ctx = logging.WithTaskID(ctx, id)

	prev, err := s.store.SetCompleted(ctx, id, completed)
	if errors.Is(err, task.ErrNotFound) {
		return task.Task{}, err
	}

	// completed -> incomplete re-arms; the reverse leaves the trigger set alone
	if prev.Completed && !completed && s.engine.Rearm(id) {
		s.log.Debug().Str("task_id", id).Msg("reminder re-armed")
	}

	next := prev
	next.Completed = completed
	if prev.Completed != completed {
		s.bus.PublishTaskToggled(eventbus.TaskToggledPayload{Task: next})
	}
	return next, s.persisted(ctx, err)
}

// Delete removes id and retires its reminder. Deleting an unknown id is not
// an error; the returned bool reports whether a task was removed.
func (s *TaskService) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	ctx = logging.WithTaskID(ctx, id)
	removed, err := s.store.Remove(ctx, id)
	s.engine.Retire(id)
	if removed {
		s.log.Debug().Str("task_id", id).Msg("task deleted")
		s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: id})
	}
	return removed, s.persisted(ctx, err)
}

// ClearCompleted removes every completed task, retires their reminders and
// returns the removed ids in list order.
func (s *TaskService) ClearCompleted(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	removed, err := s.store.RemoveCompleted(ctx)

	ids := make([]string, 0, len(removed))
	for _, t := range removed {
		s.engine.Retire(t.ID)
		s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: t.ID})
		ids = append(ids, t.ID)
	}

	s.log.Debug().Int("count", len(ids)).Msg("completed tasks cleared")
	return ids, s.persisted(ctx, err)
}

// Import appends tasks, or replaces the whole list when replace is set.
// Replaced tasks have their reminders retired, and tasks the import reopens
// are re-armed.
func (s *TaskService) Import(ctx context.Context, tasks []task.Task, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked(ctx)

	var err error
	if replace {
		before := s.store.List()
		err = s.store.Replace(ctx, tasks)
		s.reconcileLocked(before, s.store.List())
	} else {
		err = s.store.Insert(ctx, tasks...)
		if task.IsValidationError(err) {
			return err
		}
	}

	s.bus.PublishTasksRestored(eventbus.TasksRestoredPayload{Tasks: s.store.List()})
	return s.persisted(ctx, err)
}

// Sync reloads the list when another process has written it since this one
// last loaded or persisted. It reports whether a reload happened.
func (s *TaskService) Sync(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked(ctx)
}

// syncLocked is Sync for callers that already hold the session lock, such
// as the engine's pre-scan hook.
func (s *TaskService) syncLocked(ctx context.Context) (bool, error) {
	if s.versions == nil {
		return false, nil
	}

	rev, err := s.versions.Revision(ctx)
	if err != nil {
		return false, fmt.Errorf("read task revision: %w", err)
	}
	if rev == s.revision {
		return false, nil
	}

	before := s.store.List()

	if _, err := s.restoreLocked(ctx); err != nil {
		// don't retry the same bad record every tick
		s.revision = rev
		return false, err
	}

	after := s.store.List()
	s.reconcileLocked(before, after)

	s.log.Debug().Int64("revision", rev).Int("tasks", len(after)).Msg("task list reloaded")
	s.bus.PublishTasksRestored(eventbus.TasksRestoredPayload{Tasks: after})
	return true, nil
}

// List returns the tasks in display order.
func (s *TaskService) List() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// Get returns the task with id.
func (s *TaskService) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// Resolve finds a task by full id or by a unique id prefix.
func (s *TaskService) Resolve(ref string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolveRef(s.store.List(), ref)
}

// refreshLocked picks up writes from other processes before a mutation so
// a stale list never overwrites them. A failed sync is logged and the
// mutation goes ahead on the list in memory.
func (s *TaskService) refreshLocked(ctx context.Context) {
	if _, err := s.syncLocked(ctx); err != nil {
		s.log.Warn().Err(err).Msg("sync before mutation failed")
	}
}

// reconcileLocked brings the trigger set in line with a list that changed
// wholesale: reopened tasks are re-armed and removed ones retired.
func (s *TaskService) reconcileLocked(before, after []task.Task) {
	completed := make(map[string]bool, len(before))
	for _, t := range before {
		completed[t.ID] = t.Completed
	}

	for _, t := range after {
		if completed[t.ID] && !t.Completed && s.engine.Rearm(t.ID) {
			s.log.Debug().Str("task_id", t.ID).Msg("reminder re-armed")
		}
	}
	if n := s.engine.Prune(after); n > 0 {
		s.log.Debug().Int("retired", n).Msg("retired reminders of removed tasks")
	}
}

func (s *TaskService) restoreLocked(ctx context.Context) (task.RestoreResult, error) {
	if s.versions != nil {
		rev, err := s.versions.Revision(ctx)
		if err == nil {
			s.revision = rev
		}
	}

	res, err := s.store.Restore(ctx)
	if err != nil {
		return res, err
	}
	if res.Skipped > 0 {
		s.log.Warn().Int("skipped", res.Skipped).Int("loaded", res.Loaded).Msg("skipped malformed task records")
	}
	return res, nil
}

// persisted finishes a mutation: a persist failure is logged and returned,
// otherwise the revision our write produced is remembered so Sync ignores
// it. The revision comes from the write itself; reading it back afterwards
// could swallow another process's later write.
func (s *TaskService) persisted(ctx context.Context, err error) error {
	if err != nil {
		s.log.Error().Ctx(ctx).Err(err).Msg("failed to persist tasks")
		return err
	}
	if s.versions == nil {
		return nil
	}

	saved := s.versions.LastSaved()
	if saved > s.revision+1 {
		// another process wrote between our sync and our save
		s.log.Warn().Int64("expected", s.revision+1).Int64("saved", saved).Msg("task list was written concurrently by another process")
	}
	if saved > s.revision {
		s.revision = saved
	}
	return nil
}
