// Package alarm implements the reminder engine: a fixed-interval scan of
// pending tasks that fires each overdue task at most once per armed period.
//
// A task is armed when it is incomplete, has a due instant and is not in the
// trigger set. A scan fires every armed task whose due instant has passed by
// first recording it in the trigger set and then dispatching side effects, so
// re-scanning a fired task is always a no-op. Completing a task hides it from
// the scan; un-completing it (Rearm) or deleting it (Retire) clears its entry.
package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/nudge/internal/core/task"
)

// DefaultInterval is the scan period. It bounds reminder latency, not correctness.
const DefaultInterval = 5 * time.Second

// Source provides the current task list in display order.
type Source interface {
	List() []task.Task
}

// FireFunc is called synchronously for every firing after the trigger set is
// updated and side effects are dispatched.
type FireFunc func(t task.Task, at time.Time)

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the scan period.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocker sets the lock held for the duration of every scheduled scan.
// Share it with whatever mutates the task source so mutations and scans
// never interleave.
func WithLocker(l sync.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithPreScan registers a hook run under the lock before every scheduled scan.
func WithPreScan(fn func(ctx context.Context)) Option {
	return func(e *Engine) { e.preScan = fn }
}

// WithOnFire registers the firing hook, used for visual emphasis.
func WithOnFire(fn FireFunc) Option {
	return func(e *Engine) { e.onFire = fn }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine owns the per-session alarm state: the trigger set and, through its
// Dispatcher, the shared sound handle.
type Engine struct {
	source     Source
	dispatcher *Dispatcher
	triggers   *TriggerSet

	interval time.Duration
	now      func() time.Time
	locker   sync.Locker
	preScan  func(ctx context.Context)
	onFire   FireFunc
	log      zerolog.Logger

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an engine scanning source. dispatcher may be nil, in which case
// firings only update the trigger set and call the firing hook.
func New(source Source, dispatcher *Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		dispatcher: dispatcher,
		triggers:   NewTriggerSet(),
		interval:   DefaultInterval,
		now:        time.Now,
		locker:     &sync.Mutex{},
		log:        log.Logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "alarm").Logger()
	return e
}

// Interval returns the scan period.
func (e *Engine) Interval() time.Duration { return e.interval }

// Start begins scanning: once immediately, then every interval until ctx is
// cancelled or Stop is called. Calling Start again replaces the running loop.
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done

	go e.run(ctx, done)

	e.log.Debug().Dur("interval", e.interval).Msg("alarm engine started")
}

// Stop ends the scan loop and waits for in-flight reminder effects.
func (e *Engine) Stop() {
	e.runMu.Lock()
	e.stopLocked()
	e.runMu.Unlock()

	if e.dispatcher != nil {
		e.dispatcher.Wait()
	}
}

// Running reports whether the scan loop is active.
func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.cancel != nil
}

func (e *Engine) stopLocked() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
	e.log.Debug().Msg("alarm engine stopped")
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick runs one scheduled scan under the engine lock, preceded by the
// pre-scan hook, and returns the tasks that fired.
func (e *Engine) Tick(ctx context.Context) []task.Task {
	e.locker.Lock()
	defer e.locker.Unlock()

	if e.preScan != nil {
		e.preScan(ctx)
	}
	return e.Scan(e.now())
}

// Scan fires every armed task due at or before now and returns them in list
// order. Completed tasks and tasks without a due instant are never
// considered. The caller must hold the lock shared with task mutations.
func (e *Engine) Scan(now time.Time) []task.Task {
	var fired []task.Task

	for _, t := range e.source.List() {
		if t.Completed {
			continue
		}

		due, ok := t.DueAt(now.Location())
		if !ok || now.Before(due) {
			continue
		}

		if !e.triggers.Mark(t.ID, now) {
			continue
		}

		e.fire(t, due, now)
		fired = append(fired, t)
	}

	return fired
}

func (e *Engine) fire(t task.Task, due, now time.Time) {
	e.log.Info().
		Str("task_id", t.ID).
		Time("due", due).
		Dur("late", now.Sub(due)).
		Msg("task reminder fired")

	if e.dispatcher != nil {
		e.dispatcher.Dispatch(t)
	}
	if e.onFire != nil {
		e.onFire(t, now)
	}
}

// Rearm clears the trigger entry for id so it can fire again. It is called
// when a task goes from completed back to incomplete.
func (e *Engine) Rearm(id string) bool {
	return e.triggers.Clear(id)
}

// Retire clears the trigger entry for a deleted task.
func (e *Engine) Retire(id string) bool {
	return e.triggers.Clear(id)
}

// Fired reports whether id has fired and not been re-armed or retired.
func (e *Engine) Fired(id string) bool {
	return e.triggers.Has(id)
}

// FiredAt returns when id fired.
func (e *Engine) FiredAt(id string) (time.Time, bool) {
	return e.triggers.FiredAt(id)
}

// Prune retires every trigger entry whose id is not among tasks.
func (e *Engine) Prune(tasks []task.Task) int {
	live := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		live[t.ID] = struct{}{}
	}
	return e.triggers.Prune(live)
}

// Triggered returns the number of ids currently in the trigger set.
func (e *Engine) Triggered() int {
	return e.triggers.Len()
}
