package db

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const watchDebounce = 100 * time.Millisecond

// ChangeWatcher reports writes to the database file and its WAL, such as
// those made by another nudge process. It only signals that something
// changed; callers compare revisions to find out what.
type ChangeWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	changes chan struct{}
	log     zerolog.Logger
}

// NewChangeWatcher watches the directory holding dbPath. Watching the
// directory rather than the file survives the WAL being created and removed.
func NewChangeWatcher(dbPath string, log zerolog.Logger) (*ChangeWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &ChangeWatcher{
		watcher: watcher,
		path:    dbPath,
		changes: make(chan struct{}, 1),
		log:     log.With().Str("component", "db-watcher").Logger(),
	}, nil
}

// Changes receives a value after each settled burst of writes. Bursts that
// arrive before the previous signal is consumed are coalesced.
func (w *ChangeWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Run processes file events until ctx is cancelled or the watcher is closed.
func (w *ChangeWatcher) Run(ctx context.Context) {
	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the watcher.
func (w *ChangeWatcher) Close() error {
	return w.watcher.Close()
}

func (w *ChangeWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || strings.HasPrefix(name, w.path+"-wal")
}
