// Package jsonfile stores a task list as a plain JSON file. It backs
// export/import and the one-time migration of a legacy tasks.json.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/nudge/internal/core/task"
)

// LegacyFileName is the file MigrateLegacy picks up from the data directory.
const LegacyFileName = "tasks.json"

// TaskFile holds a task list as the JSON array of
// {id, text, date, time, completed} records. It implements task.Storage.
type TaskFile struct {
	path string
	mu   sync.Mutex
}

var _ task.Storage = (*TaskFile)(nil)

// NewTaskFile creates a TaskFile at path. Nothing is touched until Load or Save.
func NewTaskFile(path string) *TaskFile {
	return &TaskFile{path: path}
}

// Path returns the file location.
func (f *TaskFile) Path() string {
	return f.path
}

// Load returns the file contents. A missing file returns nil data.
func (f *TaskFile) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save writes data atomically, indented for people reading the file.
func (f *TaskFile) Save(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("format task file: %w", err)
	}
	pretty.WriteByte('\n')

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, pretty.Bytes(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, f.path)
}

// Export writes tasks to the file.
func (f *TaskFile) Export(ctx context.Context, tasks []task.Task) error {
	data, err := task.Encode(tasks)
	if err != nil {
		return err
	}
	if err := f.Save(ctx, data); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}

// ReadTasks decodes the file. Malformed records are skipped and counted.
// A missing file is an error wrapping os.ErrNotExist.
func (f *TaskFile) ReadTasks(ctx context.Context) (task.DecodeResult, error) {
	data, err := f.Load(ctx)
	if err != nil {
		return task.DecodeResult{}, fmt.Errorf("read %s: %w", f.path, err)
	}
	if data == nil {
		return task.DecodeResult{}, fmt.Errorf("read %s: %w", f.path, os.ErrNotExist)
	}
	return task.Decode(data)
}

// MigrateLegacy copies <dataDir>/tasks.json into dst when dst holds no task
// record yet, then renames the file to tasks.json.migrated. It returns the
// number of tasks copied. Skips silently when there is nothing to migrate.
func MigrateLegacy(ctx context.Context, dst task.Storage, dataDir string) (int, error) {
	legacy := NewTaskFile(filepath.Join(dataDir, LegacyFileName))

	data, err := legacy.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("read legacy task file: %w", err)
	}
	if data == nil {
		return 0, nil
	}

	existing, err := dst.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("check existing tasks: %w", err)
	}
	if existing != nil {
		// Database already populated, skip migration
		return 0, nil
	}

	decoded, err := task.Decode(data)
	if err != nil {
		return 0, fmt.Errorf("parse legacy task file: %w", err)
	}

	encoded, err := task.Encode(decoded.Tasks)
	if err != nil {
		return 0, err
	}
	if err := dst.Save(ctx, encoded); err != nil {
		return 0, fmt.Errorf("save migrated tasks: %w", err)
	}

	if err := os.Rename(legacy.Path(), legacy.Path()+".migrated"); err != nil {
		return len(decoded.Tasks), fmt.Errorf("rename legacy task file: %w", err)
	}

	return len(decoded.Tasks), nil
}
