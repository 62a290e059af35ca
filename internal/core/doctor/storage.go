package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/colonyops/nudge/internal/core/task"
)

// TaskSource loads the stored task list.
type TaskSource interface {
	Load(ctx context.Context) ([]byte, error)
}

// SchemaSource reports the applied and supported schema versions.
type SchemaSource interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

// StorageCheck verifies the stored task list decodes cleanly and reports a
// legacy task file that was left behind.
type StorageCheck struct {
	source     TaskSource
	dbPath     string
	legacyPath string
	schema     SchemaSource
	// rewrite persists the current list, dropping unreadable records.
	rewrite func(ctx context.Context) error
	autofix bool
}

// NewStorageCheck creates a storage check. With autofix, unreadable records
// are dropped by calling rewrite; a nil rewrite makes them unfixable.
func NewStorageCheck(source TaskSource, dbPath, legacyPath string, rewrite func(ctx context.Context) error, autofix bool) *StorageCheck {
	return &StorageCheck{source: source, dbPath: dbPath, legacyPath: legacyPath, rewrite: rewrite, autofix: autofix}
}

// WithSchema adds a schema version item to the report.
func (c *StorageCheck) WithSchema(s SchemaSource) *StorageCheck {
	c.schema = s
	return c
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	data, err := c.source.Load(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "database",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	result.Items = append(result.Items, CheckItem{
		Label:  "database",
		Status: StatusPass,
		Detail: c.dbPath,
	})
	if c.schema != nil {
		result.Items = append(result.Items, c.schemaItem(ctx))
	}

	decoded, err := task.Decode(data)
	switch {
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "task list",
			Status: StatusFail,
			Detail: err.Error(),
		})
	case decoded.Skipped > 0:
		item := CheckItem{
			Label:   "task list",
			Status:  StatusWarn,
			Detail:  fmt.Sprintf("%d task(s), %d unreadable record(s)", len(decoded.Tasks), decoded.Skipped),
			Fixable: c.rewrite != nil,
		}
		if item.Fixable && c.autofix {
			if err := c.rewrite(ctx); err != nil {
				item.Detail = fmt.Sprintf("rewrite task list: %v", err)
			} else {
				item.Status = StatusPass
				item.Detail = fmt.Sprintf("%d task(s), dropped %d unreadable record(s)", len(decoded.Tasks), decoded.Skipped)
				item.Fixed = true
			}
		}
		result.Items = append(result.Items, item)
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "task list",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d task(s)", len(decoded.Tasks)),
		})
	}

	if c.legacyPath != "" {
		if _, err := os.Stat(c.legacyPath); err == nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "legacy file",
				Status: StatusWarn,
				Detail: fmt.Sprintf("%s was not migrated because the database already had tasks (nudge import %s)", c.legacyPath, c.legacyPath),
			})
		} else if !errors.Is(err, os.ErrNotExist) {
			result.Items = append(result.Items, CheckItem{
				Label:  "legacy file",
				Status: StatusWarn,
				Detail: err.Error(),
			})
		}
	}

	return result
}

func (c *StorageCheck) schemaItem(ctx context.Context) CheckItem {
	item := CheckItem{Label: "schema"}

	current, latest, err := c.schema.SchemaVersion(ctx)
	switch {
	case err != nil:
		item.Status = StatusFail
		item.Detail = err.Error()
	case current > latest:
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("version %d, newer than this build (%d); upgrade nudge", current, latest)
	default:
		item.Status = StatusPass
		item.Detail = fmt.Sprintf("version %d", current)
	}
	return item
}
