package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/pkg/tmpl"
)

// MinInterval is the shortest accepted alarm.interval.
const MinInterval = 100 * time.Millisecond

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate performs structural checks that need no I/O.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", errors.New("cannot be empty"))
	}
	if c.Alarm.Interval < MinInterval {
		errs = errs.Append("alarm.interval", fmt.Errorf("must be at least %s", MinInterval))
	}
	if c.Alarm.Timeout < 0 {
		errs = errs.Append("alarm.timeout", errors.New("cannot be negative"))
	}
	if c.Alarm.Title == "" {
		errs = errs.Append("alarm.title", errors.New("cannot be empty"))
	}
	if c.Notify.Command != "" {
		if err := tmpl.Parse(c.Notify.Command); err != nil {
			errs = errs.Append("notify.command", fmt.Errorf("template error: %w", err))
		}
	}
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", errors.New("cannot be negative"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", errors.New("cannot be negative"))
	}
	if c.TUI.Theme != "" && !slices.Contains(styles.ThemeNames(), c.TUI.Theme) {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q", c.TUI.Theme))
	}

	return errs.ToError()
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility and executables. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateSound(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.NotificationsEnabled() {
		warnings = append(warnings, ValidationWarning{
			Category: "Notify",
			Message:  "notifications are disabled, reminders fall back to terminal alerts",
		})
	}
	if !c.SoundEnabled() && (c.Sound.File != "" || c.Sound.Player != "") {
		warnings = append(warnings, ValidationWarning{
			Category: "Sound",
			Message:  "sound is disabled, file and player settings are ignored",
		})
	}
	if c.Alarm.Interval > time.Minute {
		warnings = append(warnings, ValidationWarning{
			Category: "Alarm",
			Item:     "interval",
			Message:  fmt.Sprintf("reminders may arrive up to %s late", c.Alarm.Interval),
		})
	}

	return warnings
}

func (c *Config) validateSound() error {
	if !c.SoundEnabled() {
		return nil
	}
	return criterio.ValidateStruct(
		criterio.Run("sound.file", c.Sound.File, isFileIfSet),
		criterio.Run("sound.player", c.Sound.Player, executableExists),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// executableExists validates that path resolves to an executable.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

func isFileIfSet(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
