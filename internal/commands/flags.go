package commands

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/nudge/internal/core/config"
	"github.com/colonyops/nudge/internal/nudge"
)

type Flags struct {
	LogLevel     string
	LogFile      string
	ConfigPath   string
	DataDir      string
	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is the nudge session, created in the Before hook
	App *nudge.App
}

var errNoApp = errors.New("nudge is not initialized")

// app returns the session created in the Before hook.
func (f *Flags) app() (*nudge.App, error) {
	if f.App == nil {
		return nil, errNoApp
	}
	return f.App, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "nudge", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "nudge")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/nudge/nudge.log
// On Linux: $XDG_STATE_HOME/nudge/nudge.log (defaults to ~/.local/state/nudge/nudge.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "nudge", "nudge.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "nudge", "nudge.log")
	}

	return filepath.Join(home, ".local", "state", "nudge", "nudge.log")
}
