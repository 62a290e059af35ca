package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// SoundCheck verifies the reminder sound file and an audio player.
type SoundCheck struct {
	enabled bool
	file    string
	players []string
}

// NewSoundCheck creates a sound check. players are the candidates probed in
// order.
func NewSoundCheck(enabled bool, file string, players []string) *SoundCheck {
	return &SoundCheck{enabled: enabled, file: file, players: players}
}

func (c *SoundCheck) Name() string {
	return "Sound"
}

func (c *SoundCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch {
	case !c.enabled:
		result.Items = append(result.Items, CheckItem{
			Label:  "sound",
			Status: StatusPass,
			Detail: "disabled",
		})
		return result
	case c.file == "":
		result.Items = append(result.Items, CheckItem{
			Label:  "sound",
			Status: StatusPass,
			Detail: "terminal bell",
		})
		return result
	}

	if info, err := os.Stat(c.file); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "file",
			Status: StatusFail,
			Detail: fmt.Sprintf("cannot access %s", c.file),
		})
	} else if info.IsDir() {
		result.Items = append(result.Items, CheckItem{
			Label:  "file",
			Status: StatusFail,
			Detail: fmt.Sprintf("%s is a directory", c.file),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "file",
			Status: StatusPass,
			Detail: c.file,
		})
	}

	for _, player := range c.players {
		if path, err := lookPathFunc(player); err == nil {
			result.Items = append(result.Items, CheckItem{
				Label:  "player",
				Status: StatusPass,
				Detail: path,
			})
			return result
		}
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "player",
		Status: StatusWarn,
		Detail: fmt.Sprintf("none of %s found on PATH, falls back to terminal bell", strings.Join(c.players, ", ")),
	})
	return result
}
