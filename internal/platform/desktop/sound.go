package desktop

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/nudge/internal/core/alarm"
	"github.com/colonyops/nudge/pkg/executil"
)

// SoundOptions configures the reminder sound.
type SoundOptions struct {
	Exec executil.Executor
	// File is the audio file to play. Empty rings the terminal bell.
	File string
	// Player overrides the detected audio player binary.
	Player string
	// Bell receives the BEL character when no audio file is configured.
	Bell   io.Writer
	GOOS   string
	Logger *zerolog.Logger
}

// SoundPlayers lists the audio players to probe, in order. A configured
// player replaces the platform defaults.
func SoundPlayers(goos, player string) []string {
	if player != "" {
		return []string{player}
	}
	if goos == "darwin" {
		return []string{"afplay"}
	}
	return []string{"paplay", "aplay"}
}

// NewSoundSource returns a SoundSource that resolves the player on first use.
// A missing audio file is an acquisition error, so the dispatcher will try
// again on the next firing. A missing player degrades to the terminal bell.
func NewSoundSource(opts SoundOptions) alarm.SoundSource {
	exec := opts.Exec
	if exec == nil {
		exec = &executil.RealExecutor{}
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	bell := opts.Bell
	if bell == nil {
		bell = os.Stderr
	}
	logger := log.With().Str("component", "sound").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return func(ctx context.Context) (alarm.Player, error) {
		if opts.File == "" {
			return NewBellPlayer(bell), nil
		}

		if _, err := os.Stat(opts.File); err != nil {
			return nil, fmt.Errorf("sound file: %w", err)
		}

		candidates := SoundPlayers(goos, opts.Player)

		player := executil.FirstAvailable(exec, candidates...)
		if player == "" {
			logger.Warn().Strs("players", candidates).Msg("no audio player found, using terminal bell")
			return NewBellPlayer(bell), nil
		}

		logger.Debug().Str("player", player).Str("file", opts.File).Msg("sound ready")
		return &CommandPlayer{exec: exec, cmd: player, file: opts.File}, nil
	}
}

// CommandPlayer plays a file with an external audio player.
type CommandPlayer struct {
	exec executil.Executor
	cmd  string
	file string
}

// Command returns the player binary.
func (p *CommandPlayer) Command() string { return p.cmd }

// Play runs the player once and waits for it to exit.
func (p *CommandPlayer) Play(ctx context.Context) error {
	if _, err := p.exec.Run(ctx, p.cmd, p.file); err != nil {
		return fmt.Errorf("play %s: %w", p.file, err)
	}
	return nil
}

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBellPlayer creates a BellPlayer writing to w.
func NewBellPlayer(w io.Writer) *BellPlayer {
	return &BellPlayer{w: w}
}

// Play writes BEL.
func (b *BellPlayer) Play(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return err
}
