package desktop

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/nudge/pkg/executil"
)

func TestSoundSource(t *testing.T) {
	ctx := context.Background()
	nop := zerolog.Nop()

	audio := filepath.Join(t.TempDir(), "bell.oga")
	require.NoError(t, os.WriteFile(audio, []byte("OggS"), 0o644))

	t.Run("no file rings the bell", func(t *testing.T) {
		var bell bytes.Buffer
		source := NewSoundSource(SoundOptions{Exec: &executil.RecordingExecutor{}, Bell: &bell, Logger: &nop})

		player, err := source(ctx)
		require.NoError(t, err)
		require.NoError(t, player.Play(ctx))
		assert.Equal(t, "\a", bell.String())
	})

	t.Run("missing file is an acquisition error", func(t *testing.T) {
		source := NewSoundSource(SoundOptions{
			Exec:   &executil.RecordingExecutor{},
			File:   filepath.Join(t.TempDir(), "missing.oga"),
			Logger: &nop,
		})

		_, err := source(ctx)
		require.Error(t, err)
	})

	t.Run("first available player", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"paplay": true}}
		source := NewSoundSource(SoundOptions{Exec: rec, File: audio, GOOS: "linux", Logger: &nop})

		player, err := source(ctx)
		require.NoError(t, err)
		require.IsType(t, &CommandPlayer{}, player)
		assert.Equal(t, "aplay", player.(*CommandPlayer).Command())

		require.NoError(t, player.Play(ctx))
		recorded := rec.Recorded()
		require.Len(t, recorded, 1)
		assert.Equal(t, []string{audio}, recorded[0].Args)
	})

	t.Run("configured player", func(t *testing.T) {
		rec := &executil.RecordingExecutor{}
		source := NewSoundSource(SoundOptions{Exec: rec, File: audio, Player: "mpv", Logger: &nop})

		player, err := source(ctx)
		require.NoError(t, err)
		assert.Equal(t, "mpv", player.(*CommandPlayer).Command())
	})

	t.Run("no player falls back to bell", func(t *testing.T) {
		var bell bytes.Buffer
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"afplay": true}}
		source := NewSoundSource(SoundOptions{Exec: rec, File: audio, GOOS: "darwin", Bell: &bell, Logger: &nop})

		player, err := source(ctx)
		require.NoError(t, err)
		require.NoError(t, player.Play(ctx))
		assert.Equal(t, "\a", bell.String())
	})
}

func TestTerminalAlerter_PlainWhenNotATTY(t *testing.T) {
	var buf bytes.Buffer
	a := NewTerminalAlerter(&buf)

	require.NoError(t, a.Alert(context.Background(), `ALARM! Your task "Pay rent" is due!`))
	assert.Equal(t, "ALARM! Your task \"Pay rent\" is due!\n", buf.String())
}
