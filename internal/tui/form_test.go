package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/colonyops/nudge/pkg/tuitest"
)

func typeInto(f AddForm, s string) AddForm {
	for _, msg := range tuitest.KeyPressString(s) {
		f, _ = f.Update(msg)
	}
	return f
}

func TestAddForm(t *testing.T) {
	t.Run("collects fields in order", func(t *testing.T) {
		f := NewAddForm()
		f = typeInto(f, "Pay rent")
		f.Next()
		f = typeInto(f, "2026-03-15")
		f.Next()
		f = typeInto(f, "09:00")

		text, date, clock := f.Values()
		assert.Equal(t, "Pay rent", text)
		assert.Equal(t, "2026-03-15", date)
		assert.Equal(t, "09:00", clock)
		assert.True(t, f.Validate())
	})

	t.Run("focus wraps", func(t *testing.T) {
		f := NewAddForm()
		f.Prev()
		assert.Equal(t, fieldTime, f.focus)
		f.Next()
		assert.Equal(t, fieldText, f.focus)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		f := NewAddForm()
		f = typeInto(f, "   ")

		assert.False(t, f.Validate())
		assert.NotEmpty(t, f.err)
		assert.Contains(t, tuitest.StripANSI(f.View()), f.err)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		f := NewAddForm()
		f = typeInto(f, "Pay rent")
		f.Next()
		f = typeInto(f, "tomorrow")

		assert.False(t, f.Validate())
	})

	t.Run("ignores non-key messages", func(t *testing.T) {
		f := NewAddForm()
		f, _ = f.Update(tea.WindowSizeMsg{Width: 10, Height: 10})
		text, _, _ := f.Values()
		assert.Empty(t, text)
	})
}
