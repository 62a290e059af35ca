package desktop

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/colonyops/nudge/internal/core/alarm"
)

var alertStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#f7768e"))

// TerminalAlerter prints the fallback alert to a terminal stream. The line
// is prefixed with BEL and styled when the stream is a TTY.
type TerminalAlerter struct {
	mu  sync.Mutex
	w   io.Writer
	tty bool
}

var _ alarm.Alerter = (*TerminalAlerter)(nil)

// NewTerminalAlerter creates an alerter writing to w.
func NewTerminalAlerter(w io.Writer) *TerminalAlerter {
	return &TerminalAlerter{w: w, tty: isTerminal(w)}
}

// Alert writes message on its own line.
func (a *TerminalAlerter) Alert(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	line := message
	if a.tty {
		line = "\a" + alertStyle.Render(message)
	}
	_, err := fmt.Fprintln(a.w, line)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
