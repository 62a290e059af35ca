// Package printer writes styled status lines for CLI commands. Command data
// (listings, ids, JSON) goes to the command's writer; status goes here.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/colonyops/nudge/internal/core/styles"
)

type ctxKey struct{}

// Printer writes human-facing status messages.
type Printer struct {
	out io.Writer
}

// New creates a Printer writing to out.
func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

// NewContext returns a context carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

// Printf writes an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Success writes a success title followed by a muted detail.
func (p *Printer) Success(title, detail string) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", styles.SuccessStyle.Render("✔ "+title), styles.IDStyle.Render(detail))
}

func (p *Printer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, styles.SuccessStyle.Render("✔ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, styles.StatusStyle.Render("• "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, styles.WarningStyle.Render("! "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, styles.ErrorStyle.Render("✘ "+fmt.Sprintf(format, args...)))
}

// Section writes a header with a divider underneath.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, styles.CommandHeaderStyle.Render(title))
	_, _ = fmt.Fprintln(p.out, styles.DividerStyle.Render("──────────────"))
}
