package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/nudge/internal/core/styles"
	"github.com/colonyops/nudge/internal/core/task"
)

const (
	fieldText = iota
	fieldDate
	fieldTime
	fieldCount
)

var fieldLabels = [fieldCount]string{"Task", "Date", "Time"}

// AddForm collects the text, date and time of a new task.
type AddForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

// NewAddForm creates a form focused on the text field.
func NewAddForm() AddForm {
	var f AddForm

	placeholders := [fieldCount]string{"What needs doing?", "YYYY-MM-DD (optional)", "HH:MM (optional)"}
	limits := [fieldCount]int{200, 10, 8}

	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = placeholders[i]
		in.CharLimit = limits[i]
		f.inputs[i] = in
	}
	f.inputs[fieldText].Focus()

	return f
}

// Values returns the raw field values.
func (f AddForm) Values() (text, date, clock string) {
	return f.inputs[fieldText].Value(), f.inputs[fieldDate].Value(), f.inputs[fieldTime].Value()
}

// Validate applies the rules Add uses and records the first problem.
func (f *AddForm) Validate() bool {
	text, date, clock := f.Values()
	if _, _, _, err := task.Normalize(text, date, clock); err != nil {
		f.err = err.Error()
		return false
	}
	f.err = ""
	return true
}

// SetError shows err under the form.
func (f *AddForm) SetError(err string) {
	f.err = err
}

// Next moves focus forward, wrapping around.
func (f *AddForm) Next() tea.Cmd {
	return f.setFocus((f.focus + 1) % fieldCount)
}

// Prev moves focus backward, wrapping around.
func (f *AddForm) Prev() tea.Cmd {
	return f.setFocus((f.focus + fieldCount - 1) % fieldCount)
}

func (f *AddForm) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// Update forwards msg to the focused input.
func (f AddForm) Update(msg tea.Msg) (AddForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View renders the form.
func (f AddForm) View() string {
	rows := make([]string, 0, fieldCount+2)
	rows = append(rows, styles.TitleStyle.Render("New task"))

	for i, in := range f.inputs {
		style := styles.FormFieldStyle
		if i == f.focus {
			style = styles.FormFieldFocusedStyle
		}
		label := lipgloss.NewStyle().Width(6).Render(fieldLabels[i])
		rows = append(rows, label+" "+style.Render(in.View()))
	}

	if f.err != "" {
		rows = append(rows, styles.FormErrorStyle.Render(f.err))
	}
	rows = append(rows, styles.HelpStyle.Render("tab next • enter save • esc cancel"))

	return strings.Join(rows, "\n")
}
