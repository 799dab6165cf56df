package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicat/internal/app"
)

type formField struct {
	label string
	input textinput.Model
}

// formModel is the content of the modal overlay: labelled text inputs and a
// submit function run through [app.Modal].
type formModel struct {
	title      string
	hint       string
	fields     []formField
	focus      int
	ticket     app.Ticket
	submit     func(ctx context.Context) error
	after      func() tea.Cmd
	caption    func() string
	submitting bool
	err        error
}

func newForm(title string, submit func(ctx context.Context) error) *formModel {
	return &formModel{title: title, submit: submit}
}

// field appends a text input. The first field takes focus.
func (f *formModel) field(label, value, placeholder string) *formModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	ti.Placeholder = placeholder
	ti.SetValue(value)
	if len(f.fields) == 0 {
		ti.Focus()
	}
	f.fields = append(f.fields, formField{label: label, input: ti})
	return f
}

// secret appends a masked input.
func (f *formModel) secret(label string) *formModel {
	f.field(label, "", "")
	f.fields[len(f.fields)-1].input.EchoMode = textinput.EchoPassword
	return f
}

func (f *formModel) value(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

// setValue replaces the text of the labelled input.
func (f *formModel) setValue(label, value string) {
	for i := range f.fields {
		if f.fields[i].label == label {
			f.fields[i].input.SetValue(value)
		}
	}
}

func (f *formModel) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *formModel) update(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *formModel) submitCaption() string {
	if f.submitting {
		return "Saving..."
	}
	if f.caption != nil {
		return f.caption()
	}
	return "Submit"
}

func (f *formModel) view() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(f.title))
	b.WriteString("\n")

	width := 0
	for _, fld := range f.fields {
		width = max(width, len(fld.label))
	}
	for i, fld := range f.fields {
		label := fmt.Sprintf("%-*s", width, fld.label)
		if i == f.focus {
			label = styles.ok.Render(label)
		}
		fmt.Fprintf(&b, "%s  %s\n", label, fld.input.View())
	}

	if f.hint != "" {
		b.WriteString("\n" + styles.help.Render(f.hint) + "\n")
	}
	if f.err != nil {
		b.WriteString("\n" + styles.err.Render(f.err.Error()) + "\n")
	}
	fmt.Fprintf(&b, "\n[ %s ]  %s", f.submitCaption(), styles.help.Render("enter submit • tab next field • esc cancel"))
	return styles.overlay.Render(b.String())
}
