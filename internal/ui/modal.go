package ui

import (
	"errors"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/book"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// formField is one labelled text input. Key matches the book.FieldErrors
// key the submit function reports for it.
type formField struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, value, placeholder string) formField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = 40
	ti.SetValue(value)
	return formField{key: key, label: label, input: ti}
}

// submitFunc receives the trimmed field values by key. A book.FieldErrors
// result keeps the form open with the messages shown under their fields.
type submitFunc func(values map[string]string) (tea.Cmd, error)

// formModal collects a handful of text fields and hands them to submit.
type formModal struct {
	title  string
	fields []formField
	focus  int
	submit submitFunc
	errs   book.FieldErrors
	err    string
}

func newFormModal(title string, submit submitFunc, fields ...formField) formModal {
	f := formModal{title: title, fields: fields, submit: submit}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f formModal) values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, field := range f.fields {
		out[field.key] = strings.TrimSpace(field.input.Value())
	}
	return out
}

func (f *formModal) setFocus(idx int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	idx = (idx + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Blur()
	f.focus = idx
	return f.fields[f.focus].input.Focus()
}

// Update implements Modal.
func (f formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if len(f.fields) == 0 {
			return f, nil, false
		}
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return f, cmd, false
	}

	switch keyMsg.String() {
	case "esc":
		return f, nil, true
	case "tab", "down":
		return f, f.setFocus(f.focus + 1), false
	case "shift+tab", "up":
		return f, f.setFocus(f.focus - 1), false
	case "enter":
		if f.focus < len(f.fields)-1 {
			return f, f.setFocus(f.focus + 1), false
		}
		cmd, err := f.submit(f.values())
		if err == nil {
			return f, cmd, true
		}
		f.errs, f.err = nil, ""
		var fe book.FieldErrors
		if errors.As(err, &fe) {
			f.errs = fe
			return f, f.setFocus(f.firstInvalid()), false
		}
		f.err = err.Error()
		return f, nil, false
	}

	if len(f.fields) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(keyMsg)
	return f, cmd, false
}

// firstInvalid returns the index of the first field with an error, or the
// current focus when the errors name no field of this form.
func (f formModal) firstInvalid() int {
	for i, field := range f.fields {
		if _, ok := f.errs[field.key]; ok {
			return i
		}
	}
	return f.focus
}

// unmatchedErrors lists messages for keys that have no field in the form.
func (f formModal) unmatchedErrors() []string {
	known := make(map[string]bool, len(f.fields))
	for _, field := range f.fields {
		known[field.key] = true
	}
	var out []string
	for k, msg := range f.errs {
		if !known[k] {
			out = append(out, k+": "+msg)
		}
	}
	sort.Strings(out)
	return out
}

// View implements Modal.
func (f formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted)).Width(14)
	focusLabel := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Warning)).Bold(true).Width(14)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		label := labelStyle
		if i == f.focus {
			label = focusLabel
		}
		b.WriteString(label.Render(field.label))
		b.WriteString(field.input.View())
		b.WriteString("\n")
		if msg, ok := f.errs[field.key]; ok {
			b.WriteString(lipgloss.NewStyle().PaddingLeft(14).Render(styles.DangerText.Render(msg)))
			b.WriteString("\n")
		}
	}
	for _, msg := range f.unmatchedErrors() {
		b.WriteString(styles.DangerText.Render(msg))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter next/submit · tab move · esc cancel"))

	return placeModal(theme, width, height, b.String(), 64)
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	prompt    string
	onConfirm func() tea.Cmd
}

// Update implements Modal.
func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case keyMsg.String() == "y", key.Matches(keyMsg, keys.Confirm):
		return c, c.onConfirm(), true
	case keyMsg.String() == "n", key.Matches(keyMsg, keys.Escape):
		return c, nil, true
	}
	return c, nil, false
}

// View implements Modal.
func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(c.prompt) + "\n\n" +
		styles.WarningText.Render("y") + styles.MutedText.Render(" confirm   ") +
		styles.WarningText.Render("n") + styles.MutedText.Render(" cancel")
	return placeModal(theme, width, height, content, 52)
}

// placeModal centers content in a rounded box over the whole screen.
func placeModal(theme Theme, width, height int, content string, boxWidth int) string {
	if width > 0 && boxWidth > width-2 {
		boxWidth = maxInt(width-2, 10)
	}
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
