package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	k := m.keys

	sections := []helpSection{
		{title: "Navigation", bindings: []key.Binding{k.Tab, k.Escape, k.Up, k.Down, k.Top, k.Bottom}},
		{title: "Views", bindings: []key.Binding{k.ViewBooks, k.ViewPOIs, k.ViewPlanner, k.ViewMemos, k.ViewSummary, k.ViewActivity}},
		{title: "Editing", bindings: []key.Binding{k.Confirm, k.New, k.NewChild, k.Edit, k.Delete, k.Pin}},
		{title: "Places", bindings: []key.Binding{k.Search, k.CycleCategory, k.CycleSort, k.PinToCanvas}},
		{title: "Planner", bindings: []key.Binding{
			k.PrevDay, k.NextDay, k.ToggleStop, k.ConfirmOrdering, k.BackToSelection,
			k.MoveUp, k.MoveDown, k.Left, k.Right, k.AddRoute, k.ResetDay,
		}},
		{title: "Activity", bindings: []key.Binding{k.ToggleFollow, k.CycleLevel}},
		{title: "General", bindings: []key.Binding{k.Save, k.Discard, k.CycleTheme, k.Help, k.Quit}},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 36)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, binding := range section.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(46)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title    string
	bindings []key.Binding
}
