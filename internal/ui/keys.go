package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Save       key.Binding
	Discard    key.Binding

	// View switching
	ViewBooks    key.Binding
	ViewPOIs     key.Binding
	ViewPlanner  key.Binding
	ViewMemos    key.Binding
	ViewSummary  key.Binding
	ViewActivity key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Left   key.Binding
	Right  key.Binding

	// Editing
	Confirm  key.Binding
	New      key.Binding
	NewChild key.Binding
	Edit     key.Binding
	Delete   key.Binding

	// POI list
	Search        key.Binding
	CycleCategory key.Binding
	CycleSort     key.Binding
	PinToCanvas   key.Binding

	// Planner
	PrevDay         key.Binding
	NextDay         key.Binding
	ToggleStop      key.Binding
	ConfirmOrdering key.Binding
	BackToSelection key.Binding
	MoveUp          key.Binding
	MoveDown        key.Binding
	AddRoute        key.Binding
	ResetDay        key.Binding

	// Memos
	Pin key.Binding

	// Activity
	ToggleFollow key.Binding
	CycleLevel   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to books"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save now"),
		),
		Discard: key.NewBinding(
			key.WithKeys("U"),
			key.WithHelp("U", "Discard unsaved changes"),
		),

		ViewBooks: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Books"),
		),
		ViewPOIs: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Places"),
		),
		ViewPlanner: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Planner"),
		),
		ViewMemos: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Memos"),
		),
		ViewSummary: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "Summary"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("6"),
			key.WithHelp("6", "Activity"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Stops pane"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Routes pane"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open / confirm"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New"),
		),
		NewChild: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "New child place"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search places"),
		),
		CycleCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cycle category"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),

		PinToCanvas: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Pin place to canvas"),
		),

		PrevDay: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next day"),
		),
		ToggleStop: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Select / unselect place"),
		),
		ConfirmOrdering: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Confirm selection"),
		),
		BackToSelection: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Back to selection"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "Move stop earlier"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "Move stop later"),
		),
		AddRoute: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Add route"),
		),
		ResetDay: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Reset day"),
		),

		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pin / unpin"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle minimum level"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewBooks, k.ViewPOIs, k.ViewPlanner, k.ViewMemos, k.ViewSummary, k.ViewActivity},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Confirm, k.New, k.NewChild, k.Edit, k.Delete},
		{k.Search, k.CycleCategory, k.CycleSort, k.PinToCanvas},
		{k.PrevDay, k.NextDay, k.ToggleStop, k.ConfirmOrdering, k.BackToSelection},
		{k.MoveUp, k.MoveDown, k.Left, k.Right, k.AddRoute, k.ResetDay},
		{k.Pin, k.ToggleFollow, k.CycleLevel},
		{k.Save, k.Discard, k.CycleTheme, k.Help, k.Quit},
	}
}
