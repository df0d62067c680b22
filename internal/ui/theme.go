package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/book"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Header and footer bars
	SurfaceAlt string // Unfocused panels
	FocusBg    string // Focused panel

	// List selection
	SelectionBg   string
	SelectionText string

	// Borders
	Border      string
	BorderMuted string
	BorderFocus string

	// Text
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// CategoryColors maps each POI category to its badge color.
	CategoryColors map[book.Category]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Background: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Background)),

		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		SurfaceAlt: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		categoryColors: t.CategoryColors,
		background:     t.Background,
		muted:          t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style
	Surface    lipgloss.Style
	SurfaceAlt lipgloss.Style

	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	categoryColors map[book.Category]string
	background     string
	muted          string
}

// CategoryColor returns the badge color for c, falling back to muted text.
func (t Theme) CategoryColor(c book.Category) string {
	if color, ok := t.CategoryColors[c]; ok {
		return color
	}
	return t.Muted
}

// CategoryBadge returns an inverted badge style for a POI category.
func (s Styles) CategoryBadge(c book.Category) lipgloss.Style {
	color := s.categoryColors[c]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// CategoryText returns a foreground-only style for a POI category.
func (s Styles) CategoryText(c book.Category) lipgloss.Style {
	color := s.categoryColors[c]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// WithBackground returns a copy of Styles with every style carrying the
// given background, so text inside panels never shows the terminal default.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Background: s.Background.Background(bg),
		Surface:    s.Surface.Background(bg),
		SurfaceAlt: s.SurfaceAlt.Background(bg),

		Text:        s.Text.Background(bg),
		MutedText:   s.MutedText.Background(bg),
		FaintText:   s.FaintText.Background(bg),
		AccentText:  s.AccentText.Background(bg),
		SuccessText: s.SuccessText.Background(bg),
		WarningText: s.WarningText.Background(bg),
		DangerText:  s.DangerText.Background(bg),
		InfoText:    s.InfoText.Background(bg),

		Header:   s.Header.Background(bg),
		Footer:   s.Footer.Background(bg),
		Logo:     s.Logo.Background(bg),
		Selected: s.Selected,

		categoryColors: s.categoryColors,
		background:     s.background,
		muted:          s.muted,
	}
}

// Theme definitions

const defaultThemeName = "Harbor"

var themes = map[string]Theme{
	"Harbor":  harborTheme(),
	"Lantern": lanternTheme(),
	"Atlas":   atlasTheme(),
}

var themeOrder = []string{"Harbor", "Lantern", "Atlas"}

// GetTheme returns a theme by name, falling back to the default theme.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[defaultThemeName]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

// harborTheme is night water: navy panels, sea-glass accents.
func harborTheme() Theme {
	return Theme{
		Name: "Harbor",

		Background: "#0e1620",
		Surface:    "#152231",
		SurfaceAlt: "#1b2b3d",
		FocusBg:    "#213449",

		SelectionBg:   "#1f4a5c",
		SelectionText: "#e4ecef",

		Border:      "#34506a",
		BorderMuted: "#1b2b3d",
		BorderFocus: "#5fb3b3",

		Text:    "#d8e1e6",
		Muted:   "#9fb0bc",
		Faint:   "#647888",
		Accent:  "#5fb3b3",
		Success: "#8cc59a",
		Warning: "#e8c170",
		Danger:  "#e06c75",
		Info:    "#6aaedc",

		CategoryColors: map[book.Category]string{
			book.CategoryAccommodation:  "#a48fd8",
			book.CategorySightseeing:    "#6aaedc",
			book.CategoryFood:           "#ee9a5d",
			book.CategoryEntertainment:  "#e07fb5",
			book.CategoryShopping:       "#e8c170",
			book.CategoryTransportation: "#5fb3b3",
		},
	}
}

// lanternTheme is warm evening streets: charcoal panels, paper-lantern amber.
func lanternTheme() Theme {
	return Theme{
		Name: "Lantern",

		Background: "#17130f",
		Surface:    "#211b16",
		SurfaceAlt: "#2b241d",
		FocusBg:    "#352c23",

		SelectionBg:   "#5a3b22",
		SelectionText: "#f2e6d4",

		Border:      "#57483a",
		BorderMuted: "#2b241d",
		BorderFocus: "#f0a04b",

		Text:    "#ebdfcc",
		Muted:   "#bba98f",
		Faint:   "#7d6d5b",
		Accent:  "#f0a04b",
		Success: "#a3be6e",
		Warning: "#f3c969",
		Danger:  "#d9604c",
		Info:    "#86b3b0",

		CategoryColors: map[book.Category]string{
			book.CategoryAccommodation:  "#b99ad1",
			book.CategorySightseeing:    "#86b3b0",
			book.CategoryFood:           "#f0a04b",
			book.CategoryEntertainment:  "#e58aa0",
			book.CategoryShopping:       "#f3c969",
			book.CategoryTransportation: "#9cb7d8",
		},
	}
}

// atlasTheme is an ink-on-map palette: cool grey panels, contour greens.
func atlasTheme() Theme {
	return Theme{
		Name: "Atlas",

		Background: "#0b0f14",
		Surface:    "#131a21",
		SurfaceAlt: "#1c252e",
		FocusBg:    "#24303b",

		SelectionBg:   "#2f6b4f",
		SelectionText: "#f3f6f4",

		Border:      "#3a4855",
		BorderMuted: "#1c252e",
		BorderFocus: "#7fcf9f",

		Text:    "#e6ebe8",
		Muted:   "#a2aeb0",
		Faint:   "#66747a",
		Accent:  "#7fcf9f",
		Success: "#5cc27e",
		Warning: "#e9b949",
		Danger:  "#ea5a5a",
		Info:    "#58b4d1",

		CategoryColors: map[book.Category]string{
			book.CategoryAccommodation:  "#9b8fe6",
			book.CategorySightseeing:    "#58b4d1",
			book.CategoryFood:           "#f28c4e",
			book.CategoryEntertainment:  "#ee78a8",
			book.CategoryShopping:       "#e9b949",
			book.CategoryTransportation: "#7fcf9f",
		},
	}
}
