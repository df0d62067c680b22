package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle renders text segments on one background color. Lipgloss resets
// all attributes between separately styled segments, so plain spaces
// between them would show the terminal background; every space rendered
// here carries the background instead.
// See: https://github.com/charmbracelet/lipgloss/discussions/78
type BgStyle struct {
	bg   lipgloss.Color
	base lipgloss.Style
}

// NewBgStyle creates a background helper for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	bg := lipgloss.Color(bgColor)
	return BgStyle{bg: bg, base: lipgloss.NewStyle().Background(bg)}
}

// Render renders text with style on the background. Runs of spaces keep
// their width.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}

	var out strings.Builder
	for i, word := range strings.Split(text, " ") {
		if i > 0 {
			out.WriteString(b.base.Render(" "))
		}
		if word != "" {
			out.WriteString(styled.Render(word))
		}
	}
	return out.String()
}

// Space returns a single styled space.
func (b BgStyle) Space() string {
	return b.base.Render(" ")
}

// Spaces returns n styled spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.base.Render(strings.Repeat(" ", n))
}

// Sep returns a styled separator string.
func (b BgStyle) Sep(sep string) string {
	return b.base.Render(sep)
}

// Join joins parts with a styled separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}

// Color returns the background color.
func (b BgStyle) Color() lipgloss.Color {
	return b.bg
}

// FillLine pads rendered content to width with the background color.
func (b BgStyle) FillLine(content string, width int) string {
	return b.base.Width(width).Render(content)
}

// Field renders "label value" with the label padded to labelWidth.
func (b BgStyle) Field(label, value string, labelWidth int, labelStyle, valueStyle lipgloss.Style) string {
	return b.Render(padRight(label, labelWidth), labelStyle) + b.Render(value, valueStyle)
}

// Bar renders a horizontal bar of width cells with filled of them solid.
func (b BgStyle) Bar(filled, width int, fillStyle, emptyStyle lipgloss.Style) string {
	filled = max(0, min(filled, width))
	return b.Render(strings.Repeat("█", filled), fillStyle) +
		b.Render(strings.Repeat("·", width-filled), emptyStyle)
}
