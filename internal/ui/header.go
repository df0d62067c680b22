package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/state"
)

// renderHeader renders the logo, the open book and its save state.
func (m Model) renderHeader() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	left := bg.Render("tripbook", styles.Logo)
	if cur := m.snapshot.Current; cur != nil {
		left += bg.Render(" │ ", styles.FaintText) + bg.Render(truncate(cur.Title, maxInt(m.width/3, 10)), styles.Text.Bold(true))
		if cur.Destination != "" && m.width >= LayoutCompactWidth {
			left += bg.Render(" · "+cur.Destination, styles.MutedText)
		}
		left += bg.Space() + m.renderSaveState(bg, styles)
	} else {
		left += bg.Render(" │ no book open", styles.MutedText)
	}

	var right []string
	if m.backend != "" {
		right = append(right, bg.Render(m.backend, styles.InfoText))
	}
	if m.logPath != "" && m.width >= LayoutCompactWidth {
		right = append(right, bg.Render(truncateMiddle(m.logPath, 32), styles.FaintText))
	}
	rightStr := bg.Join(right, " · ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		return bg.FillLine(bg.Space()+left, m.width)
	}
	return bg.FillLine(bg.Space()+left+bg.Spaces(gap)+rightStr, m.width)
}

// renderSaveState shows unsaved changes first, then the last save error,
// then when the book was last written.
func (m Model) renderSaveState(bg BgStyle, styles Styles) string {
	switch {
	case m.snapshot.Dirty:
		return bg.Render("● unsaved", styles.WarningText)
	case m.snapshot.LastSaveError != nil:
		return bg.Render("✗ save failed", styles.DangerText)
	case !m.snapshot.LastSaved.IsZero():
		return bg.Render("✓ saved "+humanizeDuration(m.now().Sub(m.snapshot.LastSaved)), styles.SuccessText)
	default:
		return bg.Render("✓", styles.SuccessText)
	}
}

// renderCommandBar renders the numbered view tabs.
func (m Model) renderCommandBar() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		switch {
		case v == m.currentView:
			tabs = append(tabs, styles.Selected.Padding(0, 1).Render(label))
		case v.needsBook() && !m.snapshot.HasCurrent:
			tabs = append(tabs, bg.Spaces(1)+bg.Render(label, styles.FaintText)+bg.Spaces(1))
		default:
			tabs = append(tabs, bg.Spaces(1)+bg.Render(label, styles.MutedText)+bg.Spaces(1))
		}
	}
	bar := bg.Space() + strings.Join(tabs, bg.Space())

	hint := bg.Render("? help", styles.FaintText)
	gap := m.width - lipgloss.Width(bar) - lipgloss.Width(hint) - 1
	if gap < 1 {
		return bg.FillLine(bar, m.width)
	}
	return bg.FillLine(bar+bg.Spaces(gap)+hint, m.width)
}

// renderStatusLine renders the last status message or a context hint.
func (m Model) renderStatusLine() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	if m.status == "" {
		return bg.FillLine(bg.Space()+bg.Render(m.contextHint(), styles.FaintText), m.width)
	}

	var style lipgloss.Style
	switch m.statusLevel {
	case statusSuccess:
		style = styles.SuccessText
	case statusWarning:
		style = styles.WarningText
	case statusError:
		style = styles.DangerText
	default:
		style = styles.InfoText
	}
	return bg.FillLine(bg.Space()+bg.Render(truncate(m.status, maxInt(m.width-2, 1)), style), m.width)
}

func (m Model) contextHint() string {
	switch m.currentView {
	case ViewBooks:
		return "enter open · n new · e edit · d delete"
	case ViewPOIs:
		return "/ search · c category · s sort · n add · N add child · v pin to canvas"
	case ViewPlanner:
		if m.activePhase() == state.PhaseSelection {
			return "[ ] day · space select · o confirm order"
		}
		return "[ ] day · K/J move · r route · b back · X reset day"
	case ViewMemos:
		return "n new · p pin · h/l memos/tickets"
	case ViewActivity:
		return fmt.Sprintf("f follow · L level · %s", filepath.Base(m.logPath))
	}
	return ""
}
