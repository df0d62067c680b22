package ui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/logtail"
)

// logState holds the activity view state.
type logState struct {
	entries  []logtail.Entry
	follow   bool
	minLevel slog.Level
	lastErr  error
	loaded   bool
}

func newLogState() logState {
	return logState{follow: true, minLevel: slog.LevelInfo}
}

type logEntriesMsg struct {
	entries []logtail.Entry
	err     error
}

// initLogViewport initializes the log viewport.
func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(maxInt(m.width-4, 1), maxInt(m.height-5, 1))
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport sizes the viewport and re-renders its content.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.initLogViewport()
	}
	// Box inner height = content height minus the two borders.
	m.logViewport.Width = maxInt(m.width-4, 1)
	m.logViewport.Height = maxInt(m.contentHeight()-2, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// refreshLogs reads the log tail off the event loop.
func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path, minLevel := m.logPath, m.logState.minLevel
	return func() tea.Msg {
		entries, err := logtail.ReadEntries(path, LogTailLines, minLevel)
		return logEntriesMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogEntries(msg logEntriesMsg) {
	m.logState.lastErr = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.loaded = true
	m.updateLogViewport()
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.prefs.ActivityLevel = m.logState.minLevel.String()
		m.savePrefs()
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}

// renderLogContent colors each entry by level.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := m.logViewport.Width

	if m.logState.lastErr != nil {
		return bg.FillLine(bg.Render("Cannot read log: "+m.logState.lastErr.Error(), styles.DangerText), width)
	}
	if len(m.logState.entries) == 0 {
		msg := "Loading..."
		if m.logState.loaded {
			msg = "No log entries at this level yet."
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), width)
	}

	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		line := truncate(formatEntry(e), width)
		lines = append(lines, bg.FillLine(bg.Render(line, m.levelStyle(e, styles)), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(e logtail.Entry, styles Styles) lipgloss.Style {
	if !e.Parsed {
		return styles.FaintText
	}
	switch {
	case e.Level >= slog.LevelError:
		return styles.DangerText
	case e.Level >= slog.LevelWarn:
		return styles.WarningText
	case e.Level >= slog.LevelInfo:
		return styles.Text
	default:
		return styles.MutedText
	}
}

func (m Model) renderActivity() string {
	title := fmt.Sprintf("Activity · %s · ≥%s · %s",
		filepath.Base(m.logPath), m.logState.minLevel, ternary(m.logState.follow, "following", "paused"))
	if m.logPath == "" {
		title = "Activity"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.contentHeight(), true)
}
