package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/state"
)

const departureLayout = "2006-01-02 15:04"

// sortedMemos returns pinned memos first, each group newest first.
func (m Model) sortedMemos() []book.Memo {
	if m.snapshot.Current == nil {
		return nil
	}
	memos := append([]book.Memo(nil), m.snapshot.Current.Memos...)
	sort.SliceStable(memos, func(i, j int) bool {
		if memos[i].Pinned != memos[j].Pinned {
			return memos[i].Pinned
		}
		return memos[i].CreatedAt.After(memos[j].CreatedAt)
	})
	return memos
}

func (m Model) handleMemosKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.ticketsFocus = false
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.ticketsFocus = true
		return m, nil
	}
	if m.ticketsFocus {
		return m.handleTicketsKey(msg)
	}

	memos := m.sortedMemos()
	if key.Matches(msg, m.keys.New) {
		m.modal = memoForm(m.store, nil)
		return m, nil
	}
	if len(memos) == 0 {
		return m, nil
	}
	selected := memos[clampCursor(m.memoCursor, len(memos))]

	switch {
	case key.Matches(msg, m.keys.Up):
		m.memoCursor = clampCursor(m.memoCursor-1, len(memos))
	case key.Matches(msg, m.keys.Down):
		m.memoCursor = clampCursor(m.memoCursor+1, len(memos))
	case key.Matches(msg, m.keys.Top):
		m.memoCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.memoCursor = len(memos) - 1

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Confirm):
		m.modal = memoForm(m.store, &selected)

	case key.Matches(msg, m.keys.Pin):
		m.store.TogglePin(selected.ID)
		// Follow the memo to its new place in the list.
		m.syncSnapshot()
		for i, memo := range m.sortedMemos() {
			if memo.ID == selected.ID {
				m.memoCursor = i
			}
		}

	case key.Matches(msg, m.keys.Delete):
		store, id := m.store, selected.ID
		m.modal = confirmModal{
			prompt: fmt.Sprintf("Delete memo %q?", selected.Title),
			onConfirm: func() tea.Cmd {
				store.DeleteMemo(id)
				return statusCmd(statusSuccess, "Memo deleted")
			},
		}
	}
	return m, nil
}

func (m Model) handleTicketsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.New) {
		m.modal = ticketForm(m.store)
		return m, nil
	}
	tickets := m.snapshot.Current.Tickets
	if len(tickets) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.ticketCursor = clampCursor(m.ticketCursor-1, len(tickets))
	case key.Matches(msg, m.keys.Down):
		m.ticketCursor = clampCursor(m.ticketCursor+1, len(tickets))
	case key.Matches(msg, m.keys.Top):
		m.ticketCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.ticketCursor = len(tickets) - 1
	case key.Matches(msg, m.keys.Delete):
		t := tickets[clampCursor(m.ticketCursor, len(tickets))]
		store := m.store
		m.modal = confirmModal{
			prompt: fmt.Sprintf("Delete the %s ticket %s → %s?", t.Mode, t.From, t.To),
			onConfirm: func() tea.Cmd {
				store.DeleteTicket(t.ID)
				return statusCmd(statusSuccess, "Ticket deleted")
			},
		}
	}
	return m, nil
}

func memoForm(store *state.Store, existing *book.Memo) formModal {
	if existing == nil {
		return newFormModal("New memo",
			func(values map[string]string) (tea.Cmd, error) {
				if _, err := store.AddMemo(values["title"], values["content"]); err != nil {
					return nil, err
				}
				return statusCmd(statusSuccess, "Memo added"), nil
			},
			newField("title", "Title", "", "Packing list"),
			newField("content", "Content", "", ""),
		)
	}
	id := existing.ID
	return newFormModal("Edit memo",
		func(values map[string]string) (tea.Cmd, error) {
			if err := store.UpdateMemo(id, values["title"], values["content"]); err != nil {
				return nil, err
			}
			return statusCmd(statusSuccess, "Memo updated"), nil
		},
		newField("title", "Title", existing.Title, ""),
		newField("content", "Content", existing.Content, ""),
	)
}

func ticketForm(store *state.Store) formModal {
	return newFormModal("New ticket",
		func(values map[string]string) (tea.Cmd, error) {
			t := book.Ticket{
				Mode:      book.TransportMode(strings.ToLower(values["mode"])),
				From:      values["from"],
				To:        values["to"],
				Reference: values["reference"],
				Notes:     values["notes"],
			}
			if raw := values["departure"]; raw != "" {
				dep, err := time.ParseInLocation(departureLayout, raw, time.Local)
				if err != nil {
					return nil, book.FieldErrors{"departure": "Use the form " + departureLayout}
				}
				t.Departure = &dep
			}
			if _, err := store.AddTicket(t); err != nil {
				return nil, err
			}
			return statusCmd(statusSuccess, "Ticket added"), nil
		},
		newField("mode", "Mode", string(book.ModeTrain), strings.Join(modeNames(), ", ")),
		newField("from", "From", "", "Tokyo"),
		newField("to", "To", "", "Kyoto"),
		newField("departure", "Departure", "", "optional, "+departureLayout),
		newField("reference", "Reference", "", "booking code"),
		newField("notes", "Notes", "", ""),
	)
}

func (m Model) renderMemos() string {
	height := m.contentHeight()
	memos := m.sortedMemos()
	tickets := m.snapshot.Current.Tickets

	memoTitle := fmt.Sprintf("Memos (%d)", len(memos))
	ticketTitle := fmt.Sprintf("Tickets (%d)", len(tickets))

	if m.width < LayoutSplitWidth {
		memoHeight := height * 2 / 3
		top := m.renderTitledBox(memoTitle, m.renderMemoList(m.width-4, memoHeight-2), m.width, memoHeight, !m.ticketsFocus)
		bottom := m.renderTitledBox(ticketTitle, m.renderTicketList(m.width-4, height-memoHeight-2), m.width, height-memoHeight, m.ticketsFocus)
		return top + "\n" + bottom
	}

	leftWidth := m.width * 3 / 5
	rightWidth := m.width - leftWidth
	left := m.renderTitledBox(memoTitle, m.renderMemoList(leftWidth-4, height-2), leftWidth, height, !m.ticketsFocus)
	right := m.renderTitledBox(ticketTitle, m.renderTicketList(rightWidth-4, height-2), rightWidth, height, m.ticketsFocus)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderMemoList lists titles and shows the selected memo's content below.
func (m Model) renderMemoList(width, height int) string {
	bgColor := ternary(m.ticketsFocus, m.theme.SurfaceAlt, m.theme.FocusBg)
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	memos := m.sortedMemos()

	if len(memos) == 0 {
		return bg.FillLine(bg.Render("No memos yet. Press n to write one.", styles.MutedText), width)
	}

	listHeight := maxInt(height/2, 3)
	start, end := listWindow(len(memos), m.memoCursor, listHeight)
	var lines []string
	for i := start; i < end; i++ {
		memo := memos[i]
		pin := ternary(memo.Pinned, "★ ", "  ")
		label := pin + padRight(truncate(memo.Title, width-14), width-14) + memo.CreatedAt.Format(" Jan 02")
		if i == m.memoCursor && !m.ticketsFocus {
			lines = append(lines, styles.Selected.Width(width).Render(label))
			continue
		}
		style := ternaryStyle(memo.Pinned, styles.WarningText, styles.Text)
		lines = append(lines, bg.FillLine(bg.Render(label, style), width))
	}

	selected := memos[clampCursor(m.memoCursor, len(memos))]
	lines = append(lines, bg.FillLine(bg.Render(strings.Repeat("─", width), styles.FaintText), width))
	body := lipgloss.NewStyle().Width(width).Render(selected.Content)
	for _, line := range strings.Split(body, "\n") {
		lines = append(lines, bg.FillLine(bg.Render(line, styles.Text), width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTicketList(width, height int) string {
	bgColor := ternary(m.ticketsFocus, m.theme.FocusBg, m.theme.SurfaceAlt)
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	tickets := m.snapshot.Current.Tickets

	if len(tickets) == 0 {
		return bg.FillLine(bg.Render("No tickets. Press l then n to add one.", styles.MutedText), width)
	}

	start, end := listWindow(len(tickets), m.ticketCursor, height/2)
	var lines []string
	for i := start; i < end; i++ {
		t := tickets[i]
		when := "open date"
		if t.Departure != nil {
			when = t.Departure.Format(departureLayout)
		}
		label := fmt.Sprintf("%-5s %s → %s", titleCase(string(t.Mode)), t.From, t.To)
		if i == m.ticketCursor && m.ticketsFocus {
			lines = append(lines, styles.Selected.Width(width).Render(truncate(label, width)))
		} else {
			lines = append(lines, bg.FillLine(bg.Render(truncate(label, width), styles.Text), width))
		}
		detail := "  " + when
		if t.Reference != "" {
			detail += " · " + t.Reference
		}
		lines = append(lines, bg.FillLine(bg.Render(truncate(detail, width), styles.MutedText), width))
	}
	return strings.Join(lines, "\n")
}
