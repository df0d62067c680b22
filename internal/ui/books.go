package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/state"
)

const dateLayout = "2006-01-02"

type openedBookMsg struct {
	id string
}

func (m Model) handleBooksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	books := m.snapshot.Books

	switch {
	case key.Matches(msg, m.keys.New):
		m.modal = bookForm(m.ctx, m.store, nil, m.now())
		return m, nil
	}

	if len(books) == 0 {
		return m, nil
	}
	selected := books[clampCursor(m.bookCursor, len(books))]

	switch {
	case key.Matches(msg, m.keys.Up):
		m.bookCursor = clampCursor(m.bookCursor-1, len(books))
	case key.Matches(msg, m.keys.Down):
		m.bookCursor = clampCursor(m.bookCursor+1, len(books))
	case key.Matches(msg, m.keys.Top):
		m.bookCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.bookCursor = len(books) - 1

	case key.Matches(msg, m.keys.Confirm):
		return m.openBook(selected.ID)

	case key.Matches(msg, m.keys.Edit):
		if !m.isCurrent(selected.ID) {
			m.setStatus(statusWarning, "Open the book to edit it")
			return m, nil
		}
		m.modal = bookForm(m.ctx, m.store, m.snapshot.Current, m.now())

	case key.Matches(msg, m.keys.Delete):
		ctx, store, id := m.ctx, m.store, selected.ID
		m.modal = confirmModal{
			prompt: fmt.Sprintf("Delete %q and everything in it?", selected.Title),
			onConfirm: func() tea.Cmd {
				return waitSaveCmd("Book deleted", store.DeleteBook(ctx, id))
			},
		}
	}
	return m, nil
}

func (m Model) isCurrent(id string) bool {
	return m.snapshot.Current != nil && m.snapshot.Current.ID == id
}

// openBook makes id the current book. Pending edits to another book are
// saved first, since selecting replaces the working copy.
func (m Model) openBook(id string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if !m.isCurrent(id) {
		if m.snapshot.HasCurrent && m.snapshot.Dirty {
			cmd = waitSaveCmd("Saved "+m.snapshot.Current.Title, m.store.Save(m.ctx))
		}
		m.store.Select(id)
	}
	m.handleOpenedBook(id)
	return m, cmd
}

func (m *Model) handleOpenedBook(id string) {
	m.prefs.LastBook = id
	m.savePrefs()
	m.currentView = ViewPlanner
	m.stopCursor, m.routeCursor, m.routesFocus = 0, 0, false
	m.poiCursor, m.memoCursor, m.ticketCursor = 0, 0, 0
}

// bookForm creates a new book, or edits existing when it is non-nil.
func bookForm(ctx context.Context, store *state.Store, existing *book.Book, now time.Time) formModal {
	if existing == nil {
		return newFormModal("New travel book",
			func(values map[string]string) (tea.Cmd, error) {
				b, errs := parseBookValues(values)
				if errs != nil {
					return nil, errs
				}
				id, res, err := store.CreateBook(ctx, b)
				if err != nil {
					return nil, err
				}
				store.Select(id)
				return tea.Batch(
					waitSaveCmd("Book created", res),
					func() tea.Msg { return openedBookMsg{id: id} },
				), nil
			},
			newField("title", "Title", "", "Kyoto in spring"),
			newField("destination", "Destination", "", "Kyoto, Japan"),
			newField("startDate", "Start date", now.Format(dateLayout), dateLayout),
			newField("endDate", "End date", "", "optional, "+dateLayout),
			newField("companions", "Companions", "", "comma separated"),
			newField("description", "Description", "", ""),
		)
	}

	end := ""
	if existing.EndDate != nil {
		end = existing.EndDate.Format(dateLayout)
	}
	return newFormModal("Edit travel book",
		func(values map[string]string) (tea.Cmd, error) {
			b, errs := parseBookValues(values)
			if errs != nil {
				return nil, errs
			}
			patch := state.BookPatch{
				Title:        &b.Title,
				Description:  &b.Description,
				Destination:  &b.Destination,
				StartDate:    &b.StartDate,
				EndDate:      b.EndDate,
				ClearEndDate: b.EndDate == nil,
				Companions:   b.Companions,
			}
			if patch.Companions == nil {
				patch.Companions = []string{}
			}
			if err := store.UpdateBook(patch); err != nil {
				return nil, err
			}
			return statusCmd(statusSuccess, "Book updated"), nil
		},
		newField("title", "Title", existing.Title, ""),
		newField("destination", "Destination", existing.Destination, ""),
		newField("startDate", "Start date", existing.StartDate.Format(dateLayout), dateLayout),
		newField("endDate", "End date", end, "optional, "+dateLayout),
		newField("companions", "Companions", strings.Join(existing.Companions, ", "), "comma separated"),
		newField("description", "Description", existing.Description, ""),
	)
}

// parseBookValues turns form values into a book, reporting unparsable
// dates as field errors before the domain validation runs.
func parseBookValues(values map[string]string) (book.Book, book.FieldErrors) {
	errs := book.FieldErrors{}
	b := book.Book{
		Title:       values["title"],
		Destination: values["destination"],
		Description: values["description"],
		Companions:  splitList(values["companions"]),
	}

	start, err := time.ParseInLocation(dateLayout, values["startDate"], time.Local)
	if err != nil {
		errs.Add("startDate", "Use the form "+dateLayout)
	}
	b.StartDate = start

	if raw := values["endDate"]; raw != "" {
		end, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			errs.Add("endDate", "Use the form "+dateLayout)
		} else {
			b.EndDate = &end
		}
	}

	if len(errs) > 0 {
		return b, errs
	}
	if verr := book.ValidateBook(b); verr != nil {
		return b, verr
	}
	return b, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// formatTripDates renders "2026-04-01 → 2026-04-05".
func formatTripDates(b book.Book) string {
	if b.StartDate.IsZero() {
		return "no dates"
	}
	out := b.StartDate.Format(dateLayout)
	if b.EndDate != nil {
		out += " → " + b.EndDate.Format(dateLayout)
	}
	return out
}

func (m Model) renderBooks() string {
	height := m.contentHeight()
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := maxInt(m.width-4, 10)

	books := m.snapshot.Books
	title := fmt.Sprintf("Travel Books (%d)", len(books))
	if len(books) == 0 {
		content := bg.Render("No travel books yet. Press n to create one.", styles.MutedText)
		return m.renderTitledBox(title, content, m.width, height, true)
	}

	compact := m.width < LayoutCompactWidth
	titleWidth := ternaryInt(compact, width-20, width/3)
	destWidth := maxInt(width/5, 10)

	start, end := listWindow(len(books), m.bookCursor, height-2)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		b := books[i]
		marker := "  "
		if m.isCurrent(b.ID) {
			marker = ternary(m.snapshot.Dirty, "✎ ", "● ")
		}
		row := marker + padRight(truncate(b.Title, titleWidth), titleWidth)
		if !compact {
			row += "  " + padRight(truncate(b.Destination, destWidth), destWidth) +
				"  " + padRight(formatTripDates(b), 25) +
				fmt.Sprintf("  %2dd  %3d places", b.DayCount(), len(b.POIs))
		} else {
			row += fmt.Sprintf(" %2dd", b.DayCount())
		}

		if i == m.bookCursor {
			lines = append(lines, styles.Selected.Width(width).Render(row))
			continue
		}
		style := styles.Text
		if m.isCurrent(b.ID) {
			style = styles.AccentText
		}
		lines = append(lines, bg.FillLine(bg.Render(row, style), width))
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
