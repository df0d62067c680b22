package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/collection"
	"github.com/five82/tripbook/internal/state"
)

func (m Model) activeDay() int {
	return m.snapshot.ActiveDay
}

func (m Model) activePhase() state.Phase {
	return m.snapshot.Phase(m.activeDay())
}

// activeItinerary returns the plan of the active day; days never touched
// have an empty one.
func (m Model) activeItinerary() book.DailyItinerary {
	if m.snapshot.Current == nil {
		return book.DailyItinerary{}
	}
	it, _ := m.snapshot.Current.Itinerary(m.activeDay())
	return it
}

// plannerStops lists every place while selecting and the ordered stops
// while ordering.
func (m Model) plannerStops() []book.POI {
	cur := m.snapshot.Current
	if cur == nil {
		return nil
	}
	if m.activePhase() == state.PhaseSelection {
		return collection.Apply(cur.POIs, collection.Filter{Sort: collection.SortNameAsc})
	}
	it := m.activeItinerary()
	stops := make([]book.POI, 0, len(it.OrderedPOIs))
	for _, o := range orderedByPosition(it.OrderedPOIs) {
		if p, ok := cur.POI(o.POIID); ok {
			stops = append(stops, p)
		}
	}
	return stops
}

func orderedByPosition(ordered []book.OrderedPOI) []book.OrderedPOI {
	out := append([]book.OrderedPOI(nil), ordered...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// orderOf returns the 1-based position of poiID in the active day.
func (m Model) orderOf(poiID string) int {
	for _, o := range m.activeItinerary().OrderedPOIs {
		if o.POIID == poiID {
			return o.Order
		}
	}
	return 0
}

func (m Model) handlePlannerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	day := m.activeDay()

	switch {
	case key.Matches(msg, m.keys.PrevDay):
		m.store.ChangeDay(day - 1)
		m.stopCursor, m.routeCursor = 0, 0
		return m, nil

	case key.Matches(msg, m.keys.NextDay):
		m.store.ChangeDay(day + 1)
		m.stopCursor, m.routeCursor = 0, 0
		return m, nil

	case key.Matches(msg, m.keys.ResetDay):
		store := m.store
		m.modal = confirmModal{
			prompt: fmt.Sprintf("Clear the whole plan for day %d?", day),
			onConfirm: func() tea.Cmd {
				store.ResetDay(day)
				return statusCmd(statusWarning, fmt.Sprintf("Day %d cleared", day))
			},
		}
		return m, nil
	}

	if m.activePhase() == state.PhaseSelection {
		return m.handleSelectionKey(msg, day)
	}
	return m.handleOrderingKey(msg, day)
}

func (m Model) handleSelectionKey(msg tea.KeyMsg, day int) (Model, tea.Cmd) {
	stops := m.plannerStops()

	switch {
	case key.Matches(msg, m.keys.ConfirmOrdering):
		if !m.store.ConfirmOrdering(day) {
			m.setStatus(statusWarning, "Select at least two places to start ordering")
			return m, nil
		}
		m.stopCursor = 0
		m.setStatus(statusSuccess, fmt.Sprintf("Day %d ready for ordering", day))
		return m, nil
	}

	if len(stops) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.stopCursor = clampCursor(m.stopCursor-1, len(stops))
	case key.Matches(msg, m.keys.Down):
		m.stopCursor = clampCursor(m.stopCursor+1, len(stops))
	case key.Matches(msg, m.keys.Top):
		m.stopCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.stopCursor = len(stops) - 1
	case key.Matches(msg, m.keys.ToggleStop), key.Matches(msg, m.keys.Confirm):
		m.store.ToggleSelection(day, stops[clampCursor(m.stopCursor, len(stops))].ID)
	}
	return m, nil
}

func (m Model) handleOrderingKey(msg tea.KeyMsg, day int) (Model, tea.Cmd) {
	stops := m.plannerStops()
	it := m.activeItinerary()

	switch {
	case key.Matches(msg, m.keys.Left):
		m.routesFocus = false
		return m, nil
	case key.Matches(msg, m.keys.Right):
		m.routesFocus = true
		return m, nil

	case key.Matches(msg, m.keys.BackToSelection):
		store := m.store
		back := func() tea.Cmd {
			store.BackToSelection(day)
			return statusCmd(statusInfo, fmt.Sprintf("Day %d back to selection", day))
		}
		if len(it.Routes) == 0 {
			m.stopCursor = 0
			return m, back()
		}
		m.modal = confirmModal{
			prompt:    fmt.Sprintf("Go back to selection? The order and %d route(s) of day %d are cleared.", len(it.Routes), day),
			onConfirm: back,
		}
		return m, nil

	case key.Matches(msg, m.keys.AddRoute):
		if len(stops) < 2 {
			return m, nil
		}
		from := stops[clampCursor(m.stopCursor, len(stops))]
		m.modal = routeForm(m.store, day, from, m.orderOf(from.ID), it.OrderedPOIs)
		return m, nil
	}

	if m.routesFocus {
		routes := it.Routes
		if len(routes) == 0 {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Up):
			m.routeCursor = clampCursor(m.routeCursor-1, len(routes))
		case key.Matches(msg, m.keys.Down):
			m.routeCursor = clampCursor(m.routeCursor+1, len(routes))
		case key.Matches(msg, m.keys.Top):
			m.routeCursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.routeCursor = len(routes) - 1
		case key.Matches(msg, m.keys.Delete):
			m.store.DeleteRoute(day, routes[clampCursor(m.routeCursor, len(routes))].ID)
		}
		return m, nil
	}

	if len(stops) == 0 {
		return m, nil
	}
	selected := stops[clampCursor(m.stopCursor, len(stops))]

	switch {
	case key.Matches(msg, m.keys.Up):
		m.stopCursor = clampCursor(m.stopCursor-1, len(stops))
	case key.Matches(msg, m.keys.Down):
		m.stopCursor = clampCursor(m.stopCursor+1, len(stops))
	case key.Matches(msg, m.keys.Top):
		m.stopCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.stopCursor = len(stops) - 1

	case key.Matches(msg, m.keys.MoveUp):
		if err := m.store.MoveOrdered(day, selected.ID, -1); err == nil {
			m.stopCursor = clampCursor(m.stopCursor-1, len(stops))
		}
	case key.Matches(msg, m.keys.MoveDown):
		if err := m.store.MoveOrdered(day, selected.ID, 1); err == nil {
			m.stopCursor = clampCursor(m.stopCursor+1, len(stops))
		}

	case key.Matches(msg, m.keys.ToggleStop), key.Matches(msg, m.keys.Delete):
		m.store.ToggleSelection(day, selected.ID)
		m.setStatus(statusInfo, fmt.Sprintf("Removed %q from day %d", selected.Name, day))
	}
	return m, nil
}

// routeForm adds a route leaving from. The destination is entered as its
// stop number.
func routeForm(store *state.Store, day int, from book.POI, fromOrder int, ordered []book.OrderedPOI) formModal {
	modeHint := strings.Join(modeNames(), ", ")
	title := fmt.Sprintf("Route from %d. %s", fromOrder, from.Name)
	return newFormModal(title,
		func(values map[string]string) (tea.Cmd, error) {
			n, err := strconv.Atoi(values["to"])
			if err != nil {
				return nil, book.FieldErrors{"to": "Enter a stop number"}
			}
			to := ""
			for _, o := range ordered {
				if o.Order == n {
					to = o.POIID
				}
			}
			if to == "" {
				return nil, book.FieldErrors{"to": fmt.Sprintf("Day %d has no stop %d", day, n)}
			}
			mode := book.TransportMode(strings.ToLower(values["mode"]))
			if parsed, ok := book.ParseTransportMode(values["mode"]); ok {
				mode = parsed
			}
			if _, err := store.AddRoute(day, from.ID, to, mode, values["duration"]); err != nil {
				return nil, err
			}
			return statusCmd(statusSuccess, "Route added"), nil
		},
		newField("to", "To stop #", strconv.Itoa(fromOrder+1), "stop number"),
		newField("mode", "Mode", string(book.ModeWalk), modeHint),
		newField("duration", "Duration", "", "15 minutes"),
	)
}

func modeNames() []string {
	out := make([]string, len(book.TransportModes))
	for i, mode := range book.TransportModes {
		out[i] = string(mode)
	}
	return out
}

func (m Model) renderPlanner() string {
	height := m.contentHeight()
	cur := m.snapshot.Current
	day := m.activeDay()
	phase := m.activePhase()

	title := fmt.Sprintf("Day %d of %d · %s · %s",
		day, cur.DayCount(), cur.DayDate(day).Format("Mon 2006-01-02"), titleCase(phase.String()))

	if phase == state.PhaseSelection {
		return m.renderTitledBox(title, m.renderSelection(), m.width, height, true)
	}

	if m.width < LayoutSplitWidth {
		stopsHeight := height / 2
		stops := m.renderTitledBox(title, m.renderStops(m.width-4, stopsHeight-2), m.width, stopsHeight, !m.routesFocus)
		routes := m.renderTitledBox(m.routesTitle(), m.renderRoutes(m.width-4), m.width, height-stopsHeight, m.routesFocus)
		return stops + "\n" + routes
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth
	left := m.renderTitledBox(title, m.renderStops(leftWidth-4, height-2), leftWidth, height, !m.routesFocus)
	right := m.renderTitledBox(m.routesTitle(), m.renderRoutes(rightWidth-4), rightWidth, height, m.routesFocus)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) routesTitle() string {
	return fmt.Sprintf("Routes (%d)", len(m.activeItinerary().Routes))
}

// renderDayTabs shows every trip day with the active one highlighted and a
// mark on days that already have a plan.
func (m Model) renderDayTabs(styles Styles, bg BgStyle) string {
	cur := m.snapshot.Current
	n := cur.DayCount()
	parts := make([]string, 0, n)
	for d := 1; d <= n; d++ {
		label := fmt.Sprintf("Day %d", d)
		if it, idx := cur.Itinerary(d); idx >= 0 && len(it.SelectedPOIIDs) > 0 {
			label += ternary(m.snapshot.Phase(d) == state.PhaseOrdering, " ✓", " •")
		}
		if d == m.activeDay() {
			parts = append(parts, styles.Selected.Render(" "+label+" "))
			continue
		}
		parts = append(parts, bg.Render(" "+label+" ", styles.MutedText))
	}
	return bg.Join(parts, " ")
}

func (m Model) renderSelection() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := maxInt(m.width-4, 10)
	it := m.activeItinerary()

	var b strings.Builder
	b.WriteString(bg.FillLine(m.renderDayTabs(styles, bg), width))
	b.WriteString("\n")
	hint := fmt.Sprintf("%d selected · space toggles · o confirms the selection", len(it.SelectedPOIIDs))
	b.WriteString(bg.FillLine(bg.Render(hint, styles.MutedText), width))
	b.WriteString("\n")
	b.WriteString(bg.FillLine("", width))
	b.WriteString("\n")

	stops := m.plannerStops()
	if len(stops) == 0 {
		b.WriteString(bg.FillLine(bg.Render("This book has no places yet. Add some in the Places view.", styles.MutedText), width))
		return b.String()
	}

	start, end := listWindow(len(stops), m.stopCursor, m.contentHeight()-5)
	for i := start; i < end; i++ {
		p := stops[i]
		check := ternary(it.IsSelected(p.ID), "[x]", "[ ]")
		line := check + " " + padRight(truncate(p.Name, width/2), width/2) + "  " + titleCase(string(p.Category))
		if i == m.stopCursor {
			b.WriteString(styles.Selected.Width(width).Render(line))
		} else {
			checkStyle := ternaryStyle(it.IsSelected(p.ID), styles.SuccessText, styles.FaintText)
			b.WriteString(bg.FillLine(
				bg.Render(check, checkStyle)+bg.Space()+
					bg.Render(padRight(truncate(p.Name, width/2), width/2), styles.Text)+bg.Spaces(2)+
					bg.Render(titleCase(string(p.Category)), styles.CategoryText(p.Category).Background(bg.Color())),
				width))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderStops lists the ordered stops with the route leaving each one for
// the next stop, when there is one.
func (m Model) renderStops(width, height int) string {
	bgColor := ternary(m.routesFocus, m.theme.SurfaceAlt, m.theme.FocusBg)
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	it := m.activeItinerary()
	stops := m.plannerStops()

	var b strings.Builder
	b.WriteString(bg.FillLine(m.renderDayTabs(styles, bg), width))
	b.WriteString("\n")
	b.WriteString(bg.FillLine(bg.Render("K/J reorder · r adds a route · b back to selection", styles.MutedText), width))
	b.WriteString("\n")

	lines := make([]string, 0, len(stops)*2)
	cursorLine := 0
	for i, p := range stops {
		label := fmt.Sprintf("%2d. %s", i+1, truncate(p.Name, width-8))
		if i == m.stopCursor {
			cursorLine = len(lines)
			if m.routesFocus {
				lines = append(lines, bg.FillLine(bg.Render(label, styles.AccentText), width))
			} else {
				lines = append(lines, styles.Selected.Width(width).Render(label))
			}
		} else {
			lines = append(lines, bg.FillLine(bg.Render(label, styles.Text), width))
		}
		if i+1 < len(stops) {
			if r, ok := routeBetween(it, p.ID, stops[i+1].ID); ok {
				leg := fmt.Sprintf("     ↓ %s · %s", titleCase(string(r.Mode)), r.Duration)
				lines = append(lines, bg.FillLine(bg.Render(leg, styles.InfoText), width))
			}
		}
	}

	start, end := listWindow(len(lines), cursorLine, height-2)
	b.WriteString(strings.Join(lines[start:end], "\n"))
	return b.String()
}

func routeBetween(it book.DailyItinerary, from, to string) (book.Route, bool) {
	for _, r := range it.Routes {
		if r.FromPOIID == from && r.ToPOIID == to {
			return r, true
		}
	}
	return book.Route{}, false
}

func (m Model) renderRoutes(width int) string {
	bgColor := ternary(m.routesFocus, m.theme.FocusBg, m.theme.SurfaceAlt)
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)
	it := m.activeItinerary()

	if len(it.Routes) == 0 {
		return bg.FillLine(bg.Render("No routes yet. Pick a stop and press r.", styles.MutedText), width)
	}

	lines := make([]string, 0, len(it.Routes))
	for i, r := range it.Routes {
		label := fmt.Sprintf("%d → %d  %s  %s",
			m.orderOf(r.FromPOIID), m.orderOf(r.ToPOIID),
			padRight(titleCase(string(r.Mode)), 6), r.Duration)
		if m.routesFocus && i == m.routeCursor {
			lines = append(lines, styles.Selected.Width(width).Render(label))
			continue
		}
		lines = append(lines, bg.FillLine(bg.Render(label, styles.Text), width))
	}
	return strings.Join(lines, "\n")
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}
