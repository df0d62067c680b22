package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/geo/r2"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/collection"
	"github.com/five82/tripbook/internal/state"
)

// Pinned places land on a grid so new cards never stack on top of each other.
const (
	canvasColumns = 5
	canvasStepX   = 180.0
	canvasStepY   = 120.0
)

// poiRow is one line of the places list.
type poiRow struct {
	poi   book.POI
	depth int
}

// poiRows returns the places list: a parent/child tree when no filter is
// active, otherwise the flat filtered result.
func (m Model) poiRows() []poiRow {
	if m.snapshot.Current == nil {
		return nil
	}
	filtered := collection.Apply(m.snapshot.Current.POIs, m.poiFilter)
	rows := make([]poiRow, 0, len(filtered))
	if m.poiFilter.Active() {
		for _, p := range filtered {
			rows = append(rows, poiRow{poi: p})
		}
		return rows
	}

	seen := make(map[string]bool, len(filtered))
	var walk func(p book.POI, depth int)
	walk = func(p book.POI, depth int) {
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		rows = append(rows, poiRow{poi: p, depth: depth})
		for _, child := range collection.Children(filtered, p.ID) {
			walk(child, depth+1)
		}
	}
	for _, root := range collection.Roots(filtered) {
		walk(root, 0)
	}
	return rows
}

// selectedPOI returns the place under the cursor in the filtered list.
func (m Model) selectedPOI() (book.POI, bool) {
	rows := m.poiRows()
	if len(rows) == 0 {
		return book.POI{}, false
	}
	return rows[clampCursor(m.poiCursor, len(rows))].poi, true
}

// nextCategory cycles "" → each category → "".
func nextCategory(c book.Category) book.Category {
	if c == "" {
		return book.Categories[0]
	}
	for i, known := range book.Categories {
		if known == c && i+1 < len(book.Categories) {
			return book.Categories[i+1]
		}
	}
	return ""
}

func (m Model) handlePOIsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	rows := m.poiRows()

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.searchInput.SetValue(m.poiFilter.Query)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleCategory):
		m.poiFilter.Category = nextCategory(m.poiFilter.Category)
		m.poiCursor = 0
		return m, nil

	case key.Matches(msg, m.keys.CycleSort):
		m.poiFilter.Sort = m.poiFilter.Sort.Next()
		m.prefs.PlacesSort = m.poiFilter.Sort.Key()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.modal = poiForm(m.store, m.snapshot.Current.POIs, nil, "")
		return m, nil
	}

	selected, ok := m.selectedPOI()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.poiCursor = clampCursor(m.poiCursor-1, len(rows))
	case key.Matches(msg, m.keys.Down):
		m.poiCursor = clampCursor(m.poiCursor+1, len(rows))
	case key.Matches(msg, m.keys.Top):
		m.poiCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.poiCursor = len(rows) - 1

	case key.Matches(msg, m.keys.NewChild):
		m.modal = poiForm(m.store, m.snapshot.Current.POIs, nil, selected.ID)

	case key.Matches(msg, m.keys.Edit):
		m.modal = poiForm(m.store, m.snapshot.Current.POIs, &selected, "")

	case key.Matches(msg, m.keys.Delete):
		store, id := m.store, selected.ID
		m.modal = confirmModal{
			prompt: fmt.Sprintf("Delete %q? It is also removed from every day plan.", selected.Name),
			onConfirm: func() tea.Cmd {
				store.DeletePOI(id)
				return statusCmd(statusSuccess, "Place deleted")
			},
		}

	case key.Matches(msg, m.keys.PinToCanvas):
		n := len(m.snapshot.Current.CanvasPOIs)
		pos := r2.Point{
			X: float64(n%canvasColumns) * canvasStepX,
			Y: float64(n/canvasColumns) * canvasStepY,
		}
		if m.store.PlaceOnCanvas(selected.ID, pos) != "" {
			m.setStatus(statusSuccess, fmt.Sprintf("Pinned %q to the canvas", selected.Name))
		}
	}
	return m, nil
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.poiFilter.Query = ""
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.poiFilter.Query = m.searchInput.Value()
	m.poiCursor = 0
	return m, cmd
}

// poiForm adds a place, optionally under parentID, or edits existing.
// Parents are entered by name in the edit form.
func poiForm(store *state.Store, pois []book.POI, existing *book.POI, parentID string) formModal {
	categoryHint := strings.Join(categoryNames(), ", ")

	if existing == nil {
		title := "New place"
		if p, ok := findPOI(pois, parentID); ok {
			title = "New place inside " + p.Name
		}
		return newFormModal(title,
			func(values map[string]string) (tea.Cmd, error) {
				cat, ok := book.ParseCategory(values["category"])
				if !ok {
					return nil, book.FieldErrors{"category": "Must be one of: " + categoryHint}
				}
				_, err := store.AddPOI(book.POI{
					Name:      values["name"],
					Category:  cat,
					VisitTime: values["visitTime"],
					Notes:     values["notes"],
					ParentID:  parentID,
				})
				if err != nil {
					return nil, err
				}
				return statusCmd(statusSuccess, "Place added"), nil
			},
			newField("name", "Name", "", "Fushimi Inari"),
			newField("category", "Category", string(book.CategorySightseeing), categoryHint),
			newField("visitTime", "Visit time", "", "2 hours"),
			newField("notes", "Notes", "", ""),
		)
	}

	id := existing.ID
	parentName := ""
	if p, ok := findPOI(pois, existing.ParentID); ok {
		parentName = p.Name
	}
	return newFormModal("Edit place",
		func(values map[string]string) (tea.Cmd, error) {
			cat, ok := book.ParseCategory(values["category"])
			if !ok {
				return nil, book.FieldErrors{"category": "Must be one of: " + categoryHint}
			}
			parent := ""
			if name := values["parentId"]; name != "" {
				p, ok := findPOIByName(pois, name)
				if !ok {
					return nil, book.FieldErrors{"parentId": "No place with this name"}
				}
				parent = p.ID
			}
			name, visit, notes := values["name"], values["visitTime"], values["notes"]
			err := store.UpdatePOI(id, state.POIPatch{
				Name:      &name,
				Category:  &cat,
				VisitTime: &visit,
				Notes:     &notes,
				ParentID:  &parent,
			})
			if err != nil {
				return nil, err
			}
			return statusCmd(statusSuccess, "Place updated"), nil
		},
		newField("name", "Name", existing.Name, ""),
		newField("category", "Category", string(existing.Category), categoryHint),
		newField("visitTime", "Visit time", existing.VisitTime, ""),
		newField("notes", "Notes", existing.Notes, ""),
		newField("parentId", "Inside", parentName, "parent place name, optional"),
	)
}

func categoryNames() []string {
	out := make([]string, len(book.Categories))
	for i, c := range book.Categories {
		out[i] = string(c)
	}
	return out
}

func findPOI(pois []book.POI, id string) (book.POI, bool) {
	if id == "" {
		return book.POI{}, false
	}
	for _, p := range pois {
		if p.ID == id {
			return p, true
		}
	}
	return book.POI{}, false
}

func findPOIByName(pois []book.POI, name string) (book.POI, bool) {
	for _, p := range pois {
		if strings.EqualFold(strings.TrimSpace(p.Name), strings.TrimSpace(name)) {
			return p, true
		}
	}
	return book.POI{}, false
}

func (m Model) renderPOIs() string {
	height := m.contentHeight()
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := maxInt(m.width-4, 10)

	var b strings.Builder
	b.WriteString(m.renderPOIFilterBar(styles, bg, width))
	b.WriteString("\n")
	b.WriteString(m.renderCategoryCounts(styles, bg, width))
	b.WriteString("\n")
	b.WriteString(bg.FillLine("", width))
	b.WriteString("\n")

	rows := m.poiRows()
	title := fmt.Sprintf("Places (%d)", len(rows))
	if len(rows) == 0 {
		msg := "No places yet. Press n to add one."
		if m.poiFilter.Active() {
			msg = "No places match the current filter."
		}
		b.WriteString(bg.FillLine(bg.Render(msg, styles.MutedText), width))
		return m.renderTitledBox(title, b.String(), m.width, height, true)
	}

	nameWidth := maxInt(width/2, 16)
	start, end := listWindow(len(rows), m.poiCursor, height-5)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		row := rows[i]
		indent := strings.Repeat("  ", row.depth)
		if row.depth > 0 {
			indent = strings.Repeat("  ", row.depth-1) + "└ "
		}
		name := padRight(truncate(indent+row.poi.Name, nameWidth), nameWidth)
		visit := truncate(row.poi.VisitTime, 14)
		cat := padRight(titleCase(string(row.poi.Category)), 15)

		if i == m.poiCursor {
			lines = append(lines, styles.Selected.Width(width).Render(name+"  "+cat+"  "+visit))
			continue
		}
		line := bg.Render(name, styles.Text) + bg.Spaces(2) +
			bg.Render(cat, styles.CategoryText(row.poi.Category).Background(bg.Color())) + bg.Spaces(2) +
			bg.Render(visit, styles.MutedText)
		lines = append(lines, bg.FillLine(line, width))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return m.renderTitledBox(title, b.String(), m.width, height, true)
}

func (m Model) renderPOIFilterBar(styles Styles, bg BgStyle, width int) string {
	category := "All"
	if m.poiFilter.Category != "" {
		category = titleCase(string(m.poiFilter.Category))
	}
	query := m.poiFilter.Query
	search := bg.Render(ternary(query == "", "—", query), styles.Text)
	if m.searching {
		search = m.searchInput.View()
	}
	parts := []string{
		bg.Render("Category:", styles.MutedText) + bg.Space() + bg.Render(category, styles.AccentText),
		bg.Render("Sort:", styles.MutedText) + bg.Space() + bg.Render(m.poiFilter.Sort.String(), styles.AccentText),
		bg.Render("Search:", styles.MutedText) + bg.Space() + search,
	}
	return bg.FillLine(bg.Join(parts, "   "), width)
}

// renderCategoryCounts shows one badge per category, including empty ones.
func (m Model) renderCategoryCounts(styles Styles, bg BgStyle, width int) string {
	counts := collection.CategoryCounts(m.snapshot.Current.POIs)
	parts := make([]string, 0, len(book.Categories))
	for _, c := range book.Categories {
		label := fmt.Sprintf("%s %d", titleCase(string(c)), counts[c])
		style := styles.CategoryBadge(c)
		if counts[c] == 0 {
			style = styles.FaintText
		}
		parts = append(parts, style.Render(label))
	}
	return bg.FillLine(bg.Join(parts, " "), width)
}
