package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/summary"
)

func (m Model) renderSummary() string {
	height := m.contentHeight()
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	width := maxInt(m.width-4, 10)
	cur := m.snapshot.Current
	st := summary.Compute(cur)

	var lines []string
	add := func(s string) { lines = append(lines, bg.FillLine(s, width)) }
	section := func(title string) {
		if len(lines) > 0 {
			add("")
		}
		add(bg.Render(title, styles.AccentText.Bold(true)))
	}
	field := func(label, value string) {
		add(bg.Spaces(2) + bg.Field(label, value, 16, styles.MutedText, styles.Text))
	}

	section("Trip")
	field("Title", cur.Title)
	if cur.Destination != "" {
		field("Destination", cur.Destination)
	}
	field("Dates", fmt.Sprintf("%s (%d days)", formatTripDates(*cur), st.Days))
	if len(cur.Companions) > 0 {
		field("Companions", strings.Join(cur.Companions, ", "))
	}

	section("Planning")
	bar := progress.New(
		progress.WithSolidFill(m.theme.Success),
		progress.WithWidth(maxInt(minInt(width-24, 40), 10)),
	)
	bar.EmptyColor = m.theme.Faint
	add(bg.Spaces(2) + bg.Render(padRight("Ordered days", 16), styles.MutedText) + bar.ViewAs(st.Progress()))
	field("Planned days", fmt.Sprintf("%d of %d", st.PlannedDays, st.Days))
	field("Routes", fmt.Sprintf("%d", st.Routes))
	for _, mode := range book.TransportModes {
		if n := st.RoutesByMode[mode]; n > 0 {
			add(bg.Spaces(4) + bg.Field(titleCase(string(mode)), fmt.Sprintf("%d", n), 14, styles.FaintText, styles.Text))
		}
	}

	section(fmt.Sprintf("Places (%d)", st.POIs))
	maxCount := 0
	for _, n := range st.ByCategory {
		maxCount = maxInt(maxCount, n)
	}
	barWidth := maxInt(minInt(width-30, 30), 5)
	for _, c := range book.Categories {
		n := st.ByCategory[c]
		fill := 0
		if maxCount > 0 {
			fill = n * barWidth / maxCount
		}
		catStyle := styles.CategoryText(c)
		add(bg.Spaces(2) +
			bg.Render(padRight(titleCase(string(c)), 16), catStyle) +
			bg.Bar(fill, barWidth, catStyle, styles.FaintText) +
			bg.Render(fmt.Sprintf(" %d", n), styles.Text))
	}

	section("Board")
	field("Canvas cards", fmt.Sprintf("%d", st.CanvasPOIs))
	if st.CanvasPOIs > 0 {
		size := st.CanvasBounds.Size()
		field("Canvas extent", fmt.Sprintf("%.0f × %.0f", size.X, size.Y))
	}
	field("Scenes", fmt.Sprintf("%d", st.Scenes))
	if st.InterSceneRoutes > 0 {
		legs := fmt.Sprintf("%d, %s", st.InterSceneRoutes, formatDistance(st.SceneDistanceMeters))
		if st.UnmeasuredRoutes > 0 {
			legs += fmt.Sprintf(" (%d without location)", st.UnmeasuredRoutes)
		}
		field("Scene legs", legs)
	}

	section("Notes")
	field("Memos", fmt.Sprintf("%d (%d pinned)", st.Memos, st.PinnedMemos))
	field("Tickets", fmt.Sprintf("%d", st.Tickets))

	if len(lines) > height-2 {
		lines = lines[:height-2]
	}
	return m.renderTitledBox("Summary", strings.Join(lines, "\n"), m.width, height, true)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
