package ui

import (
	"testing"

	"github.com/five82/tripbook/internal/book"
)

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	if names[0] != "Harbor" || names[1] != "Lantern" || names[2] != "Atlas" {
		t.Fatalf("ThemeNames() = %v, want [Harbor Lantern Atlas]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Harbor"); got != "Lantern" {
		t.Fatalf("NextTheme(Harbor) = %q, want Lantern", got)
	}
	if got := NextTheme("Atlas"); got != "Harbor" {
		t.Fatalf("NextTheme(Atlas) = %q, want Harbor", got)
	}
	if got := NextTheme("Unknown"); got != "Harbor" {
		t.Fatalf("NextTheme(Unknown) = %q, want Harbor", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Lantern").Name; got != "Lantern" {
		t.Fatalf("GetTheme(Lantern).Name = %q, want Lantern", got)
	}
	if got := GetTheme("Unknown").Name; got != defaultThemeName {
		t.Fatalf("GetTheme(Unknown).Name = %q, want %s (fallback)", got, defaultThemeName)
	}
}

func TestEveryThemeColorsEveryCategory(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, c := range book.Categories {
			if _, ok := th.CategoryColors[c]; !ok {
				t.Fatalf("theme %s has no color for %s", name, c)
			}
		}
	}
}

func TestCategoryColorsAreDistinctWithinTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		seen := make(map[string]book.Category)
		for _, c := range book.Categories {
			color := th.CategoryColors[c]
			if prev, ok := seen[color]; ok {
				t.Fatalf("theme %s gives %s and %s the same color %s", name, prev, c, color)
			}
			seen[color] = c
			if color == th.Background || color == th.FocusBg {
				t.Fatalf("theme %s colors %s like its background", name, c)
			}
		}
	}
}

func TestCategoryColorFallsBackToMuted(t *testing.T) {
	th := GetTheme("Atlas")
	if got := th.CategoryColor(book.Category("unknown")); got != th.Muted {
		t.Fatalf("CategoryColor(unknown) = %q, want %q", got, th.Muted)
	}
	if got := th.CategoryColor(book.CategoryFood); got != th.CategoryColors[book.CategoryFood] {
		t.Fatalf("CategoryColor(food) = %q, want %q", got, th.CategoryColors[book.CategoryFood])
	}
}
