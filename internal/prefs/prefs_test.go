package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePrefs(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p != Default() {
		t.Fatalf("Load = %+v, want %+v", p, Default())
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writePrefs(t, filepath.Join(home, ".config", "tripbook", "prefs.toml"),
		"theme = \"Atlas\"\nlast_book = \" 0190aa1c-book \"\n")

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Atlas" {
		t.Fatalf("Theme = %q, want Atlas", p.Theme)
	}
	if p.LastBook != "0190aa1c-book" {
		t.Fatalf("LastBook = %q, want trimmed id", p.LastBook)
	}
}

func TestLoad_NormalizesViewSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writePrefs(t, path, "theme = \"\"\nplaces_sort = \" Created_Desc \"\nactivity_level = \"warn\"\n")

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
	if p.PlacesSort != "created_desc" {
		t.Fatalf("PlacesSort = %q, want created_desc", p.PlacesSort)
	}
	if p.ActivityLevel != "WARN" {
		t.Fatalf("ActivityLevel = %q, want WARN", p.ActivityLevel)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	want := Prefs{Theme: "Lantern", LastBook: "0190aa1c-book", PlacesSort: "name_desc", ActivityLevel: "DEBUG"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSave_OmitsEmptyViewSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(path, Prefs{Theme: "Atlas"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "places_sort") || strings.Contains(string(data), "activity_level") {
		t.Fatalf("empty settings written:\n%s", data)
	}
}

func TestLoad_InvalidTOMLReportsAndFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	writePrefs(t, path, "not valid toml {{{\n")

	p, err := Load(path)
	if err == nil {
		t.Fatal("Load returned nil error for malformed file")
	}
	if p != Default() {
		t.Fatalf("Load = %+v, want defaults", p)
	}
}
