package ui

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/five82/tripbook/internal/logtail"
)

func TestFormatEntryParsed(t *testing.T) {
	e := logtail.Entry{
		Time:    time.Date(2026, 3, 1, 9, 30, 5, 0, time.Local),
		Level:   slog.LevelWarn,
		Message: "save failed",
		Attrs: []logtail.Attr{
			{Key: "book", Value: "b-1"},
			{Key: "empty", Value: " "},
			{Key: "error", Value: "disk full"},
		},
		Parsed: true,
	}
	got := formatEntry(e)
	want := "09:30:05 WARN  save failed – book=b-1 error=disk full"
	if got != want {
		t.Fatalf("formatEntry = %q, want %q", got, want)
	}
}

func TestFormatEntryUnparsedKeepsRaw(t *testing.T) {
	e := logtail.Entry{Raw: "panic: something odd", Level: slog.LevelInfo}
	if got := formatEntry(e); got != "panic: something odd" {
		t.Fatalf("formatEntry raw = %q", got)
	}
}

func TestFormatEntryWithoutTime(t *testing.T) {
	e := logtail.Entry{Level: slog.LevelInfo, Message: "started", Parsed: true}
	got := formatEntry(e)
	if !strings.HasPrefix(got, "INFO") || !strings.HasSuffix(got, "started") {
		t.Fatalf("formatEntry = %q", got)
	}
}

func TestNextLevelCycles(t *testing.T) {
	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelDebug}
	l := slog.LevelDebug
	for i, w := range want {
		l = nextLevel(l)
		if l != w {
			t.Fatalf("step %d: nextLevel = %v, want %v", i, l, w)
		}
	}
}
