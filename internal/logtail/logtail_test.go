package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_SlogTextLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Warn("persist failed", "op", "save books", "error", `disk "A" full`, "count", 3)

	e := Parse(strings.TrimSpace(buf.String()))
	if !e.Parsed {
		t.Fatalf("Parse(%q) not parsed", buf.String())
	}
	if e.Level != slog.LevelWarn || e.Message != "persist failed" {
		t.Fatalf("entry = %#v, want WARN persist failed", e)
	}
	if e.Time.IsZero() {
		t.Fatal("time not parsed")
	}
	want := []Attr{{"op", "save books"}, {"error", `disk "A" full`}, {"count", "3"}}
	if !reflect.DeepEqual(e.Attrs, want) {
		t.Fatalf("attrs = %#v, want %#v", e.Attrs, want)
	}
}

func TestParse_Unstructured(t *testing.T) {
	for _, line := range []string{
		"",
		"panic: runtime error",
		"goroutine 1 [running]:",
		`level=INFO count=3`,
		`msg="unterminated`,
	} {
		e := Parse(line)
		if e.Parsed || e.Raw != line || e.Level != slog.LevelInfo {
			t.Errorf("Parse(%q) = %#v, want raw info entry", line, e)
		}
	}
}

func TestReadEntries_FiltersByLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripbook.log")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("autosave")
	logger.Info("books loaded", "count", 2)
	logger.Error("persist failed")
	_, _ = f.WriteString("stray line\n\n")
	_ = f.Close()

	entries, err := ReadEntries(path, 0, slog.LevelInfo)
	if err != nil {
		t.Fatalf("ReadEntries: %v", err)
	}
	var msgs []string
	for _, e := range entries {
		if e.Parsed {
			msgs = append(msgs, e.Message)
		} else {
			msgs = append(msgs, e.Raw)
		}
	}
	want := []string{"books loaded", "persist failed", "stray line"}
	if !reflect.DeepEqual(msgs, want) {
		t.Fatalf("messages = %v, want %v", msgs, want)
	}
}
