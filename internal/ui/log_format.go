package ui

import (
	"log/slog"
	"strings"
	"time"

	"github.com/five82/tripbook/internal/logtail"
)

// formatEntry renders a log entry as "15:04:05 WARN message – k=v k=v".
// Unparsed lines come back as they were written.
func formatEntry(e logtail.Entry) string {
	if !e.Parsed {
		return e.Raw
	}
	parts := make([]string, 0, 3)
	if !e.Time.IsZero() {
		parts = append(parts, e.Time.In(time.Local).Format("15:04:05"))
	}
	parts = append(parts, levelLabel(e.Level))
	header := strings.Join(parts, " ")

	message := strings.TrimSpace(e.Message)
	if message != "" {
		header += " " + message
	}
	if attrs := formatAttrs(e.Attrs); attrs != "" {
		header += " – " + attrs
	}
	return header
}

func formatAttrs(attrs []logtail.Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		value := strings.TrimSpace(a.Value)
		if value == "" {
			continue
		}
		out = append(out, a.Key+"="+value)
	}
	return strings.Join(out, " ")
}

// levelLabel pads level names to a fixed width so messages line up.
func levelLabel(l slog.Level) string {
	return padRight(l.String(), 5)
}

// nextLevel cycles the activity filter through the standard levels.
func nextLevel(l slog.Level) slog.Level {
	switch {
	case l < slog.LevelInfo:
		return slog.LevelInfo
	case l < slog.LevelWarn:
		return slog.LevelWarn
	case l < slog.LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
