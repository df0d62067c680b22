// Package logtail reads the end of the application log for the activity
// pane.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries while scanning the file
// once, so memory stays at O(maxLines) however large the log grows. Lines
// come back oldest first. A missing file is not an error: before the first
// write there is simply nothing to show.
//
// # Parsing
//
// tripbook logs through slog.TextHandler, which writes lines like
//
//	time=2025-05-01T09:00:00.000Z level=WARN msg="persist failed" op="save books" error="disk full"
//
// Parse turns such a line into an Entry with the time, level, message and
// remaining attributes in order. Quoted values are unquoted with Go string
// syntax. Anything else, such as a panic trace, is returned with Parsed
// false and only Raw set, so the pane can still show it verbatim.
//
// ReadEntries combines the two and drops parsed entries below a minimum
// level.
package logtail
