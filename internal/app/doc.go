// Package app is the composition root of tripbook.
//
// Run wires the pieces together:
//
//	config.Load()          read config.toml
//	openLogger()           slog text handler on <data_dir>/tripbook.log
//	objectstore.Open()     sqlite, file or redis, optionally mirrored to remote
//	state.New().Load()     the session store, reopening the last book
//	NewAutosaver().Start() debounced saves after edits
//	ui.Run()               the TUI (blocks)
//	Autosaver.Flush()      save what is left before exit
//
// # Autosave
//
// The Autosaver subscribes to the store. Every notification that carries a
// new revision while the session is dirty restarts a single countdown
// (3 seconds by default). When the countdown fires it re-reads the store
// and saves only if the session is still dirty, so a save made in the
// meantime or a discard cancels the pending write.
//
// Fatal errors (returned from Run): unreadable config, log file or object
// store. Persistence failures after startup are logged and shown in the UI;
// editing continues.
package app
