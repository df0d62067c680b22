// Package config loads tripbook's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tripbook/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Example
//
//	data_dir    = "~/.local/share/tripbook"
//	namespace   = "travel_books"
//	backend     = "sqlite"   # sqlite | file | redis
//	autosave_ms = 3000
//	log_level   = "info"
//
//	[redis]
//	addr     = "127.0.0.1:6379"
//	password = ""
//	db       = 0
//
//	[remote]
//	url                 = "https://sync.example.com"
//	requests_per_second = 2
//
// Paths starting with ~ are expanded against the home directory and made
// absolute. String values are trimmed. An unknown backend or log level is
// a parse error rather than a silent fallback.
package config
