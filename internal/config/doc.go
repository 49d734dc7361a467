// Package config loads the comicvault client configuration.
//
// # Overview
//
// comicvault talks to a single collection backend and paces three timers
// (job polling, the post-identification redirect, and search debouncing).
// All of those knobs live in one TOML file so the binary works with no
// configuration at all and can be retargeted without flags.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/comicvault/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing, empty or non-positive, use defaults
//
// # Default Values
//
//   - API URL: http://127.0.0.1:8000
//   - Log directory: ~/.local/share/comicvault
//   - Client log: <log_dir>/comicvault.log
//   - Job journal: <log_dir>/job.toml
//   - Request timeout: 10s
//   - Poll interval / attempts: 2000ms x 30 (a 60 second budget)
//   - Redirect delay after identification: 1500ms
//   - Search debounce: 300ms, stale responses dropped
//   - Upload size limit: 5 MiB
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8000"
//	log_dir = "~/.local/share/comicvault"
//	log_level = "info"          # debug, info, warn, error
//	log_format = "console"      # console or json
//	request_timeout_seconds = 10
//	poll_interval_ms = 2000
//	poll_max_attempts = 30
//	redirect_delay_ms = 1500
//	search_debounce_ms = 300
//	search_drop_stale = true
//	upload_max_bytes = 5242880
//
// Durations are integers in their unit so the file stays readable without a
// duration grammar. Tilde expansion is performed for log_dir and journal_path.
//
// # Error Handling
//
// Load returns errors for path expansion failures, unreadable files and TOML
// parse errors. A missing file is not an error.
package config
