// Package config loads riv's configuration file.
//
// # Overview
//
// riv needs to know where the processing service listens, where to save
// archives it downloads, and where to write its own log. All of it has a
// default, so the file is optional.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use $RIV_CONFIG when set
//  3. Otherwise, use ~/.config/riv/config.toml
//  4. If the file doesn't exist, use defaults
//  5. RIV_* environment variables override whatever the file says
//
// # Default Values
//
//   - api_bind: 127.0.0.1:8000
//   - download_dir: ~/Downloads
//   - log_file: ~/.local/state/riv/riv.log
//   - request_timeout_seconds: 120
//   - poll_seconds: 5
//
// # TOML Format
//
//	api_bind = "127.0.0.1:8000"
//	download_dir = "~/Downloads"
//	log_file = "~/.local/state/riv/riv.log"
//	request_timeout_seconds = 120
//	poll_seconds = 5
//
// Blank strings and non-positive numbers fall back to the default. Tilde
// expansion is applied to every path.
//
// # Environment
//
// Overrides are read through viper with the RIV prefix, so api_bind becomes
// RIV_API_BIND and poll_seconds becomes RIV_POLL_SECONDS. The file itself is
// parsed with go-toml so that a malformed file is reported rather than
// silently ignored.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
package config
