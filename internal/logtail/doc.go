// Package logtail reads riv's activity log for display in the TUI.
//
// # Overview
//
// riv writes one slog text record per line to its log file. The activity pane
// shows the last few hundred of those lines, so this package provides a
// one-pass tail reader and a small parser for the key=value records.
//
// # Reading Log Files
//
// Read keeps a ring buffer of maxLines entries and scans the file once:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line, store it at the current index and advance (wrapping)
//	3. If fewer than maxLines were seen, return them as-is
//	4. Otherwise return the buffer starting from the oldest entry
//
// Memory stays O(maxLines) regardless of file size. A non-positive maxLines
// returns the whole file, and a missing file returns no lines and no error.
//
// Example usage:
//
//	lines, err := logtail.Read("~/.local/state/riv/riv.log", 400)
//	if err != nil {
//		logger.Warn("activity log unreadable", "error", err)
//	}
//
// # Parsing Records
//
// Parse splits a record such as
//
//	time=2026-10-17T09:14:03.512+02:00 level=INFO msg="frame rendered" viewport=1 frame=3
//
// into time, level, message and the remaining attributes. Records are read
// with github.com/go-logfmt/logfmt. slog quotes values with strconv.Quote, so
// a value using an escape the decoder does not know (\x01, \a) is decoded with
// strconv.Unquote instead. Lines that are not key=value (a panic trace, say) come back with
// only Message set. Compact turns an Entry into a single short line for the
// pane; colouring by level is left to the ui package's theme.
package logtail
