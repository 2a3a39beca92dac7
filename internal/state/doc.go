// Package state shares the service connectivity status between the background
// poller and the UI.
//
// # Overview
//
// The poller writes the outcome of each health check with Store.Update; the UI
// reads a copy with Store.Snapshot whenever it redraws the header. Viewer
// session state does not live here: it is owned by the UI event loop and never
// crosses goroutines.
//
//	Poller goroutine:               UI (Bubble Tea):
//	  client.Health(ctx)              tick
//	  store.Update(health, err) ───→  store.Snapshot()
//	                       (RWMutex)  render ON / OFF
//
// # Update Semantics
//
// A failed poll keeps the last successful health response, records the error,
// and bumps ConsecutiveFailures. A successful poll clears both. IsOffline
// reports two or more failures in a row, which the header shows as OFF; a
// single failure shows as retrying. The poller backs off on the same count.
//
// # Defensive Copying
//
// Snapshot returns a value. The stored error is rewrapped so the caller never
// holds the store's own instance.
//
// The zero Store is ready to use.
package state
