package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/riv-viewer/riv/internal/rivapi"
)

// Snapshot is the latest connectivity information available to the UI.
type Snapshot struct {
	Health              rivapi.HealthResponse
	HasHealth           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the service has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Online reports whether the last poll reached a healthy service.
func (s Snapshot) Online() bool {
	return s.HasHealth && s.LastError == nil && s.Health.Healthy()
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the outcome of one health poll. When err is non-nil the
// previous health is kept but the error is recorded for visibility.
func (s *Store) Update(health *rivapi.HealthResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if health != nil {
		s.snapshot.Health = *health
		s.snapshot.HasHealth = true
	} else {
		s.snapshot.HasHealth = false
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Failures returns the current count of consecutive failed polls.
func (s *Store) Failures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.ConsecutiveFailures
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
