package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/riv-viewer/riv/internal/rivapi"
	"github.com/riv-viewer/riv/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// HealthChecker is the part of the service client the poller needs.
type HealthChecker interface {
	Health(ctx context.Context) (*rivapi.HealthResponse, error)
}

// StartPoller launches a background goroutine that records service health in
// the store. Consecutive failures back off exponentially up to maxBackoff. It
// returns immediately.
func StartPoller(ctx context.Context, store *state.Store, checker HealthChecker, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	go func() {
		for {
			refresh(ctx, store, checker, logger)

			timer := time.NewTimer(calculateBackoff(store.Failures(), interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, checker HealthChecker, logger *slog.Logger) {
	health, err := checker.Health(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		wasOnline := store.Failures() == 0
		store.Update(nil, err)
		if wasOnline {
			logger.Warn("health poll failed", "error", err)
		}
		return
	}
	if !health.Healthy() {
		store.Update(nil, fmt.Errorf("service reported status %q", health.Status))
		return
	}
	if store.Failures() > 0 {
		logger.Info("service reachable again", "status", health.Status)
	}
	store.Update(health, nil)
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures < 0 {
		failures = 0
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
