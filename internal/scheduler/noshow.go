// Package scheduler runs the periodic no-show sweep.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Sweeper is implemented by booking.Controller.
type Sweeper interface {
	SweepNoShows(ctx context.Context) (int, error)
}

// NoShowTicker calls the sweeper once at start and then every interval.
type NoShowTicker struct {
	sweeper  Sweeper
	interval time.Duration
	logger   *log.Logger
}

func NewNoShowTicker(sweeper Sweeper, interval time.Duration, logger *log.Logger) *NoShowTicker {
	if logger == nil {
		logger = log.Default()
	}
	return &NoShowTicker{sweeper: sweeper, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (t *NoShowTicker) Run(ctx context.Context) {
	if t.interval <= 0 {
		t.logger.Println("No-show sweep is disabled. Not starting.")
		return
	}
	t.logger.Printf("Starting no-show sweep every %s", t.interval)

	t.SweepOnce(ctx)

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Println("No-show sweep shutting down.")
			return
		case <-timer.C:
			t.SweepOnce(ctx)
			timer.Reset(t.interval)
		}
	}
}

// SweepOnce runs a single sweep and logs the result.
func (t *NoShowTicker) SweepOnce(ctx context.Context) {
	n, err := t.sweeper.SweepNoShows(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Printf("No-show sweep failed: %v", err)
		}
		return
	}
	if n > 0 {
		t.logger.Printf("No-show sweep released %d booking(s)", n)
	}
}
