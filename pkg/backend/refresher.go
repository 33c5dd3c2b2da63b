package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher drives the registry's discovery cycle on a fixed period,
// independent of traffic. Refresh rate-limits itself, so a status query
// landing between ticks cannot cause double probing.
type Refresher struct {
	registry *Registry
	interval time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewRefresher creates a refresher ticking every interval.
func NewRefresher(registry *Registry, interval time.Duration) *Refresher {
	return &Refresher{
		registry: registry,
		interval: interval,
		cron:     cron.New(),
	}
}

// Start primes the registry with an immediate refresh and begins the
// periodic schedule. It stops automatically when ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("refresher is already running")
	}

	schedule := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(schedule, func() {
		r.registry.Refresh(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule registry refresh: %w", err)
	}

	// Prime membership without blocking startup on up to a full probe round.
	go r.registry.Refresh(ctx)

	r.cron.Start()
	r.running = true

	slog.Info("backend discovery started",
		"interval", r.interval,
		"primary", r.registry.Primary(),
	)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	ctx := r.cron.Stop()
	<-ctx.Done()
	r.running = false
	slog.Info("backend discovery stopped")
}

// IsRunning reports whether the schedule is active.
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
