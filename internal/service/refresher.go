package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// RefreshConfig holds configuration for the dashboard refresher.
type RefreshConfig struct {
	// Interval is how often the counters are rebuilt.
	// Default: 1 hour
	Interval time.Duration
}

// DefaultRefreshConfig returns default refresher configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{Interval: time.Hour}
}

// Refresher periodically recomputes the dashboard so the buckets track
// the calendar: an item crosses from ExpiringSoon to Expired at
// midnight even when nothing was mutated overnight.
type Refresher struct {
	dashboard *Dashboard
	config    RefreshConfig

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewRefresher creates a refresher for the given dashboard.
func NewRefresher(dashboard *Dashboard, config RefreshConfig) *Refresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefreshConfig().Interval
	}
	return &Refresher{
		dashboard: dashboard,
		config:    config,
		stop:      make(chan struct{}),
	}
}

// Start launches the background refresh loop.
func (r *Refresher) Start() {
	r.wg.Add(1)
	go r.run()
	log.Printf("[Refresher] Started (interval: %v)", r.config.Interval)
}

// Stop terminates the refresh loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	r.wg.Wait()
}

func (r *Refresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := r.dashboard.Recompute(ctx); err != nil {
				log.Printf("[Refresher] Dashboard recompute failed: %v", err)
			}
			cancel()
		case <-r.stop:
			return
		}
	}
}
