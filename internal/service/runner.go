package service

import (
	"context"
	"sync"
	"time"

	"je-feed-v2/internal/logger"
)

// Runner re-runs the sync pipeline on a fixed interval in serve mode.
type Runner struct {
	svc      *SyncService
	interval time.Duration
	log      *logger.Logger

	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewRunner creates an interval runner. A zero interval defaults to 6 hours.
func NewRunner(svc *SyncService, interval time.Duration, log *logger.Logger) *Runner {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &Runner{
		svc:      svc,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the interval loop. Safe to call once; subsequent calls are
// no-ops.
func (r *Runner) Start() {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return
	}
	r.isRunning = true
	r.ticker = time.NewTicker(r.interval)
	r.mu.Unlock()

	r.log.Info("sync runner started", "interval", r.interval)
	go r.run()
}

// Stop halts the loop.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.mu.Lock()
		if r.ticker != nil {
			r.ticker.Stop()
		}
		r.isRunning = false
		r.mu.Unlock()
		r.log.Info("sync runner stopped")
	})
}

func (r *Runner) run() {
	for {
		select {
		case <-r.ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.interval)
			if _, err := r.svc.Run(ctx); err != nil {
				r.log.Error("scheduled sync failed", "err", err)
			}
			cancel()
		case <-r.stopCh:
			return
		}
	}
}
