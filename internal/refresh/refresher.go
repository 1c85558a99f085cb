package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/terra-clan/portfolio-intel/internal/dashboard"
)

// Reloader re-synthesizes the served dataset
type Reloader interface {
	Reload(ctx context.Context) (*dashboard.Dataset, error)
}

// Refresher periodically reloads the dashboard dataset
type Refresher struct {
	reloader Reloader
	interval time.Duration
	done     chan struct{}
}

// NewRefresher creates a new refresh worker. A non-positive interval
// disables it.
func NewRefresher(reloader Reloader, interval time.Duration) *Refresher {
	return &Refresher{
		reloader: reloader,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Enabled reports whether the worker will run
func (r *Refresher) Enabled() bool {
	return r.interval > 0
}

// Start begins the refresh worker in a goroutine
func (r *Refresher) Start(ctx context.Context) {
	if !r.Enabled() {
		slog.Info("dataset refresh disabled")
		close(r.done)
		return
	}
	go r.run(ctx)
}

// Done is closed once the worker has stopped
func (r *Refresher) Done() <-chan struct{} {
	return r.done
}

// run is the main loop for the refresh worker
func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	slog.Info("refresh worker started", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh worker stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	slog.Debug("running refresh cycle")

	ds, err := r.reloader.Reload(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("failed to refresh dataset", "error", err)
		return
	}

	slog.Debug("dataset refreshed", "version", ds.Info.Version, "generation", ds.Info.Generation)
}
