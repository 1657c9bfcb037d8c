package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/usecase/commands"
)

// Reaper sweeps expired holds on a fixed interval. Sweeps never overlap.
type Reaper struct {
	expiration commands.ExpirationCommands
	interval   time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(expiration commands.ExpirationCommands, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{
		expiration: expiration,
		interval:   interval,
		metrics:    m,
		logger:     logger,
	}
}

// Start launches the sweep loop. Calling it twice is a no-op.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)

	r.logger.Info("reaper started", "interval", r.interval)
}

// Stop cancels the loop and waits for an in-flight sweep to finish or ctx to end.
func (r *Reaper) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		r.logger.Info("reaper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reaper) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep runs one expiration pass and logs its outcome.
func (r *Reaper) Sweep(ctx context.Context) {
	start := time.Now()
	report, err := r.expiration.ExpireDue(ctx)
	r.metrics.ObserveReaperSweep(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("reaper sweep failed", "error", err.Error())
		return
	}
	if report.Found == 0 {
		return
	}

	r.logger.Info("reaper sweep completed",
		"found", report.Found,
		"expired", report.Expired,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration", time.Since(start))
}
