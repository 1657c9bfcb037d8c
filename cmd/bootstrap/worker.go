package bootstrap

import (
	"context"
	"log/slog"

	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/usecase/commands"
	"cinema-reservation/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewReaper,
	),
	fx.Invoke(func(*worker.Reaper) {}),
)

func NewReaper(lc fx.Lifecycle, cfg config.Config, exp commands.ExpirationCommands, m *metrics.Metrics, logger *slog.Logger) *worker.Reaper {
	r := worker.NewReaper(exp, cfg.Reservation.ReaperInterval, m, logger)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			r.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return r.Stop(ctx)
		},
	})
	return r
}
