package components

import (
	"log/slog"

	"cinema-reservation/internal/handler"
	"cinema-reservation/internal/handler/api"
	"cinema-reservation/internal/handler/middleware"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewSaleHandler,
		api.NewShowingHandler,
		NewDebouncer,
	),
	fx.Invoke(handler.NewRouter),
)

func NewDebouncer(locker middleware.DebounceLocker, cfg config.Config, m *metrics.Metrics, logger *slog.Logger) *middleware.Debouncer {
	return middleware.NewDebouncer(locker, cfg.Reservation.DebounceWindow, m, logger)
}
