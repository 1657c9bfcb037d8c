package bootstrap

import (
	"cinema-reservation/internal/infra/metrics"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.New,
	),
)
