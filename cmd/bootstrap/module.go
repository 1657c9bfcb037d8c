package bootstrap

import (
	"cinema-reservation/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	MetricsModule,
	DBModule,
	RedisModule,
	KafkaModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
	WorkerModule,
)
