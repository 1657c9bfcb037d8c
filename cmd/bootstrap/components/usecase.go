package components

import (
	"cinema-reservation/internal/handler/middleware"
	"cinema-reservation/internal/infra/lock"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/usecase/commands"
	"cinema-reservation/internal/usecase/queries"
	"cinema-reservation/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		lock.NewRedisLockManager,
		fx.As(new(shared.Locker)),
		fx.As(new(middleware.DebounceLocker)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationUseCase,
		commands.NewSaleUseCase,
		commands.NewExpirationUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewHoldQueries,
		queries.NewSaleQueries,
		queries.NewShowingQueries,
	),
)
