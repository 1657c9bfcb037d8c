package components

import (
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/infra/readstore"
	"cinema-reservation/internal/infra/uow"
	"cinema-reservation/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	uowModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

// Query-side stores read straight from the pool; command-side reads go
// through the unit of work.
var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewHoldReadStore,
			fx.As(new(queries.HoldViewRepo)),
		),
		fx.Annotate(
			readstore.NewSaleReadStore,
			fx.As(new(queries.SaleViewRepo)),
		),
		fx.Annotate(
			readstore.NewShowingReadStore,
			fx.As(new(queries.ShowingViewRepo)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
