package shared

import (
	"context"
	"time"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/sale"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Inventory() InventoryRepository
	Holds() HoldRepository
	Sales() SaleRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	HoldByID(ctx context.Context, id uuid.UUID) (*hold.Hold, error)
	HoldByIdempotencyKey(ctx context.Context, key string) (*hold.Hold, error)
	// ExpiredHolds returns PENDING holds whose deadline is strictly before now, oldest first.
	ExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error)
	ShowingByID(ctx context.Context, id uuid.UUID) (*ShowingSnapshot, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	UnitsOfShowing(ctx context.Context, showingID uuid.UUID, unitIDs []uuid.UUID) ([]UnitSnapshot, error)
}

type InventoryRepository interface {
	// Transition moves every unit from one status to another or none of them.
	Transition(ctx context.Context, showingID uuid.UUID, unitIDs []uuid.UUID, from, to seat.Status) error
}

type HoldRepository interface {
	Create(ctx context.Context, h *hold.Hold) error
	// Transition is conditional on the current status. Moving to CONFIRMED also
	// requires the deadline to still be ahead of now.
	Transition(ctx context.Context, id uuid.UUID, from, to hold.Status, now time.Time) error
}

type SaleRepository interface {
	Create(ctx context.Context, s *sale.Sale) error
}
