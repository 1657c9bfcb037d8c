package shared

import (
	"time"

	"cinema-reservation/internal/domain/seat"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Minimal snapshots for command read operations
type ShowingSnapshot struct {
	ID          uuid.UUID
	RoomID      uuid.UUID
	StartsAt    time.Time
	TicketPrice decimal.Decimal
}

type UnitSnapshot struct {
	ID        uuid.UUID
	ShowingID uuid.UUID
	Status    seat.Status
	Version   int64
}
