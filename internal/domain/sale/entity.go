package sale

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice = errors.New("ticket price cannot be negative")
	ErrNoSeats       = errors.New("sale requires at least one seat")
)

type Sale struct {
	id          uuid.UUID
	holdID      uuid.UUID
	userID      uuid.UUID
	totalAmount decimal.Decimal
	confirmedAt time.Time
}

// NewSale prices every seat of the hold at the showing's ticket price.
func NewSale(holdID, userID uuid.UUID, ticketPrice decimal.Decimal, seatCount int, now time.Time) (*Sale, error) {
	if ticketPrice.IsNegative() {
		return nil, ErrNegativePrice
	}
	if seatCount <= 0 {
		return nil, ErrNoSeats
	}

	return &Sale{
		id:          uuid.New(),
		holdID:      holdID,
		userID:      userID,
		totalAmount: ticketPrice.Mul(decimal.NewFromInt(int64(seatCount))).Round(2),
		confirmedAt: now,
	}, nil
}

func ReconstructSale(id, holdID, userID uuid.UUID, totalAmount decimal.Decimal, confirmedAt time.Time) *Sale {
	return &Sale{
		id:          id,
		holdID:      holdID,
		userID:      userID,
		totalAmount: totalAmount,
		confirmedAt: confirmedAt,
	}
}

func (s *Sale) ID() uuid.UUID                { return s.id }
func (s *Sale) HoldID() uuid.UUID            { return s.holdID }
func (s *Sale) UserID() uuid.UUID            { return s.userID }
func (s *Sale) TotalAmount() decimal.Decimal { return s.totalAmount }
func (s *Sale) ConfirmedAt() time.Time       { return s.confirmedAt }
