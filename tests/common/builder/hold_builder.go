//go:build unit || e2e

package builder

import (
	"time"

	reqdto "cinema-reservation/internal/handler/dto/request"
	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type HoldBuilder struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ShowingID  uuid.UUID
	MovieTitle string
	Status     string
	Units      []queries.HoldUnitView
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

func NewHoldBuilder() *HoldBuilder {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	return &HoldBuilder{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		ShowingID:  uuid.New(),
		MovieTitle: "Inception",
		Status:     "PENDING",
		Units: []queries.HoldUnitView{
			{ID: uuid.New(), SeatLabel: "A1"},
			{ID: uuid.New(), SeatLabel: "A2"},
		},
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}
}

func (b *HoldBuilder) With(mutate func(*HoldBuilder)) *HoldBuilder {
	mutate(b)
	return b
}

func (b *HoldBuilder) WithStatus(status string) *HoldBuilder {
	b.Status = status
	return b
}

func (b *HoldBuilder) UnitIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Units))
	for i, u := range b.Units {
		ids[i] = u.ID
	}
	return ids
}

func (b *HoldBuilder) BuildCreateRequestDTO() reqdto.CreateReservationRequest {
	return reqdto.CreateReservationRequest{
		UserID:    b.UserID,
		ShowingID: b.ShowingID,
		UnitIDs:   b.UnitIDs(),
	}
}

func (b *HoldBuilder) BuildView() *queries.HoldView {
	return &queries.HoldView{
		ID:         b.ID,
		UserID:     b.UserID,
		ShowingID:  b.ShowingID,
		MovieTitle: b.MovieTitle,
		Status:     b.Status,
		Units:      b.Units,
		ExpiresAt:  b.ExpiresAt,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.CreatedAt,
	}
}

// BuildSaleView prices the hold's seats at ticketPrice each.
func (b *HoldBuilder) BuildSaleView(ticketPrice string) *queries.SaleView {
	price := decimal.RequireFromString(ticketPrice)
	labels := make([]string, len(b.Units))
	for i, u := range b.Units {
		labels[i] = u.SeatLabel
	}
	return &queries.SaleView{
		ID:          uuid.New(),
		HoldID:      b.ID,
		UserID:      b.UserID,
		ShowingID:   b.ShowingID,
		MovieTitle:  b.MovieTitle,
		SeatLabels:  labels,
		TotalAmount: price.Mul(decimal.NewFromInt(int64(len(b.Units)))),
		ConfirmedAt: b.CreatedAt.Add(time.Minute),
	}
}
