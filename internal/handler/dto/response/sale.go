package response

import (
	"time"

	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleResponse struct {
	ID            uuid.UUID       `json:"id"`
	ReservationID uuid.UUID       `json:"reservationId"`
	UserID        uuid.UUID       `json:"userId"`
	ShowingID     uuid.UUID       `json:"showingId"`
	MovieTitle    string          `json:"movieTitle"`
	SeatLabels    []string        `json:"seatLabels"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ConfirmedAt   time.Time       `json:"confirmedAt"`
}

type SaleListResponse struct {
	Items      []*SaleResponse `json:"items"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

func FromSaleView(v *queries.SaleView) *SaleResponse {
	return &SaleResponse{
		ID:            v.ID,
		ReservationID: v.HoldID,
		UserID:        v.UserID,
		ShowingID:     v.ShowingID,
		MovieTitle:    v.MovieTitle,
		SeatLabels:    v.SeatLabels,
		TotalAmount:   v.TotalAmount,
		ConfirmedAt:   v.ConfirmedAt,
	}
}

func FromSaleList(views []*queries.SaleView, next *queries.Cursor) *SaleListResponse {
	items := make([]*SaleResponse, len(views))
	for i, v := range views {
		items[i] = FromSaleView(v)
	}
	res := &SaleListResponse{Items: items}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}
