package response

import (
	"time"

	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
)

type HoldResponse struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"userId"`
	ShowingID      uuid.UUID   `json:"showingId"`
	MovieTitle     string      `json:"movieTitle"`
	Status         string      `json:"status"`
	UnitIDs        []uuid.UUID `json:"unitIds"`
	SeatLabels     []string    `json:"seatLabels"`
	ExpiresAt      time.Time   `json:"expiresAt"`
	IdempotencyKey *string     `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

func FromHoldView(v *queries.HoldView) *HoldResponse {
	unitIDs := make([]uuid.UUID, len(v.Units))
	for i, u := range v.Units {
		unitIDs[i] = u.ID
	}
	return &HoldResponse{
		ID:             v.ID,
		UserID:         v.UserID,
		ShowingID:      v.ShowingID,
		MovieTitle:     v.MovieTitle,
		Status:         v.Status,
		UnitIDs:        unitIDs,
		SeatLabels:     v.SeatLabels(),
		ExpiresAt:      v.ExpiresAt,
		IdempotencyKey: v.IdempotencyKey,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}
