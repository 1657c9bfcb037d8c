package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldView represents read-optimized hold data
type HoldView struct {
	ID             uuid.UUID      `json:"id"`
	UserID         uuid.UUID      `json:"user_id"`
	ShowingID      uuid.UUID      `json:"showing_id"`
	MovieTitle     string         `json:"movie_title"`
	Status         string         `json:"status"`
	Units          []HoldUnitView `json:"units"`
	ExpiresAt      time.Time      `json:"expires_at"`
	IdempotencyKey *string        `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type HoldUnitView struct {
	ID        uuid.UUID `json:"id"`
	SeatLabel string    `json:"seat_label"`
}

// SeatLabels returns the labels of the held seats in unit order.
func (v *HoldView) SeatLabels() []string {
	labels := make([]string, 0, len(v.Units))
	for _, u := range v.Units {
		labels = append(labels, u.SeatLabel)
	}
	return labels
}

// SaleView represents read-optimized sale data
type SaleView struct {
	ID          uuid.UUID       `json:"id"`
	HoldID      uuid.UUID       `json:"hold_id"`
	UserID      uuid.UUID       `json:"user_id"`
	ShowingID   uuid.UUID       `json:"showing_id"`
	MovieTitle  string          `json:"movie_title"`
	SeatLabels  []string        `json:"seat_labels"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

// ShowingSeatsView is the per-unit availability of one showing.
type ShowingSeatsView struct {
	ShowingID  uuid.UUID           `json:"showing_id"`
	RoomID     uuid.UUID           `json:"room_id"`
	MovieTitle string              `json:"movie_title"`
	StartsAt   time.Time           `json:"starts_at"`
	Seats      []SeatAvailability  `json:"seats"`
	Summary    AvailabilitySummary `json:"summary"`
}

type SeatAvailability struct {
	UnitID  uuid.UUID `json:"unit_id"`
	SeatID  uuid.UUID `json:"seat_id"`
	Label   string    `json:"label"`
	Status  string    `json:"status"`
	Version int64     `json:"version"`
}

type AvailabilitySummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Sold      int `json:"sold"`
}
