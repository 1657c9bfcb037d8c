package response

import (
	"time"

	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
)

type SeatResponse struct {
	UnitID  uuid.UUID `json:"unitId"`
	SeatID  uuid.UUID `json:"seatId"`
	Label   string    `json:"label"`
	Status  string    `json:"status"`
	Version int64     `json:"version"`
}

type AvailabilityResponse struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Held      int `json:"held"`
	Sold      int `json:"sold"`
}

type ShowingSeatsResponse struct {
	ShowingID  uuid.UUID            `json:"showingId"`
	RoomID     uuid.UUID            `json:"roomId"`
	MovieTitle string               `json:"movieTitle"`
	StartsAt   time.Time            `json:"startsAt"`
	Seats      []SeatResponse       `json:"seats"`
	Summary    AvailabilityResponse `json:"summary"`
}

func FromShowingSeatsView(v *queries.ShowingSeatsView) *ShowingSeatsResponse {
	seats := make([]SeatResponse, len(v.Seats))
	for i, s := range v.Seats {
		seats[i] = SeatResponse(s)
	}
	return &ShowingSeatsResponse{
		ShowingID:  v.ShowingID,
		RoomID:     v.RoomID,
		MovieTitle: v.MovieTitle,
		StartsAt:   v.StartsAt,
		Seats:      seats,
		Summary:    AvailabilityResponse(v.Summary),
	}
}
