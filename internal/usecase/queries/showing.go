package queries

import (
	"context"

	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"

	"github.com/google/uuid"
)

//go:generate mockgen -source=showing.go -destination=../../../tests/mock/queries/showing_mock.go -package=queriesmock

type ShowingQueries interface {
	GetSeats(ctx context.Context, showingID uuid.UUID) (*ShowingSeatsView, error)
}

type ShowingViewRepo interface {
	FindSeats(ctx context.Context, showingID uuid.UUID) (*ShowingSeatsView, error)
}

type showingQueriesImpl struct {
	repo ShowingViewRepo
}

func NewShowingQueries(repo ShowingViewRepo) ShowingQueries {
	return &showingQueriesImpl{repo: repo}
}

func (q *showingQueriesImpl) GetSeats(ctx context.Context, showingID uuid.UUID) (*ShowingSeatsView, error) {
	view, err := q.repo.FindSeats(ctx, showingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrShowingNotFound
		}
		return nil, err
	}
	view.Summary = Summarize(view.Seats)
	return view, nil
}

func Summarize(seats []SeatAvailability) AvailabilitySummary {
	s := AvailabilitySummary{Total: len(seats)}
	for _, st := range seats {
		switch seat.Status(st.Status) {
		case seat.StatusAvailable:
			s.Available++
		case seat.StatusHeld:
			s.Held++
		case seat.StatusSold:
			s.Sold++
		}
	}
	return s
}
