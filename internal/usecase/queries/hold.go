package queries

import (
	"context"

	"cinema-reservation/internal/infra"

	"github.com/google/uuid"
)

//go:generate mockgen -source=hold.go -destination=../../../tests/mock/queries/hold_mock.go -package=queriesmock

type HoldQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
}

type HoldViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*HoldView, error)
}

type holdQueriesImpl struct {
	repo HoldViewRepo
}

func NewHoldQueries(repo HoldViewRepo) HoldQueries {
	return &holdQueriesImpl{repo: repo}
}

func (q *holdQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*HoldView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return v, nil
}
