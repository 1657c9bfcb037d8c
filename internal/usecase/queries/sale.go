package queries

import (
	"context"
	"time"

	"cinema-reservation/internal/infra"

	"github.com/google/uuid"
)

//go:generate mockgen -source=sale.go -destination=../../../tests/mock/queries/sale_mock.go -package=queriesmock

type SaleQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*SaleView, error)
	// List pages through sales newest first. A nil userID lists every user's sales.
	List(ctx context.Context, userID *uuid.UUID, after *Cursor, limit int) ([]*SaleView, *Cursor, error)
}

type SaleListFilter struct {
	UserID    *uuid.UUID
	AfterTime *time.Time
	AfterID   *uuid.UUID
	Limit     int
}

type SaleViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleView, error)
	FindPage(ctx context.Context, filter SaleListFilter) ([]*SaleView, error)
}

type saleQueriesImpl struct {
	repo SaleViewRepo
}

func NewSaleQueries(repo SaleViewRepo) SaleQueries {
	return &saleQueriesImpl{repo: repo}
}

func (q *saleQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*SaleView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return v, nil
}

func (q *saleQueriesImpl) List(ctx context.Context, userID *uuid.UUID, after *Cursor, limit int) ([]*SaleView, *Cursor, error) {
	limit = ValidateLimit(limit)
	filter := SaleListFilter{UserID: userID, Limit: limit + 1}

	if after != nil && after.After != "" {
		t, id, err := DecodeAfterCursor(after.After)
		if err != nil {
			return nil, nil, ErrInvalidCursor
		}
		filter.AfterTime = &t
		filter.AfterID = &id
	}

	rows, err := q.repo.FindPage(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	// One extra row tells us whether another page exists.
	if len(rows) <= limit {
		return rows, nil, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	return rows, &Cursor{After: EncodeAfterCursor(last.ConfirmedAt, last.ID)}, nil
}
