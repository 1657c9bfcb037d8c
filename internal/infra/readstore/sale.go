package readstore

import (
	"context"

	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/pgconv"
	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	saleViewColumns = `
SELECT sa.id, sa.hold_id, sa.user_id, h.showing_id, sh.movie_title, sa.total_amount, sa.confirmed_at,
       ARRAY(
           SELECT s.row_label || s.seat_number::text
           FROM hold_units hu
           JOIN showing_seats ss ON ss.id = hu.showing_seat_id
           JOIN seats s ON s.id = ss.seat_id
           WHERE hu.hold_id = sa.hold_id
           ORDER BY s.row_label, s.seat_number
       ) AS seat_labels
FROM sales sa
JOIN holds h ON h.id = sa.hold_id
JOIN showings sh ON sh.id = h.showing_id`

	saleByIDSQL = saleViewColumns + `
WHERE sa.id = $1`

	// Keyset pagination on (confirmed_at, id), newest first.
	salePageSQL = saleViewColumns + `
WHERE ($1::uuid IS NULL OR sa.user_id = $1)
  AND ($2::timestamptz IS NULL OR (sa.confirmed_at, sa.id) < ($2, $3::uuid))
ORDER BY sa.confirmed_at DESC, sa.id DESC
LIMIT $4`
)

type SaleReadStore struct {
	db db.DBTX
}

func NewSaleReadStore(db db.DBTX) *SaleReadStore {
	return &SaleReadStore{db: db}
}

func (r *SaleReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SaleView, error) {
	v, err := scanSaleView(r.db.QueryRow(ctx, saleByIDSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sale not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sale by ID", err)
	}
	return v, nil
}

func (r *SaleReadStore) FindPage(ctx context.Context, filter queries.SaleListFilter) ([]*queries.SaleView, error) {
	rows, err := r.db.Query(ctx, salePageSQL, filter.UserID, filter.AfterTime, filter.AfterID, filter.Limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list sales", err)
	}
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.SaleView, error) {
		return scanSaleView(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan sales", err)
	}
	return views, nil
}

func scanSaleView(row pgx.Row) (*queries.SaleView, error) {
	var (
		v     queries.SaleView
		total pgtype.Numeric
	)
	if err := row.Scan(&v.ID, &v.HoldID, &v.UserID, &v.ShowingID, &v.MovieTitle, &total, &v.ConfirmedAt, &v.SeatLabels); err != nil {
		return nil, err
	}
	amount, err := pgconv.DecimalFromNumeric(total)
	if err != nil {
		return nil, err
	}
	v.TotalAmount = amount
	return &v, nil
}
