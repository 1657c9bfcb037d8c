package readstore

import (
	"context"
	"time"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/pgconv"
	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	holdColumns = `
h.id, h.user_id, h.showing_id, h.status, h.expires_at, h.idempotency_key, h.created_at, h.updated_at,
ARRAY(SELECT hu.showing_seat_id FROM hold_units hu WHERE hu.hold_id = h.id) AS unit_ids`

	holdByIDSQL = `SELECT` + holdColumns + ` FROM holds h WHERE h.id = $1`

	holdByIdempotencyKeySQL = `SELECT` + holdColumns + ` FROM holds h WHERE h.idempotency_key = $1`

	expiredHoldsSQL = `SELECT` + holdColumns + `
FROM holds h
WHERE h.status = 'PENDING' AND h.expires_at < $1
ORDER BY h.expires_at
LIMIT $2`

	holdViewSQL = `
SELECT h.id, h.user_id, h.showing_id, sh.movie_title, h.status, h.expires_at, h.idempotency_key,
       h.created_at, h.updated_at
FROM holds h
JOIN showings sh ON sh.id = h.showing_id
WHERE h.id = $1`

	holdUnitLabelsSQL = `
SELECT ss.id, s.row_label, s.seat_number
FROM hold_units hu
JOIN showing_seats ss ON ss.id = hu.showing_seat_id
JOIN seats s ON s.id = ss.seat_id
WHERE hu.hold_id = $1
ORDER BY s.row_label, s.seat_number`
)

type HoldReadStore struct {
	db db.DBTX
}

func NewHoldReadStore(db db.DBTX) *HoldReadStore {
	return &HoldReadStore{db: db}
}

// FindByID builds the read model served to clients, seat labels included.
func (r *HoldReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.HoldView, error) {
	var (
		v   queries.HoldView
		key pgtype.Text
	)
	err := r.db.QueryRow(ctx, holdViewSQL, id).Scan(
		&v.ID, &v.UserID, &v.ShowingID, &v.MovieTitle, &v.Status, &v.ExpiresAt, &key,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find hold by ID", err)
	}
	v.IdempotencyKey = pgconv.StringPtrFromPgtype(key)

	rows, err := r.db.Query(ctx, holdUnitLabelsSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load hold units", err)
	}
	units, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.HoldUnitView, error) {
		var (
			u      queries.HoldUnitView
			rowLbl string
			number int
		)
		if err := row.Scan(&u.ID, &rowLbl, &number); err != nil {
			return u, err
		}
		u.SeatLabel = seat.Label(rowLbl, number)
		return u, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan hold units", err)
	}
	v.Units = units

	return &v, nil
}

func (r *HoldReadStore) FindEntityByID(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	h, err := scanHold(r.db.QueryRow(ctx, holdByIDSQL, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("hold not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find hold by ID", err)
	}
	return h, nil
}

func (r *HoldReadStore) FindEntityByIdempotencyKey(ctx context.Context, key string) (*hold.Hold, error) {
	h, err := scanHold(r.db.QueryRow(ctx, holdByIdempotencyKeySQL, key))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("hold not found for idempotency key", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find hold by idempotency key", err)
	}
	return h, nil
}

func (r *HoldReadStore) FindExpired(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	rows, err := r.db.Query(ctx, expiredHoldsSQL, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired holds", err)
	}
	holds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*hold.Hold, error) {
		return scanHold(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan expired holds", err)
	}
	return holds, nil
}

func scanHold(row pgx.Row) (*hold.Hold, error) {
	var (
		id, userID, showingID uuid.UUID
		status                string
		expiresAt             time.Time
		key                   pgtype.Text
		createdAt, updatedAt  time.Time
		unitIDs               []uuid.UUID
	)
	if err := row.Scan(&id, &userID, &showingID, &status, &expiresAt, &key, &createdAt, &updatedAt, &unitIDs); err != nil {
		return nil, err
	}
	return hold.ReconstructHold(
		id, userID, showingID,
		unitIDs,
		hold.Status(status),
		expiresAt,
		pgconv.StringPtrFromPgtype(key),
		createdAt, updatedAt,
	), nil
}
