package repository

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const (
	insertHoldSQL = `
INSERT INTO holds (id, user_id, showing_id, status, expires_at, idempotency_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertHoldUnitsSQL = `
INSERT INTO hold_units (hold_id, showing_seat_id)
SELECT $1, unit_id FROM UNNEST($2::uuid[]) AS unit_id`

	transitionHoldSQL = `
UPDATE holds
SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2`

	// A hold is confirmable only while its deadline is still ahead.
	confirmHoldSQL = `
UPDATE holds
SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2 AND expires_at > $4`
)

type HoldRepository struct {
	db db.DBTX
}

func NewHoldRepository(db db.DBTX) *HoldRepository {
	return &HoldRepository{db: db}
}

func (r *HoldRepository) Create(ctx context.Context, h *hold.Hold) error {
	_, err := r.db.Exec(ctx, insertHoldSQL,
		h.ID(),
		h.UserID(),
		h.ShowingID(),
		string(h.Status()),
		h.ExpiresAt(),
		pgconv.StringPtrToPgtype(h.IdempotencyKey()),
		h.CreatedAt(),
		h.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create hold", err)
	}

	if _, err := r.db.Exec(ctx, insertHoldUnitsSQL, h.ID(), h.UnitIDs()); err != nil {
		return infra.WrapRepoErr("failed to create hold units", err)
	}
	return nil
}

func (r *HoldRepository) Transition(ctx context.Context, id uuid.UUID, from, to hold.Status, now time.Time) error {
	query := transitionHoldSQL
	if to == hold.StatusConfirmed {
		query = confirmHoldSQL
	}

	tag, err := r.db.Exec(ctx, query, id, string(from), string(to), now)
	if err != nil {
		return infra.WrapRepoErr("failed to transition hold", err)
	}
	if tag.RowsAffected() != 1 {
		return infra.WrapRepoErr(fmt.Sprintf("hold %s is no longer %s", id, from), nil, infra.KindConflict)
	}
	return nil
}
