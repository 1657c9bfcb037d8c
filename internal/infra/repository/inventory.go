package repository

import (
	"context"
	"fmt"

	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"

	"github.com/google/uuid"
)

const transitionUnitsSQL = `
UPDATE showing_seats
SET status = $4, version = version + 1, updated_at = NOW()
WHERE showing_id = $1 AND id = ANY($2) AND status = $3`

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Transition fails with KindConflict unless every unit was in the from status.
// Callers run it inside a unit of work so a partial match is rolled back.
func (r *InventoryRepository) Transition(
	ctx context.Context,
	showingID uuid.UUID,
	unitIDs []uuid.UUID,
	from, to seat.Status,
) error {
	if len(unitIDs) == 0 {
		return nil
	}

	tag, err := r.db.Exec(ctx, transitionUnitsSQL, showingID, unitIDs, string(from), string(to))
	if err != nil {
		return infra.WrapRepoErr("failed to transition units", err)
	}

	if affected := tag.RowsAffected(); affected != int64(len(unitIDs)) {
		return infra.WrapRepoErr(
			fmt.Sprintf("units %s->%s matched %d of %d", from, to, affected, len(unitIDs)),
			nil,
			infra.KindConflict,
		)
	}
	return nil
}
