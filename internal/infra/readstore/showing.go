package readstore

import (
	"context"

	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/pgconv"
	"cinema-reservation/internal/usecase/queries"
	"cinema-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	showingSnapshotSQL = `
SELECT id, room_id, movie_title, starts_at, ticket_price
FROM showings
WHERE id = $1`

	showingSeatsSQL = `
SELECT ss.id, ss.seat_id, s.row_label, s.seat_number, ss.status, ss.version
FROM showing_seats ss
JOIN seats s ON s.id = ss.seat_id
WHERE ss.showing_id = $1
ORDER BY s.row_label, s.seat_number`

	unitsOfShowingSQL = `
SELECT id, showing_id, status, version
FROM showing_seats
WHERE showing_id = $1 AND id = ANY($2)`
)

type ShowingReadStore struct {
	db db.DBTX
}

func NewShowingReadStore(db db.DBTX) *ShowingReadStore {
	return &ShowingReadStore{db: db}
}

func (r *ShowingReadStore) FindSnapshot(ctx context.Context, id uuid.UUID) (*shared.ShowingSnapshot, string, error) {
	var (
		snap  shared.ShowingSnapshot
		title string
		price pgtype.Numeric
	)
	err := r.db.QueryRow(ctx, showingSnapshotSQL, id).Scan(&snap.ID, &snap.RoomID, &title, &snap.StartsAt, &price)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("showing not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find showing by ID", err)
	}

	snap.TicketPrice, err = pgconv.DecimalFromNumeric(price)
	if err != nil {
		return nil, "", infra.WrapRepoErr("invalid ticket price", err)
	}
	return &snap, title, nil
}

func (r *ShowingReadStore) FindSeats(ctx context.Context, showingID uuid.UUID) (*queries.ShowingSeatsView, error) {
	snap, title, err := r.FindSnapshot(ctx, showingID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, showingSeatsSQL, showingID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list showing seats", err)
	}
	seats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (queries.SeatAvailability, error) {
		var (
			s        queries.SeatAvailability
			rowLabel string
			number   int
		)
		if err := row.Scan(&s.UnitID, &s.SeatID, &rowLabel, &number, &s.Status, &s.Version); err != nil {
			return s, err
		}
		s.Label = seat.Label(rowLabel, number)
		return s, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan showing seats", err)
	}

	return &queries.ShowingSeatsView{
		ShowingID:  snap.ID,
		RoomID:     snap.RoomID,
		MovieTitle: title,
		StartsAt:   snap.StartsAt,
		Seats:      seats,
	}, nil
}

func (r *ShowingReadStore) FindUnits(ctx context.Context, showingID uuid.UUID, unitIDs []uuid.UUID) ([]shared.UnitSnapshot, error) {
	rows, err := r.db.Query(ctx, unitsOfShowingSQL, showingID, unitIDs)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find units of showing", err)
	}
	units, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shared.UnitSnapshot, error) {
		var (
			u      shared.UnitSnapshot
			status string
		)
		if err := row.Scan(&u.ID, &u.ShowingID, &status, &u.Version); err != nil {
			return u, err
		}
		u.Status = seat.Status(status)
		return u, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan units", err)
	}
	return units, nil
}
