//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestShowing is a showing with one inventory unit per seat, keyed by label.
type TestShowing struct {
	ID     uuid.UUID
	RoomID uuid.UUID
	Units  map[string]uuid.UUID
}

// Unit returns the inventory unit for a seat label such as "A1".
func (s TestShowing) Unit(t *testing.T, label string) uuid.UUID {
	t.Helper()
	id, ok := s.Units[label]
	require.True(t, ok, "no unit for seat %s", label)
	return id
}

func CreateTestUser(t *testing.T, db DBLike, email, name string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, name) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING",
		userID, email, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

// CreateTestShowing creates a room with rows x perRow seats, a showing in it
// and an AVAILABLE unit for every seat.
func CreateTestShowing(t *testing.T, db DBLike, title string, ticketPrice string, rows []string, perRow int) TestShowing {
	t.Helper()

	ctx := context.Background()
	show := TestShowing{
		ID:     uuid.New(),
		RoomID: uuid.New(),
		Units:  make(map[string]uuid.UUID, len(rows)*perRow),
	}

	_, err := db.Exec(ctx, "INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)",
		show.RoomID, "Room "+show.RoomID.String()[:8], len(rows)*perRow)
	require.NoError(t, err)

	startsAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Minute)
	_, err = db.Exec(ctx, `INSERT INTO showings (id, room_id, movie_title, starts_at, ends_at, ticket_price)
		VALUES ($1, $2, $3, $4, $5, $6::numeric)`,
		show.ID, show.RoomID, title, startsAt, startsAt.Add(2*time.Hour), ticketPrice)
	require.NoError(t, err)

	for _, row := range rows {
		for n := 1; n <= perRow; n++ {
			seatID, unitID := uuid.New(), uuid.New()
			_, err = db.Exec(ctx, "INSERT INTO seats (id, room_id, row_label, seat_number) VALUES ($1, $2, $3, $4)",
				seatID, show.RoomID, row, n)
			require.NoError(t, err)

			_, err = db.Exec(ctx, "INSERT INTO showing_seats (id, showing_id, seat_id) VALUES ($1, $2, $3)",
				unitID, show.ID, seatID)
			require.NoError(t, err)

			show.Units[fmt.Sprintf("%s%d", row, n)] = unitID
		}
	}

	return show
}

// UnitStatus reads the current status of one inventory unit.
func UnitStatus(t *testing.T, db DBLike, unitID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM showing_seats WHERE id = $1", unitID).Scan(&status)
	require.NoError(t, err)
	return status
}

// HoldStatus reads the current status of one hold.
func HoldStatus(t *testing.T, db DBLike, holdID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM holds WHERE id = $1", holdID).Scan(&status)
	require.NoError(t, err)
	return status
}

// ExpireHold moves a hold's deadline into the past.
func ExpireHold(t *testing.T, db DBLike, holdID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		"UPDATE holds SET expires_at = NOW() - INTERVAL '1 second' WHERE id = $1", holdID)
	require.NoError(t, err)
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
