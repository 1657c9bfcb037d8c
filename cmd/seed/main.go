// Command seed loads a small demo catalogue: rooms with seats, users, and
// showings with their inventory units. Users, rooms and seats are upserted;
// every run adds a fresh set of showings.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"cinema-reservation/internal/handler/middleware"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	rooms    = []string{"Screen 1", "Screen 2", "Screen 3"}
	seatRows = []string{"A", "B"}
	perRow   = 8

	users = []struct{ email, name string }{
		{"alice@example.com", "Alice"},
		{"bob@example.com", "Bob"},
	}

	showings = []struct {
		room   string
		title  string
		offset time.Duration
		price  string
	}{
		{"Screen 1", "Inception", 24 * time.Hour, "12.50"},
		{"Screen 2", "Spirited Away", 26 * time.Hour, "10.00"},
	}
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := middleware.NewLogger(cfg.Log).GetSlogLogger()

	pool, cleanup, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("failed to migrate", "error", err)
		os.Exit(1)
	}
	if err := seed(ctx, pool, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete")
}

func seed(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for _, u := range users {
			if _, err := tx.Exec(ctx,
				`INSERT INTO users (email, name) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING`,
				u.email, u.name); err != nil {
				return errs.Wrapf(err, "user %s", u.email)
			}
		}

		for _, name := range rooms {
			if err := seedRoom(ctx, tx, name); err != nil {
				return err
			}
		}

		base := time.Now().UTC().Truncate(time.Hour)
		for _, s := range showings {
			startsAt := base.Add(s.offset)
			var showingID string
			err := tx.QueryRow(ctx, `
INSERT INTO showings (room_id, movie_title, starts_at, ends_at, ticket_price)
SELECT r.id, $2, $3, $4, $5::numeric FROM rooms r WHERE r.name = $1
RETURNING id`, s.room, s.title, startsAt, startsAt.Add(2*time.Hour), s.price).Scan(&showingID)
			if err != nil {
				return errs.Wrapf(err, "showing %s", s.title)
			}

			tag, err := tx.Exec(ctx, `
INSERT INTO showing_seats (showing_id, seat_id)
SELECT $1, s.id FROM seats s JOIN rooms r ON r.id = s.room_id WHERE r.name = $2`, showingID, s.room)
			if err != nil {
				return errs.Wrapf(err, "inventory for %s", s.title)
			}
			logger.Info("showing seeded", "showing_id", showingID, "title", s.title, "units", tag.RowsAffected())
		}
		return nil
	})
}

func seedRoom(ctx context.Context, tx pgx.Tx, name string) error {
	var roomID string
	err := tx.QueryRow(ctx, `
INSERT INTO rooms (name, capacity) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET capacity = EXCLUDED.capacity
RETURNING id`, name, len(seatRows)*perRow).Scan(&roomID)
	if err != nil {
		return errs.Wrapf(err, "room %s", name)
	}

	for _, row := range seatRows {
		for n := 1; n <= perRow; n++ {
			if _, err := tx.Exec(ctx, `
INSERT INTO seats (room_id, row_label, seat_number) VALUES ($1, $2, $3)
ON CONFLICT (room_id, row_label, seat_number) DO NOTHING`, roomID, row, n); err != nil {
				return errs.Wrapf(err, "seat %s%d in %s", row, n, name)
			}
		}
	}
	return nil
}
