package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/infra/readstore"
	"cinema-reservation/internal/infra/repository"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"

	maxRetries  = 3
	backoffBase = 100 * time.Millisecond
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUoW{
		pool:   pool,
		logger: logger,
	}
}

// ReadCommitted is enough: every write is a conditional update whose
// RowsAffected decides success.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		err = fn(ctx, &pgTx{dbtx: pgxTx})
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries && isRetryableError(err) {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, backoffBase)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- high bit masked above
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	inventoryRepo shared.InventoryRepository
	holdRepo      shared.HoldRepository
	saleRepo      shared.SaleRepository
	commandReads  shared.CommandReads
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Inventory() shared.InventoryRepository {
	if t.inventoryRepo == nil {
		t.inventoryRepo = repository.NewInventoryRepository(t.dbtx)
	}
	return t.inventoryRepo
}

func (t *pgTx) Holds() shared.HoldRepository {
	if t.holdRepo == nil {
		t.holdRepo = repository.NewHoldRepository(t.dbtx)
	}
	return t.holdRepo
}

func (t *pgTx) Sales() shared.SaleRepository {
	if t.saleRepo == nil {
		t.saleRepo = repository.NewSaleRepository(t.dbtx)
	}
	return t.saleRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = newCommandReads(t.dbtx)
	}
	return t.commandReads
}

type commandReads struct {
	holds    *readstore.HoldReadStore
	showings *readstore.ShowingReadStore
	users    *readstore.UserReadStore
}

func newCommandReads(dbtx db.DBTX) *commandReads {
	return &commandReads{
		holds:    readstore.NewHoldReadStore(dbtx),
		showings: readstore.NewShowingReadStore(dbtx),
		users:    readstore.NewUserReadStore(dbtx),
	}
}

func (r *commandReads) HoldByID(ctx context.Context, id uuid.UUID) (*hold.Hold, error) {
	return r.holds.FindEntityByID(ctx, id)
}

func (r *commandReads) HoldByIdempotencyKey(ctx context.Context, key string) (*hold.Hold, error) {
	return r.holds.FindEntityByIdempotencyKey(ctx, key)
}

func (r *commandReads) ExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	return r.holds.FindExpired(ctx, now, limit)
}

func (r *commandReads) ShowingByID(ctx context.Context, id uuid.UUID) (*shared.ShowingSnapshot, error) {
	snap, _, err := r.showings.FindSnapshot(ctx, id)
	return snap, err
}

func (r *commandReads) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.users.Exists(ctx, id)
}

func (r *commandReads) UnitsOfShowing(ctx context.Context, showingID uuid.UUID, unitIDs []uuid.UUID) ([]shared.UnitSnapshot, error) {
	return r.showings.FindUnits(ctx, showingID, unitIDs)
}
