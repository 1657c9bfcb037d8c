package commands

import (
	"context"
	"log/slog"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/shared"
)

// ExpireReport summarises one sweep. Skipped holds were confirmed or
// cancelled between listing and expiring them. Failed includes pending holds
// whose units had already left the HELD state.
type ExpireReport struct {
	Found   int
	Expired int
	Skipped int
	Failed  int
}

type ExpirationCommands interface {
	ExpireDue(ctx context.Context) (ExpireReport, error)
}

type expirationUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher shared.EventPublisher
	clock     clock.Clock
	batchSize int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewExpirationUseCase(
	uow shared.UnitOfWork,
	publisher shared.EventPublisher,
	clk clock.Clock,
	cfg config.ReservationConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) ExpirationCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &expirationUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		batchSize: cfg.ReaperBatchSize,
		metrics:   m,
		logger:    logger,
	}
}

// ExpireDue expires every PENDING hold past its deadline, each in its own
// transaction. One failing hold never stops the others.
func (uc *expirationUseCaseImpl) ExpireDue(ctx context.Context) (ExpireReport, error) {
	var report ExpireReport

	now := uc.clock.Now()
	due, err := uc.uow.CommandReads().ExpiredHolds(ctx, now, uc.batchSize)
	if err != nil {
		return report, errs.Mark(err, ErrInfrastructure)
	}
	report.Found = len(due)

	for _, h := range due {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		switch err := uc.expire(ctx, h, now); {
		case err == nil:
			report.Expired++
		case infra.IsKind(err, infra.KindConflict) && !uc.stillPending(ctx, h):
			report.Skipped++
			uc.logger.Debug("hold left pending state before expiry", "hold_id", h.ID())
		case infra.IsKind(err, infra.KindConflict):
			// Hold is PENDING but its units are no longer HELD.
			report.Failed++
			uc.logger.Error("expiring hold found units out of held state",
				"hold_id", h.ID(),
				"showing_id", h.ShowingID(),
				"error", err.Error())
		default:
			report.Failed++
			uc.logger.Error("failed to expire hold",
				"hold_id", h.ID(),
				"showing_id", h.ShowingID(),
				"error", err.Error())
		}
	}

	uc.metrics.HoldsExpired(report.Expired)
	uc.metrics.ReaperFailures(report.Failed)
	return report, nil
}

// stillPending re-reads the hold after a refused expiry. A read failure
// counts as pending so the refusal is reported rather than skipped.
func (uc *expirationUseCaseImpl) stillPending(ctx context.Context, h *hold.Hold) bool {
	current, err := uc.uow.CommandReads().HoldByID(ctx, h.ID())
	if err != nil {
		return true
	}
	return current.Status() == hold.StatusPending
}

func (uc *expirationUseCaseImpl) expire(ctx context.Context, h *hold.Hold, now time.Time) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Holds().Transition(ctx, h.ID(), hold.StatusPending, hold.StatusExpired, now); err != nil {
			return err
		}
		return tx.Inventory().Transition(ctx, h.ShowingID(), h.UnitIDs(), seat.StatusHeld, seat.StatusAvailable)
	})
	if err != nil {
		return err
	}

	uc.logger.Info("hold expired", "hold_id", h.ID(), "units", len(h.UnitIDs()))

	uc.publisher.Publish(ctx, holdExpiredEvent(h, now))
	uc.publisher.Publish(ctx, seatsReleasedEvent(h, event.ReasonExpired, now))
	return nil
}
