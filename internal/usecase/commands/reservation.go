package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/lock"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type CreateHoldRequest struct {
	UserID         uuid.UUID
	ShowingID      uuid.UUID
	UnitIDs        []uuid.UUID
	IdempotencyKey *string
}

type CreateHoldResult struct {
	HoldID     uuid.UUID
	IsReplayed bool
}

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/commands/reservation_mock.go -package=commandsmock

type ReservationCommands interface {
	CreateHold(ctx context.Context, req CreateHoldRequest) (*CreateHoldResult, error)
	CancelHold(ctx context.Context, holdID uuid.UUID) error
}

type reservationUseCaseImpl struct {
	uow       shared.UnitOfWork
	locker    shared.Locker
	publisher shared.EventPublisher
	clock     clock.Clock
	cfg       config.ReservationConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewReservationUseCase(
	uow shared.UnitOfWork,
	locker shared.Locker,
	publisher shared.EventPublisher,
	clk clock.Clock,
	cfg config.ReservationConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) ReservationCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationUseCaseImpl{
		uow:       uow,
		locker:    locker,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		tracer:    tracer(),
	}
}

func (uc *reservationUseCaseImpl) CreateHold(ctx context.Context, req CreateHoldRequest) (*CreateHoldResult, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateHold", trace.WithAttributes(
		attribute.String("user.id", req.UserID.String()),
		attribute.String("showing.id", req.ShowingID.String()),
		attribute.Int("units.requested", len(req.UnitIDs)),
	))
	defer span.End()

	result, err := uc.createHold(ctx, req)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("hold.id", result.HoldID.String()),
		attribute.Bool("hold.replayed", result.IsReplayed),
	)
	return result, nil
}

func (uc *reservationUseCaseImpl) createHold(ctx context.Context, req CreateHoldRequest) (*CreateHoldResult, error) {
	units, err := hold.NewUnitSet(req.UnitIDs, uc.cfg.MaxUnitsPerHold)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}
	key, err := hold.NormalizeIdempotencyKey(req.IdempotencyKey)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	if key != nil {
		replayed, err := uc.findReplay(ctx, *key)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	if err := uc.validateReferences(ctx, req.UserID, req.ShowingID, units); err != nil {
		return nil, err
	}

	locks, err := uc.locker.AcquireAll(ctx, unitLockKeys(units.IDs()), uc.cfg.LockTTL)
	if err != nil {
		if errs.Is(err, lock.ErrLockBusy) {
			uc.metrics.HoldConflict("locked")
			return nil, errs.Mark(err, ErrUnitsLocked)
		}
		return nil, errs.Mark(err, ErrInfrastructure)
	}
	// The request ctx may already be cancelled when the locks come off.
	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() { uc.locker.ReleaseAll(context.WithoutCancel(ctx), locks) })
	}
	defer release()

	h, err := hold.NewHold(req.UserID, req.ShowingID, units, key, uc.clock.Now(), uc.cfg.HoldTTL)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Inventory().Transition(ctx, h.ShowingID(), h.UnitIDs(), seat.StatusAvailable, seat.StatusHeld); err != nil {
			return err
		}
		return tx.Holds().Create(ctx, h)
	})
	// Locks guard the claim only; broker I/O below runs without them.
	release()
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindConflict):
			uc.metrics.HoldConflict("unavailable")
			return nil, errs.Mark(err, ErrUnitsUnavailable)
		case key != nil && infra.IsKind(err, infra.KindDuplicateKey):
			// A concurrent request with the same key committed first.
			replayed, rerr := uc.findReplay(ctx, *key)
			if rerr != nil {
				return nil, rerr
			}
			if replayed != nil {
				return replayed, nil
			}
			return nil, errs.Mark(err, ErrInfrastructure)
		default:
			return nil, errs.Mark(err, ErrInfrastructure)
		}
	}

	uc.metrics.HoldCreated()
	uc.logger.Info("hold created",
		"hold_id", h.ID(),
		"showing_id", h.ShowingID(),
		"units", units.Len(),
		"expires_at", h.ExpiresAt())

	uc.publisher.Publish(ctx, holdCreatedEvent(h))

	return &CreateHoldResult{HoldID: h.ID()}, nil
}

func (uc *reservationUseCaseImpl) findReplay(ctx context.Context, key string) (*CreateHoldResult, error) {
	existing, err := uc.uow.CommandReads().HoldByIdempotencyKey(ctx, key)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Mark(err, ErrInfrastructure)
	}

	uc.logger.Info("replaying hold for idempotency key", "hold_id", existing.ID())
	return &CreateHoldResult{HoldID: existing.ID(), IsReplayed: true}, nil
}

func (uc *reservationUseCaseImpl) validateReferences(ctx context.Context, userID, showingID uuid.UUID, units hold.UnitSet) error {
	reads := uc.uow.CommandReads()

	exists, err := reads.UserExists(ctx, userID)
	if err != nil {
		return errs.Mark(err, ErrInfrastructure)
	}
	if !exists {
		return ErrUserNotFound
	}

	if _, err := reads.ShowingByID(ctx, showingID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrShowingNotFound)
		}
		return errs.Mark(err, ErrInfrastructure)
	}

	found, err := reads.UnitsOfShowing(ctx, showingID, units.IDs())
	if err != nil {
		return errs.Mark(err, ErrInfrastructure)
	}
	if len(found) != units.Len() {
		return errs.WithDetail(ErrUnitNotFound, missingUnits(units.IDs(), found))
	}
	return nil
}

func (uc *reservationUseCaseImpl) CancelHold(ctx context.Context, holdID uuid.UUID) error {
	ctx, span := uc.tracer.Start(ctx, "CancelHold", trace.WithAttributes(
		attribute.String("hold.id", holdID.String()),
	))
	defer span.End()

	if err := uc.cancelHold(ctx, holdID); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (uc *reservationUseCaseImpl) cancelHold(ctx context.Context, holdID uuid.UUID) error {
	h, err := loadHold(ctx, uc.uow.CommandReads(), holdID)
	if err != nil {
		return err
	}
	if err := h.CanCancel(); err != nil {
		return notPending(h.Status())
	}

	now := uc.clock.Now()
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Holds().Transition(ctx, h.ID(), hold.StatusPending, hold.StatusCancelled, now); err != nil {
			return err
		}
		return tx.Inventory().Transition(ctx, h.ShowingID(), h.UnitIDs(), seat.StatusHeld, seat.StatusAvailable)
	})
	if err != nil {
		return explainRefusal(ctx, uc.uow.CommandReads(), h.ID(), now, err)
	}

	uc.logger.Info("hold cancelled", "hold_id", h.ID(), "units", len(h.UnitIDs()))

	uc.publisher.Publish(ctx, holdCancelledEvent(h, now))
	uc.publisher.Publish(ctx, seatsReleasedEvent(h, event.ReasonCancelled, now))
	return nil
}

func loadHold(ctx context.Context, reads shared.CommandReads, id uuid.UUID) (*hold.Hold, error) {
	h, err := reads.HoldByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrHoldNotFound)
		}
		return nil, errs.Mark(err, ErrInfrastructure)
	}
	return h, nil
}

// explainRefusal turns a conditional update that matched nothing into the
// reason a caller can act on: someone else moved the hold first, or its
// deadline passed in between.
func explainRefusal(ctx context.Context, reads shared.CommandReads, holdID uuid.UUID, now time.Time, err error) error {
	if !infra.IsKind(err, infra.KindConflict) {
		return errs.Mark(err, ErrInfrastructure)
	}

	current, rerr := reads.HoldByID(ctx, holdID)
	if rerr != nil {
		return errs.Mark(err, ErrInfrastructure)
	}
	switch {
	case current.Status() != hold.StatusPending:
		return notPending(current.Status())
	case current.IsExpiredAt(now):
		return errs.Mark(err, ErrHoldExpired)
	default:
		return errs.Mark(err, ErrUnitsUnavailable)
	}
}

func unitLockKeys(ids []uuid.UUID) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, lock.UnitKey(id))
	}
	return keys
}

func missingUnits(requested []uuid.UUID, found []shared.UnitSnapshot) string {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, u := range found {
		present[u.ID] = struct{}{}
	}
	missing := ""
	for _, id := range requested {
		if _, ok := present[id]; ok {
			continue
		}
		if missing != "" {
			missing += ","
		}
		missing += id.String()
	}
	return "unknown units: " + missing
}
