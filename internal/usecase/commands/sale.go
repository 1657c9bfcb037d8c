package commands

import (
	"context"
	"log/slog"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/sale"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/shared"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ConfirmHoldResult struct {
	SaleID uuid.UUID
}

//go:generate mockgen -source=sale.go -destination=../../../tests/mock/commands/sale_mock.go -package=commandsmock

type SaleCommands interface {
	ConfirmHold(ctx context.Context, holdID uuid.UUID) (*ConfirmHoldResult, error)
}

type saleUseCaseImpl struct {
	uow       shared.UnitOfWork
	publisher shared.EventPublisher
	clock     clock.Clock
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewSaleUseCase(
	uow shared.UnitOfWork,
	publisher shared.EventPublisher,
	clk clock.Clock,
	m *metrics.Metrics,
	logger *slog.Logger,
) SaleCommands {
	if logger == nil {
		logger = slog.Default()
	}
	return &saleUseCaseImpl{
		uow:       uow,
		publisher: publisher,
		clock:     clk,
		metrics:   m,
		logger:    logger,
		tracer:    tracer(),
	}
}

func (uc *saleUseCaseImpl) ConfirmHold(ctx context.Context, holdID uuid.UUID) (*ConfirmHoldResult, error) {
	ctx, span := uc.tracer.Start(ctx, "ConfirmHold", trace.WithAttributes(
		attribute.String("hold.id", holdID.String()),
	))
	defer span.End()

	result, err := uc.confirmHold(ctx, holdID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", result.SaleID.String()))
	return result, nil
}

func (uc *saleUseCaseImpl) confirmHold(ctx context.Context, holdID uuid.UUID) (*ConfirmHoldResult, error) {
	reads := uc.uow.CommandReads()

	h, err := loadHold(ctx, reads, holdID)
	if err != nil {
		return nil, err
	}

	// The deadline decides, not whether the reaper has swept yet.
	now := uc.clock.Now()
	if err := h.CanConfirmAt(now); err != nil {
		if errs.Is(err, hold.ErrExpired) {
			return nil, errs.Mark(err, ErrHoldExpired)
		}
		return nil, notPending(h.Status())
	}

	showing, err := reads.ShowingByID(ctx, h.ShowingID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrShowingNotFound)
		}
		return nil, errs.Mark(err, ErrInfrastructure)
	}

	s, err := sale.NewSale(h.ID(), h.UserID(), showing.TicketPrice, len(h.UnitIDs()), now)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Holds().Transition(ctx, h.ID(), hold.StatusPending, hold.StatusConfirmed, now); err != nil {
			return err
		}
		if err := tx.Inventory().Transition(ctx, h.ShowingID(), h.UnitIDs(), seat.StatusHeld, seat.StatusSold); err != nil {
			return err
		}
		return tx.Sales().Create(ctx, s)
	})
	if err != nil {
		return nil, explainRefusal(ctx, reads, h.ID(), now, err)
	}

	uc.logger.Info("hold confirmed",
		"hold_id", h.ID(),
		"sale_id", s.ID(),
		"total_amount", s.TotalAmount().StringFixed(2))

	uc.publisher.Publish(ctx, paymentConfirmedEvent(s))
	uc.publisher.Publish(ctx, seatsSoldEvent(h, s))
	uc.publisher.Publish(ctx, holdConfirmedEvent(h, s))

	return &ConfirmHoldResult{SaleID: s.ID()}, nil
}
