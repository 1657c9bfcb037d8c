package commands

import (
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/sale"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "cinema-reservation/commands"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
}

func holdCreatedEvent(h *hold.Hold) event.Event {
	return event.Event{
		Topic: event.TopicReservations,
		Key:   h.ID().String(),
		Type:  event.TypeReservationCreated,
		Payload: event.ReservationCreated{
			ReservationID: h.ID(),
			UserID:        h.UserID(),
			ShowingID:     h.ShowingID(),
			UnitIDs:       h.UnitIDs(),
			ExpiresAt:     h.ExpiresAt(),
			CreatedAt:     h.CreatedAt(),
		},
	}
}

func holdConfirmedEvent(h *hold.Hold, s *sale.Sale) event.Event {
	return event.Event{
		Topic: event.TopicReservations,
		Key:   h.ID().String(),
		Type:  event.TypeReservationConfirmed,
		Payload: event.ReservationConfirmed{
			ReservationID: h.ID(),
			SaleID:        s.ID(),
			ConfirmedAt:   s.ConfirmedAt(),
		},
	}
}

func holdCancelledEvent(h *hold.Hold, at time.Time) event.Event {
	return event.Event{
		Topic: event.TopicReservations,
		Key:   h.ID().String(),
		Type:  event.TypeReservationCancelled,
		Payload: event.ReservationCancelled{
			ReservationID: h.ID(),
			Reason:        string(event.ReasonCancelled),
			CancelledAt:   at,
		},
	}
}

func holdExpiredEvent(h *hold.Hold, at time.Time) event.Event {
	return event.Event{
		Topic: event.TopicReservations,
		Key:   h.ID().String(),
		Type:  event.TypeReservationExpired,
		Payload: event.ReservationExpired{
			ReservationID: h.ID(),
			UserID:        h.UserID(),
			ShowingID:     h.ShowingID(),
			UnitIDs:       h.UnitIDs(),
			ExpiredAt:     at,
		},
	}
}

func paymentConfirmedEvent(s *sale.Sale) event.Event {
	return event.Event{
		Topic: event.TopicSales,
		Key:   s.ID().String(),
		Type:  event.TypePaymentConfirmed,
		Payload: event.PaymentConfirmed{
			SaleID:        s.ID(),
			ReservationID: s.HoldID(),
			UserID:        s.UserID(),
			TotalAmount:   s.TotalAmount(),
			ConfirmedAt:   s.ConfirmedAt(),
		},
	}
}

func seatsSoldEvent(h *hold.Hold, s *sale.Sale) event.Event {
	return event.Event{
		Topic: event.TopicInventory,
		Key:   h.ShowingID().String(),
		Type:  event.TypeSeatsSold,
		Payload: event.SeatsSold{
			ShowingID: h.ShowingID(),
			UnitIDs:   h.UnitIDs(),
			SaleID:    s.ID(),
			SoldAt:    s.ConfirmedAt(),
		},
	}
}

func seatsReleasedEvent(h *hold.Hold, reason event.ReleaseReason, at time.Time) event.Event {
	return event.Event{
		Topic: event.TopicInventory,
		Key:   h.ShowingID().String(),
		Type:  event.TypeSeatsReleased,
		Payload: event.SeatsReleased{
			ShowingID:  h.ShowingID(),
			UnitIDs:    h.UnitIDs(),
			Reason:     reason,
			ReleasedAt: at,
		},
	}
}
