package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Topic string

const (
	TopicReservations Topic = "reservation-events"
	TopicSales        Topic = "sale-events"
	TopicInventory    Topic = "inventory-events"
)

// Topics lists every topic the service produces to.
var Topics = []Topic{TopicReservations, TopicSales, TopicInventory}

func (t Topic) String() string {
	return string(t)
}

// DeadLetter is where undeliverable or unprocessable messages of t are parked.
func (t Topic) DeadLetter() Topic {
	return t + "-dlq"
}

type Type string

const (
	TypeReservationCreated   Type = "reservation.created"
	TypeReservationConfirmed Type = "reservation.confirmed"
	TypeReservationCancelled Type = "reservation.cancelled"
	TypeReservationExpired   Type = "reservation.expired"
	TypePaymentConfirmed     Type = "payment.confirmed"
	TypeSeatsReleased        Type = "seat.released"
	TypeSeatsSold            Type = "seat.sold"
)

type ReleaseReason string

const (
	ReasonCancelled ReleaseReason = "cancelled"
	ReasonExpired   ReleaseReason = "expired"
)

// Event is one message ready to be published.
type Event struct {
	Topic   Topic
	Key     string
	Type    Type
	Payload any
}

// Envelope is the JSON body written to the broker.
type Envelope struct {
	EventID    string    `json:"eventId"`
	EventType  Type      `json:"eventType"`
	OccurredAt time.Time `json:"occurredAt"`
	Producer   string    `json:"producer"`
	Payload    any       `json:"payload"`
}

type ReservationCreated struct {
	ReservationID uuid.UUID   `json:"reservationId"`
	UserID        uuid.UUID   `json:"userId"`
	ShowingID     uuid.UUID   `json:"showingId"`
	UnitIDs       []uuid.UUID `json:"unitIds"`
	ExpiresAt     time.Time   `json:"expiresAt"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type ReservationConfirmed struct {
	ReservationID uuid.UUID `json:"reservationId"`
	SaleID        uuid.UUID `json:"saleId"`
	ConfirmedAt   time.Time `json:"confirmedAt"`
}

type ReservationCancelled struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Reason        string    `json:"reason"`
	CancelledAt   time.Time `json:"cancelledAt"`
}

type ReservationExpired struct {
	ReservationID uuid.UUID   `json:"reservationId"`
	UserID        uuid.UUID   `json:"userId"`
	ShowingID     uuid.UUID   `json:"showingId"`
	UnitIDs       []uuid.UUID `json:"unitIds"`
	ExpiredAt     time.Time   `json:"expiredAt"`
}

type PaymentConfirmed struct {
	SaleID        uuid.UUID       `json:"saleId"`
	ReservationID uuid.UUID       `json:"reservationId"`
	UserID        uuid.UUID       `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ConfirmedAt   time.Time       `json:"confirmedAt"`
}

type SeatsReleased struct {
	ShowingID  uuid.UUID     `json:"showingId"`
	UnitIDs    []uuid.UUID   `json:"unitIds"`
	Reason     ReleaseReason `json:"reason"`
	ReleasedAt time.Time     `json:"releasedAt"`
}

type SeatsSold struct {
	ShowingID uuid.UUID   `json:"showingId"`
	UnitIDs   []uuid.UUID `json:"unitIds"`
	SaleID    uuid.UUID   `json:"saleId"`
	SoldAt    time.Time   `json:"soldAt"`
}
