package hold

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotPending     = errors.New("hold is not pending")
	ErrExpired        = errors.New("hold has expired")
	ErrInvalidHoldTTL = errors.New("hold ttl must be positive")
)

// Hold is a time-bounded claim over a set of inventory units of one showing.
type Hold struct {
	id             uuid.UUID
	userID         uuid.UUID
	showingID      uuid.UUID
	units          UnitSet
	status         Status
	expiresAt      time.Time
	idempotencyKey *string
	createdAt      time.Time
	updatedAt      time.Time
}

func NewHold(
	userID, showingID uuid.UUID,
	units UnitSet,
	idempotencyKey *string,
	now time.Time,
	ttl time.Duration,
) (*Hold, error) {
	if units.Len() == 0 {
		return nil, ErrNoUnits
	}
	if ttl <= 0 {
		return nil, ErrInvalidHoldTTL
	}
	key, err := NormalizeIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, err
	}

	return &Hold{
		id:             uuid.New(),
		userID:         userID,
		showingID:      showingID,
		units:          units,
		status:         StatusPending,
		expiresAt:      now.Add(ttl),
		idempotencyKey: key,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructHold(
	id, userID, showingID uuid.UUID,
	unitIDs []uuid.UUID,
	status Status,
	expiresAt time.Time,
	idempotencyKey *string,
	createdAt, updatedAt time.Time,
) *Hold {
	units, _ := NewUnitSet(unitIDs, 0)
	return &Hold{
		id:             id,
		userID:         userID,
		showingID:      showingID,
		units:          units,
		status:         status,
		expiresAt:      expiresAt,
		idempotencyKey: idempotencyKey,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// IsExpiredAt reports whether the deadline has passed. A hold is no longer
// confirmable at the exact instant of expiresAt.
func (h *Hold) IsExpiredAt(now time.Time) bool {
	return !h.expiresAt.After(now)
}

func (h *Hold) CanConfirmAt(now time.Time) error {
	if h.status != StatusPending {
		return ErrNotPending
	}
	if h.IsExpiredAt(now) {
		return ErrExpired
	}
	return nil
}

func (h *Hold) CanCancel() error {
	if h.status != StatusPending {
		return ErrNotPending
	}
	return nil
}

func (h *Hold) ID() uuid.UUID           { return h.id }
func (h *Hold) UserID() uuid.UUID       { return h.userID }
func (h *Hold) ShowingID() uuid.UUID    { return h.showingID }
func (h *Hold) UnitIDs() []uuid.UUID    { return h.units.IDs() }
func (h *Hold) Status() Status          { return h.status }
func (h *Hold) ExpiresAt() time.Time    { return h.expiresAt }
func (h *Hold) IdempotencyKey() *string { return h.idempotencyKey }
func (h *Hold) CreatedAt() time.Time    { return h.createdAt }
func (h *Hold) UpdatedAt() time.Time    { return h.updatedAt }
