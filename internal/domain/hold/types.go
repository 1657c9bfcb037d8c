package hold

import (
	"bytes"
	"errors"
	"slices"

	"github.com/google/uuid"
)

var (
	ErrNoUnits               = errors.New("at least one unit is required")
	ErrTooManyUnits          = errors.New("too many units requested")
	ErrInvalidIdempotencyKey = errors.New("invalid idempotency key")
)

const MaxIdempotencyKeyLength = 255

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled || s == StatusExpired
}

// UnitSet is a de-duplicated, canonically ordered set of inventory unit ids.
type UnitSet struct {
	ids []uuid.UUID
}

func NewUnitSet(ids []uuid.UUID, maxUnits int) (UnitSet, error) {
	if len(ids) == 0 {
		return UnitSet{}, ErrNoUnits
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return UnitSet{}, ErrNoUnits
	}
	if maxUnits > 0 && len(unique) > maxUnits {
		return UnitSet{}, ErrTooManyUnits
	}

	slices.SortFunc(unique, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return UnitSet{ids: unique}, nil
}

func (u UnitSet) IDs() []uuid.UUID {
	return slices.Clone(u.ids)
}

func (u UnitSet) Len() int {
	return len(u.ids)
}

func NormalizeIdempotencyKey(key *string) (*string, error) {
	if key == nil || *key == "" {
		return nil, nil
	}
	if len(*key) > MaxIdempotencyKeyLength {
		return nil, ErrInvalidIdempotencyKey
	}
	k := *key
	return &k, nil
}
