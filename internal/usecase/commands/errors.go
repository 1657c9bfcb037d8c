package commands

import (
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/pkg/errs"
)

var (
	ErrInvalidRequest   = errs.New("invalid reservation request")
	ErrUserNotFound     = errs.New("user not found")
	ErrShowingNotFound  = errs.New("showing not found")
	ErrUnitNotFound     = errs.New("unit does not belong to showing")
	ErrHoldNotFound     = errs.New("reservation not found")
	ErrUnitsLocked      = errs.New("units are being reserved by another request")
	ErrUnitsUnavailable = errs.New("units are not available")
	ErrHoldNotPending   = errs.New("reservation is no longer pending")
	ErrHoldExpired      = errs.New("reservation hold has expired")
	ErrInfrastructure   = errs.New("infrastructure failure")
)

// Kind is how a caller should react to a failed command.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindConflict
	KindNotFound
	KindInvalidState
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "infrastructure"
	}
}

// KindOf classifies err. Anything unrecognised is an infrastructure failure.
func KindOf(err error) Kind {
	switch {
	case errs.Is(err, ErrUnitsLocked), errs.Is(err, ErrUnitsUnavailable):
		return KindConflict
	case errs.Is(err, ErrUserNotFound),
		errs.Is(err, ErrShowingNotFound),
		errs.Is(err, ErrUnitNotFound),
		errs.Is(err, ErrHoldNotFound),
		infra.IsKind(err, infra.KindNotFound):
		return KindNotFound
	case errs.Is(err, ErrHoldNotPending), errs.Is(err, ErrHoldExpired), errs.Is(err, ErrInvalidRequest):
		return KindInvalidState
	default:
		return KindInfrastructure
	}
}

// HoldStateError carries the status a hold was in when a transition was refused.
type HoldStateError struct {
	Status hold.Status
}

func (e *HoldStateError) Error() string {
	return "reservation is " + string(e.Status)
}

func notPending(status hold.Status) error {
	return errs.Mark(&HoldStateError{Status: status}, ErrHoldNotPending)
}

// CurrentStatus extracts the hold status attached to an InvalidState error.
func CurrentStatus(err error) (hold.Status, bool) {
	var se *HoldStateError
	if errs.As(err, &se) {
		return se.Status, true
	}
	return "", false
}
