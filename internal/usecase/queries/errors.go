package queries

import "errors"

var (
	ErrHoldNotFound    = errors.New("reservation not found")
	ErrSaleNotFound    = errors.New("sale not found")
	ErrShowingNotFound = errors.New("showing not found")
	ErrInvalidCursor   = errors.New("invalid cursor")
)
