package seat

import "strconv"

// Status is the lifecycle of one seat for one showing.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHeld      Status = "HELD"
	StatusSold      Status = "SOLD"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold:
		return true
	default:
		return false
	}
}

// Label renders the human-readable seat name, e.g. "A1".
func Label(rowLabel string, seatNumber int) string {
	return rowLabel + strconv.Itoa(seatNumber)
}
