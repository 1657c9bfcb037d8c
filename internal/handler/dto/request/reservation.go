package request

import (
	"strings"

	"cinema-reservation/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	UserID    uuid.UUID   `json:"userId" binding:"required"`
	ShowingID uuid.UUID   `json:"showingId" binding:"required"`
	UnitIDs   []uuid.UUID `json:"unitIds" binding:"required,min=1,dive,required"`
}

// ToCommand attaches the Idempotency-Key header value; a blank header means none.
func (r CreateReservationRequest) ToCommand(idempotencyKey string) commands.CreateHoldRequest {
	cmd := commands.CreateHoldRequest{
		UserID:    r.UserID,
		ShowingID: r.ShowingID,
		UnitIDs:   r.UnitIDs,
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		cmd.IdempotencyKey = &key
	}
	return cmd
}
