package api

import (
	"net/http"
	"strings"

	"cinema-reservation/internal/handler/httperr"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type stateDetail struct {
	Status string `json:"status"`
}

// abortCommandError maps a command failure onto its HTTP status. Refused
// transitions report the hold's current status in detail.
func abortCommandError(c *gin.Context, err error) {
	switch commands.KindOf(err) {
	case commands.KindConflict:
		httperr.AbortWithError(c, http.StatusConflict, err, conflictMessage(err), nil)
	case commands.KindNotFound:
		var detail any
		if d := errs.Details(err); len(d) > 0 {
			detail = strings.Join(d, "; ")
		}
		httperr.AbortWithError(c, http.StatusNotFound, err, notFoundMessage(err), detail)
	case commands.KindInvalidState:
		var detail any
		if status, ok := commands.CurrentStatus(err); ok {
			detail = stateDetail{Status: string(status)}
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, invalidStateMessage(err), detail)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
	}
}

func conflictMessage(err error) string {
	if errs.Is(err, commands.ErrUnitsLocked) {
		return "Seats are being reserved by another request"
	}
	return "Seats are not available"
}

func notFoundMessage(err error) string {
	switch {
	case errs.Is(err, commands.ErrUserNotFound):
		return "User not found"
	case errs.Is(err, commands.ErrShowingNotFound):
		return "Showing not found"
	case errs.Is(err, commands.ErrUnitNotFound):
		return "Seat not found for showing"
	default:
		return "Reservation not found"
	}
}

func invalidStateMessage(err error) string {
	switch {
	case errs.Is(err, commands.ErrHoldExpired):
		return "Reservation has expired"
	case errs.Is(err, commands.ErrInvalidRequest):
		return "Invalid request"
	default:
		return "Reservation is not pending"
	}
}
