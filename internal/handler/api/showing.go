package api

import (
	"net/http"

	resdto "cinema-reservation/internal/handler/dto/response"
	"cinema-reservation/internal/handler/httperr"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShowingHandler struct {
	q queries.ShowingQueries
}

func NewShowingHandler(q queries.ShowingQueries) *ShowingHandler {
	return &ShowingHandler{q: q}
}

// Seats lists every seat of the showing with its live status.
func (h *ShowingHandler) Seats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.q.GetSeats(c.Request.Context(), id)
	if err != nil {
		if errs.Is(err, queries.ErrShowingNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Showing not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromShowingSeatsView(view))
}
