package api

import (
	"net/http"

	reqdto "cinema-reservation/internal/handler/dto/request"
	resdto "cinema-reservation/internal/handler/dto/response"
	"cinema-reservation/internal/handler/httperr"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/commands"
	"cinema-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type ReservationHandler struct {
	cmds  commands.ReservationCommands
	sales commands.SaleCommands
	holdQ queries.HoldQueries
	saleQ queries.SaleQueries
}

func NewReservationHandler(
	cmds commands.ReservationCommands,
	sales commands.SaleCommands,
	holdQ queries.HoldQueries,
	saleQ queries.SaleQueries,
) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, sales: sales, holdQ: holdQ, saleQ: saleQ}
}

// Create places a time-limited hold on the requested seats. Replaying an
// Idempotency-Key returns the original hold.
func (h *ReservationHandler) Create(c *gin.Context) {
	key := c.GetHeader(headerIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Idempotency-Key is too long", nil)
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateHold(c.Request.Context(), req.ToCommand(key))
	if err != nil {
		abortCommandError(c, err)
		return
	}

	view, err := h.holdQ.GetByID(c.Request.Context(), result.HoldID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load reservation", nil)
		return
	}

	if result.IsReplayed {
		c.Header(headerReplayed, "true")
	}
	c.Header("Location", "/api/reservations/"+result.HoldID.String())
	c.JSON(http.StatusCreated, resdto.FromHoldView(view))
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.holdQ.GetByID(c.Request.Context(), id)
	if err != nil {
		if errs.Is(err, queries.ErrHoldNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Reservation not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromHoldView(view))
}

// Cancel releases a pending hold's seats.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	if err := h.cmds.CancelHold(c.Request.Context(), id); err != nil {
		abortCommandError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Confirm records payment for a pending hold and sells its seats.
func (h *ReservationHandler) Confirm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	result, err := h.sales.ConfirmHold(c.Request.Context(), id)
	if err != nil {
		abortCommandError(c, err)
		return
	}

	view, err := h.saleQ.GetByID(c.Request.Context(), result.SaleID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to load sale", nil)
		return
	}

	c.Header("Location", "/api/sales/"+result.SaleID.String())
	c.JSON(http.StatusCreated, resdto.FromSaleView(view))
}
