package api

import (
	"net/http"

	reqdto "cinema-reservation/internal/handler/dto/request"
	resdto "cinema-reservation/internal/handler/dto/response"
	"cinema-reservation/internal/handler/httperr"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	q queries.SaleQueries
}

func NewSaleHandler(q queries.SaleQueries) *SaleHandler {
	return &SaleHandler{q: q}
}

func (h *SaleHandler) List(c *gin.Context) {
	var req reqdto.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}

	items, next, err := h.q.List(c.Request.Context(), req.UserFilter(), req.Cursor(), req.Limit)
	if err != nil {
		if errs.Is(err, queries.ErrInvalidCursor) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid cursor", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSaleList(items, next))
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		if errs.Is(err, queries.ErrSaleNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Sale not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSaleView(view))
}
