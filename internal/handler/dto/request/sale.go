package request

import (
	"cinema-reservation/internal/usecase/queries"

	"github.com/google/uuid"
)

type ListSalesRequest struct {
	UserID string `form:"userId" binding:"omitempty,uuid"`
	After  string `form:"after"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (r ListSalesRequest) UserFilter() *uuid.UUID {
	if r.UserID == "" {
		return nil
	}
	id, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil
	}
	return &id
}

func (r ListSalesRequest) Cursor() *queries.Cursor {
	if r.After == "" {
		return nil
	}
	return &queries.Cursor{After: r.After}
}
