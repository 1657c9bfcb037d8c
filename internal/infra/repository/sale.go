package repository

import (
	"context"

	"cinema-reservation/internal/domain/sale"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/pkg/pgconv"
)

const insertSaleSQL = `
INSERT INTO sales (id, hold_id, user_id, total_amount, confirmed_at)
VALUES ($1, $2, $3, $4, $5)`

type SaleRepository struct {
	db db.DBTX
}

func NewSaleRepository(db db.DBTX) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	_, err := r.db.Exec(ctx, insertSaleSQL,
		s.ID(),
		s.HoldID(),
		s.UserID(),
		pgconv.DecimalToNumeric(s.TotalAmount()),
		s.ConfirmedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create sale", err)
	}
	return nil
}
