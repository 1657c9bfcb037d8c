package readstore

import (
	"context"

	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"

	"github.com/google/uuid"
)

const userExistsSQL = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (r *UserReadStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, userExistsSQL, id).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check user", err)
	}
	return exists, nil
}
