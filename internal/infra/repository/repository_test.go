//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/sale"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBTX struct {
	mock.Mock
}

func (m *MockDBTX) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgconn.CommandTag), mockArgs.Error(1)
}

func (m *MockDBTX) Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Rows), mockArgs.Error(1)
}

func (m *MockDBTX) QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	mockArgs := m.Called(ctx, query, args)
	return mockArgs.Get(0).(pgx.Row)
}

func TestInventoryTransition(t *testing.T) {
	showingID := uuid.New()
	units := []uuid.UUID{uuid.New(), uuid.New()}

	tests := []struct {
		name     string
		tag      pgconn.CommandTag
		execErr  error
		wantErr  bool
		wantKind infra.RepositoryErrorKind
	}{
		{
			name: "every unit transitioned",
			tag:  pgconn.NewCommandTag("UPDATE 2"),
		},
		{
			name:     "one unit no longer in from status",
			tag:      pgconn.NewCommandTag("UPDATE 1"),
			wantErr:  true,
			wantKind: infra.KindConflict,
		},
		{
			name:     "database failure",
			tag:      pgconn.NewCommandTag(""),
			execErr:  &pgconn.PgError{Code: "08006"},
			wantErr:  true,
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(MockDBTX)
			db.On("Exec", mock.Anything, transitionUnitsSQL,
				[]interface{}{showingID, units, "AVAILABLE", "HELD"}).
				Return(tt.tag, tt.execErr)

			err := NewInventoryRepository(db).Transition(context.Background(), showingID, units, seat.StatusAvailable, seat.StatusHeld)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				assert.NoError(t, err)
			}
			db.AssertExpectations(t)
		})
	}

	t.Run("empty unit list is a no-op", func(t *testing.T) {
		db := new(MockDBTX)
		err := NewInventoryRepository(db).Transition(context.Background(), showingID, nil, seat.StatusHeld, seat.StatusSold)
		assert.NoError(t, err)
		db.AssertNotCalled(t, "Exec")
	})
}

func TestHoldTransition(t *testing.T) {
	id := uuid.New()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("confirm is guarded by the deadline", func(t *testing.T) {
		db := new(MockDBTX)
		db.On("Exec", mock.Anything, confirmHoldSQL, []interface{}{id, "PENDING", "CONFIRMED", now}).
			Return(pgconn.NewCommandTag("UPDATE 0"), nil)

		err := NewHoldRepository(db).Transition(context.Background(), id, hold.StatusPending, hold.StatusConfirmed, now)

		assert.True(t, infra.IsKind(err, infra.KindConflict))
		db.AssertExpectations(t)
	})

	t.Run("cancel ignores the deadline", func(t *testing.T) {
		db := new(MockDBTX)
		db.On("Exec", mock.Anything, transitionHoldSQL, []interface{}{id, "PENDING", "CANCELLED", now}).
			Return(pgconn.NewCommandTag("UPDATE 1"), nil)

		err := NewHoldRepository(db).Transition(context.Background(), id, hold.StatusPending, hold.StatusCancelled, now)

		assert.NoError(t, err)
		db.AssertExpectations(t)
	})
}

func TestHoldCreate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	units, err := hold.NewUnitSet([]uuid.UUID{uuid.New(), uuid.New()}, 10)
	require.NoError(t, err)
	key := "order-1"
	h, err := hold.NewHold(uuid.New(), uuid.New(), units, &key, now, 10*time.Minute)
	require.NoError(t, err)

	t.Run("writes hold and units", func(t *testing.T) {
		db := new(MockDBTX)
		db.On("Exec", mock.Anything, insertHoldSQL, mock.Anything).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)
		db.On("Exec", mock.Anything, insertHoldUnitsSQL, []interface{}{h.ID(), h.UnitIDs()}).
			Return(pgconn.NewCommandTag("INSERT 0 2"), nil)

		assert.NoError(t, NewHoldRepository(db).Create(context.Background(), h))
		db.AssertExpectations(t)
	})

	t.Run("duplicate idempotency key is classified", func(t *testing.T) {
		db := new(MockDBTX)
		db.On("Exec", mock.Anything, insertHoldSQL, mock.Anything).
			Return(pgconn.NewCommandTag(""), &pgconn.PgError{Code: "23505"})

		err := NewHoldRepository(db).Create(context.Background(), h)

		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
		db.AssertNotCalled(t, "Exec", mock.Anything, insertHoldUnitsSQL, mock.Anything)
	})
}

func TestSaleCreate(t *testing.T) {
	s, err := sale.NewSale(uuid.New(), uuid.New(), decimal.RequireFromString("12.50"), 2, time.Now())
	require.NoError(t, err)

	db := new(MockDBTX)
	db.On("Exec", mock.Anything, insertSaleSQL, mock.Anything).
		Return(pgconn.NewCommandTag(""), &pgconn.PgError{Code: "23505"})

	err = NewSaleRepository(db).Create(context.Background(), s)

	assert.True(t, infra.IsKind(err, infra.KindDuplicateKey))
}
