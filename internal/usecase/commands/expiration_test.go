//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/pkg/errs"
	"cinema-reservation/internal/usecase/commands"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) expiration() commands.ExpirationCommands {
	return commands.NewExpirationUseCase(f.uow, f.publisher, f.clock, f.cfg, nil, nil)
}

func TestExpireDue(t *testing.T) {
	ctx := context.Background()

	t.Run("returns units of expired holds only", func(t *testing.T) {
		f := newFixture(t)
		oldHold, oldUnits := f.holdUnits(t, "A1")
		f.clock.Add(f.cfg.HoldTTL / 2)
		freshHold, freshUnits := f.holdUnits(t, "B1")
		f.clock.Add(f.cfg.HoldTTL/2 + time.Second)

		report, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)

		if diff := cmp.Diff(commands.ExpireReport{Found: 1, Expired: 1}, report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, hold.StatusExpired, f.store.hold(oldHold).status)
		assert.Equal(t, seat.StatusAvailable, f.store.unit(oldUnits["A1"]).status)
		assert.Equal(t, hold.StatusPending, f.store.hold(freshHold).status)
		assert.Equal(t, seat.StatusHeld, f.store.unit(freshUnits["B1"]).status)

		types := f.publisher.types()
		assert.Equal(t, []event.Type{event.TypeReservationExpired, event.TypeSeatsReleased}, types[len(types)-2:])
	})

	t.Run("hold at its exact deadline waits for the next sweep", func(t *testing.T) {
		f := newFixture(t)
		holdID, _ := f.holdUnits(t, "A1")
		f.clock.Add(f.cfg.HoldTTL)

		report, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)

		assert.Zero(t, report.Found)
		assert.Equal(t, hold.StatusPending, f.store.hold(holdID).status)
	})

	t.Run("one failing hold does not stop the sweep", func(t *testing.T) {
		f := newFixture(t)
		brokenHold, _ := f.holdUnits(t, "A1")
		okHold, okUnits := f.holdUnits(t, "B1")
		f.store.failInventory[f.store.hold(brokenHold).showingID] = errs.New("connection reset")
		f.clock.Add(f.cfg.HoldTTL + time.Second)

		report, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)

		if diff := cmp.Diff(commands.ExpireReport{Found: 2, Expired: 1, Failed: 1}, report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, hold.StatusPending, f.store.hold(brokenHold).status)
		assert.Equal(t, hold.StatusExpired, f.store.hold(okHold).status)
		assert.Equal(t, seat.StatusAvailable, f.store.unit(okUnits["B1"]).status)
	})

	t.Run("pending hold with units out of held state is a failure", func(t *testing.T) {
		f := newFixture(t)
		holdID, units := f.holdUnits(t, "A1")
		row := f.store.unit(units["A1"])
		row.status = seat.StatusAvailable
		f.store.units[units["A1"]] = row
		f.clock.Add(f.cfg.HoldTTL + time.Second)

		report, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)

		if diff := cmp.Diff(commands.ExpireReport{Found: 1, Failed: 1}, report); diff != "" {
			t.Errorf("report mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, hold.StatusPending, f.store.hold(holdID).status)
	})

	t.Run("confirmed holds are never expired", func(t *testing.T) {
		f := newFixture(t)
		holdID, units := f.holdUnits(t, "A1")
		_, err := f.sales().ConfirmHold(ctx, holdID)
		require.NoError(t, err)
		f.clock.Add(f.cfg.HoldTTL + time.Second)

		report, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)

		assert.Zero(t, report.Found)
		assert.Equal(t, seat.StatusSold, f.store.unit(units["A1"]).status)
	})

	t.Run("expired then confirm stays refused", func(t *testing.T) {
		f := newFixture(t)
		holdID, units := f.holdUnits(t, "A1")
		f.clock.Add(f.cfg.HoldTTL + time.Second)

		_, err := f.expiration().ExpireDue(ctx)
		require.NoError(t, err)
		_, err = f.sales().ConfirmHold(ctx, holdID)

		assert.True(t, errs.Is(err, commands.ErrHoldNotPending))
		assert.Equal(t, seat.StatusAvailable, f.store.unit(units["A1"]).status)
	})
}
