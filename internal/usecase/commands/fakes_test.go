//go:build unit

package commands_test

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/domain/event"
	"cinema-reservation/internal/domain/hold"
	"cinema-reservation/internal/domain/sale"
	"cinema-reservation/internal/domain/seat"
	"cinema-reservation/internal/infra"
	"cinema-reservation/internal/infra/db"
	"cinema-reservation/internal/infra/lock"
	"cinema-reservation/internal/pkg/clock"
	"cinema-reservation/internal/pkg/config"
	"cinema-reservation/internal/usecase/shared"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type unitRow struct {
	showingID uuid.UUID
	label     string
	status    seat.Status
	version   int64
}

type holdRow struct {
	id        uuid.UUID
	userID    uuid.UUID
	showingID uuid.UUID
	units     []uuid.UUID
	status    hold.Status
	expiresAt time.Time
	key       *string
	createdAt time.Time
	updatedAt time.Time
}

func (r holdRow) entity() *hold.Hold {
	return hold.ReconstructHold(r.id, r.userID, r.showingID, r.units, r.status, r.expiresAt, r.key, r.createdAt, r.updatedAt)
}

// memStore is a single-writer stand-in for Postgres: Within serialises
// transactions and restores a snapshot when fn fails.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]bool
	showings map[uuid.UUID]shared.ShowingSnapshot
	units    map[uuid.UUID]unitRow
	holds    map[uuid.UUID]holdRow
	keys     map[string]uuid.UUID
	sales    map[uuid.UUID]*sale.Sale

	// failInventory makes Inventory().Transition fail for these showings.
	failInventory map[uuid.UUID]error
	failSale      error
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[uuid.UUID]bool{},
		showings:      map[uuid.UUID]shared.ShowingSnapshot{},
		units:         map[uuid.UUID]unitRow{},
		holds:         map[uuid.UUID]holdRow{},
		keys:          map[string]uuid.UUID{},
		sales:         map[uuid.UUID]*sale.Sale{},
		failInventory: map[uuid.UUID]error{},
	}
}

func (s *memStore) addUser() uuid.UUID {
	id := uuid.New()
	s.users[id] = true
	return id
}

// addShowing creates a showing with one unit per label, all AVAILABLE.
func (s *memStore) addShowing(price string, labels ...string) (uuid.UUID, map[string]uuid.UUID) {
	id := uuid.New()
	s.showings[id] = shared.ShowingSnapshot{
		ID:          id,
		RoomID:      uuid.New(),
		StartsAt:    time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
		TicketPrice: decimal.RequireFromString(price),
	}
	byLabel := make(map[string]uuid.UUID, len(labels))
	for _, l := range labels {
		unitID := uuid.New()
		s.units[unitID] = unitRow{showingID: id, label: l, status: seat.StatusAvailable}
		byLabel[l] = unitID
	}
	return id, byLabel
}

func (s *memStore) unit(id uuid.UUID) unitRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.units[id]
}

func (s *memStore) hold(id uuid.UUID) holdRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holds[id]
}

func (s *memStore) holdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}

func (s *memStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

type snapshot struct {
	units map[uuid.UUID]unitRow
	holds map[uuid.UUID]holdRow
	keys  map[string]uuid.UUID
	sales map[uuid.UUID]*sale.Sale
}

func (s *memStore) snapshot() snapshot {
	return snapshot{
		units: maps.Clone(s.units),
		holds: maps.Clone(s.holds),
		keys:  maps.Clone(s.keys),
		sales: maps.Clone(s.sales),
	}
}

func (s *memStore) restore(snap snapshot) {
	s.units = snap.units
	s.holds = snap.holds
	s.keys = snap.keys
	s.sales = snap.sales
}

type memUoW struct {
	store *memStore
}

func (u *memUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()
	if err := fn(ctx, &memTx{store: u.store}); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

func (u *memUoW) CommandReads() shared.CommandReads {
	return &memReads{store: u.store, locking: true}
}

type memTx struct {
	store *memStore
}

func (t *memTx) Inventory() shared.InventoryRepository { return &memInventory{store: t.store} }
func (t *memTx) Holds() shared.HoldRepository          { return &memHolds{store: t.store} }
func (t *memTx) Sales() shared.SaleRepository          { return &memSales{store: t.store} }
func (t *memTx) Reads() shared.CommandReads            { return &memReads{store: t.store} }
func (t *memTx) DB() db.DBTX                           { return nil }

type memInventory struct {
	store *memStore
}

func (r *memInventory) Transition(_ context.Context, showingID uuid.UUID, unitIDs []uuid.UUID, from, to seat.Status) error {
	if err := r.store.failInventory[showingID]; err != nil {
		return err
	}
	matched := 0
	for _, id := range unitIDs {
		u, ok := r.store.units[id]
		if ok && u.showingID == showingID && u.status == from {
			u.status = to
			u.version++
			r.store.units[id] = u
			matched++
		}
	}
	if matched != len(unitIDs) {
		return infra.WrapRepoErr("units changed concurrently", nil, infra.KindConflict)
	}
	return nil
}

type memHolds struct {
	store *memStore
}

func (r *memHolds) Create(_ context.Context, h *hold.Hold) error {
	if k := h.IdempotencyKey(); k != nil {
		if _, dup := r.store.keys[*k]; dup {
			return infra.WrapRepoErr("duplicate idempotency key", nil, infra.KindDuplicateKey)
		}
		r.store.keys[*k] = h.ID()
	}
	r.store.holds[h.ID()] = holdRow{
		id:        h.ID(),
		userID:    h.UserID(),
		showingID: h.ShowingID(),
		units:     h.UnitIDs(),
		status:    h.Status(),
		expiresAt: h.ExpiresAt(),
		key:       h.IdempotencyKey(),
		createdAt: h.CreatedAt(),
		updatedAt: h.UpdatedAt(),
	}
	return nil
}

func (r *memHolds) Transition(_ context.Context, id uuid.UUID, from, to hold.Status, now time.Time) error {
	row, ok := r.store.holds[id]
	if !ok || row.status != from || (to == hold.StatusConfirmed && !row.expiresAt.After(now)) {
		return infra.WrapRepoErr("hold changed concurrently", nil, infra.KindConflict)
	}
	row.status = to
	row.updatedAt = now
	r.store.holds[id] = row
	return nil
}

type memSales struct {
	store *memStore
}

func (r *memSales) Create(_ context.Context, s *sale.Sale) error {
	if r.store.failSale != nil {
		return r.store.failSale
	}
	r.store.sales[s.ID()] = s
	return nil
}

type memReads struct {
	store   *memStore
	locking bool
}

func (r *memReads) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *memReads) HoldByID(_ context.Context, id uuid.UUID) (*hold.Hold, error) {
	defer r.lock()()
	row, ok := r.store.holds[id]
	if !ok {
		return nil, infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
	}
	return row.entity(), nil
}

func (r *memReads) HoldByIdempotencyKey(_ context.Context, key string) (*hold.Hold, error) {
	defer r.lock()()
	id, ok := r.store.keys[key]
	if !ok {
		return nil, infra.WrapRepoErr("hold not found", nil, infra.KindNotFound)
	}
	return r.store.holds[id].entity(), nil
}

func (r *memReads) ExpiredHolds(_ context.Context, now time.Time, limit int) ([]*hold.Hold, error) {
	defer r.lock()()
	rows := slices.Collect(maps.Values(r.store.holds))
	slices.SortFunc(rows, func(a, b holdRow) int { return a.expiresAt.Compare(b.expiresAt) })

	var out []*hold.Hold
	for _, row := range rows {
		if row.status == hold.StatusPending && row.expiresAt.Before(now) && len(out) < limit {
			out = append(out, row.entity())
		}
	}
	return out, nil
}

func (r *memReads) ShowingByID(_ context.Context, id uuid.UUID) (*shared.ShowingSnapshot, error) {
	defer r.lock()()
	s, ok := r.store.showings[id]
	if !ok {
		return nil, infra.WrapRepoErr("showing not found", nil, infra.KindNotFound)
	}
	return &s, nil
}

func (r *memReads) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	defer r.lock()()
	return r.store.users[id], nil
}

func (r *memReads) UnitsOfShowing(_ context.Context, showingID uuid.UUID, unitIDs []uuid.UUID) ([]shared.UnitSnapshot, error) {
	defer r.lock()()
	var out []shared.UnitSnapshot
	for _, id := range unitIDs {
		if u, ok := r.store.units[id]; ok && u.showingID == showingID {
			out = append(out, shared.UnitSnapshot{ID: id, ShowingID: showingID, Status: u.status, Version: u.version})
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event

	// onPublish runs before the event is recorded.
	onPublish func(event.Event)
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) {
	if p.onPublish != nil {
		p.onPublish(e)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *memStore
	uow       *memUoW
	redis     *miniredis.Miniredis
	locker    *lock.RedisLockManager
	publisher *recordingPublisher
	clock     *clock.MockClock
	cfg       config.ReservationConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemStore()
	return &fixture{
		store:     store,
		uow:       &memUoW{store: store},
		redis:     mr,
		locker:    lock.NewRedisLockManager(client, nil, nil),
		publisher: &recordingPublisher{},
		clock:     clock.NewMockClock(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)),
		cfg:       config.NewTestConfig().Reservation,
	}
}
