package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/persistence"
)

type balanceRow struct {
	current        int64
	lifetimeEarned int64
	lifetimeSpent  int64
	updatedAt      time.Time
}

// state is the full dataset. Rows are stored by value so a shallow map copy is a snapshot.
type state struct {
	seq         uint64
	users       map[uint64]entity.User
	balances    map[uint64]balanceRow
	streaks     map[uint64]entity.Streak
	events      []entity.EarnEvent
	items       map[uint64]entity.StoreItem
	inventory   map[uint64]entity.InventoryEntry
	redemptions map[uint64]entity.Redemption
	giveaways   map[uint64]entity.Giveaway
	entries     map[uint64]entity.GiveawayEntry
	flags       []entity.FraudFlag
	devices     map[string]entity.Device
}

func newState() *state {
	return &state{
		users:       make(map[uint64]entity.User),
		balances:    make(map[uint64]balanceRow),
		streaks:     make(map[uint64]entity.Streak),
		items:       make(map[uint64]entity.StoreItem),
		inventory:   make(map[uint64]entity.InventoryEntry),
		redemptions: make(map[uint64]entity.Redemption),
		giveaways:   make(map[uint64]entity.Giveaway),
		entries:     make(map[uint64]entity.GiveawayEntry),
		devices:     make(map[string]entity.Device),
	}
}

func (s *state) clone() *state {
	return &state{
		seq:         s.seq,
		users:       maps.Clone(s.users),
		balances:    maps.Clone(s.balances),
		streaks:     maps.Clone(s.streaks),
		events:      slices.Clone(s.events),
		items:       maps.Clone(s.items),
		inventory:   maps.Clone(s.inventory),
		redemptions: maps.Clone(s.redemptions),
		giveaways:   maps.Clone(s.giveaways),
		entries:     maps.Clone(s.entries),
		flags:       slices.Clone(s.flags),
		devices:     maps.Clone(s.devices),
	}
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

type contextKey string

const txKey contextKey = "memory-tx"

type tx struct {
	st   *state
	done bool
}

// Store is a transactional in-memory implementation of persistence.UnitOfWork.
// Writers are serialized: Begin takes the single writer slot and works on a copy
// of the committed state that Commit publishes and Rollback discards. Waiting for
// the slot is bounded by the context, like a row lock bounded by lock_timeout.
// Reads outside a transaction see the last committed state.
type Store struct {
	writer    chan struct{}
	mu        sync.RWMutex
	committed *state
	logger    coreport.Logger
}

// NewStore creates an empty store
func NewStore(logger coreport.Logger) *Store {
	return &Store{
		writer:    make(chan struct{}, 1),
		committed: newState(),
		logger:    logger,
	}
}

var _ persistence.UnitOfWork = (*Store)(nil)

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errs.ErrUserLocked
		}
		return ctx.Err()
	}
}

func (s *Store) release() {
	<-s.writer
}

func activeTx(ctx context.Context) *tx {
	t, ok := ctx.Value(txKey).(*tx)
	if !ok || t == nil || t.done {
		return nil
	}
	return t
}

// Begin starts a new transaction and returns a transactional context
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if err := s.acquire(ctx); err != nil {
		return ctx, err
	}
	s.mu.RLock()
	snapshot := s.committed.clone()
	s.mu.RUnlock()

	return context.WithValue(ctx, txKey, &tx{st: snapshot}), nil
}

// Commit publishes the transaction's state
func (s *Store) Commit(ctx context.Context) error {
	t := activeTx(ctx)
	if t == nil {
		return errors.New("no transaction found in context")
	}
	if err := ctx.Err(); err != nil {
		// mirrors a database aborting a transaction whose deadline passed
		t.done = true
		s.release()
		if errors.Is(err, context.DeadlineExceeded) {
			return errs.ErrUserLocked
		}
		return err
	}

	s.mu.Lock()
	s.committed = t.st
	s.mu.Unlock()

	t.done = true
	s.release()
	return nil
}

// Rollback discards the transaction's state; rolling back a finished transaction is a no-op
func (s *Store) Rollback(ctx context.Context) error {
	t, ok := ctx.Value(txKey).(*tx)
	if !ok || t == nil {
		return errors.New("no transaction found in context")
	}
	if t.done {
		return nil
	}
	t.done = true
	s.release()
	return nil
}

// InTransaction reports whether ctx carries an open transaction
func (s *Store) InTransaction(ctx context.Context) bool {
	return activeTx(ctx) != nil
}

// read runs fn against the transaction's state or the committed state
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if t := activeTx(ctx); t != nil {
		return fn(t.st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.committed)
}

// write runs fn against the transaction's state, or as its own single-statement transaction
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if t := activeTx(ctx); t != nil {
		return fn(t.st)
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.RLock()
	working := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(working); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = working
	s.mu.Unlock()
	return nil
}

func (s *Store) GetUserRepository(ctx context.Context) persistence.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	return &balanceRepository{store: s}
}

func (s *Store) GetStreakRepository(ctx context.Context) persistence.StreakRepository {
	return &streakRepository{store: s}
}

func (s *Store) GetEarnEventRepository(ctx context.Context) persistence.EarnEventRepository {
	return &earnEventRepository{store: s}
}

func (s *Store) GetCatalogRepository(ctx context.Context) persistence.CatalogRepository {
	return &catalogRepository{store: s}
}

func (s *Store) GetInventoryRepository(ctx context.Context) persistence.InventoryRepository {
	return &inventoryRepository{store: s}
}

func (s *Store) GetRedemptionRepository(ctx context.Context) persistence.RedemptionRepository {
	return &redemptionRepository{store: s}
}

func (s *Store) GetGiveawayRepository(ctx context.Context) persistence.GiveawayRepository {
	return &giveawayRepository{store: s}
}

func (s *Store) GetFraudFlagRepository(ctx context.Context) persistence.FraudFlagRepository {
	return &fraudFlagRepository{store: s}
}

func (s *Store) GetDeviceRepository(ctx context.Context) persistence.DeviceRepository {
	return &deviceRepository{store: s}
}
