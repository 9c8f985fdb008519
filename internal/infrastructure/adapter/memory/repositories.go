package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

type userRepository struct{ store *Store }

func (r *userRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var out *entity.User
	err := r.store.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return errs.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; ok {
			return errs.ErrDuplicateUser
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.users[user.ID]; !ok {
			return errs.ErrUserNotFound
		}
		st.users[user.ID] = *user
		return nil
	})
}

type balanceRepository struct{ store *Store }

func (r *balanceRepository) Create(ctx context.Context, balance *entity.Balance) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.balances[balance.UserID]; ok {
			return errs.ErrDuplicateUser
		}
		st.balances[balance.UserID] = toBalanceRow(balance)
		return nil
	})
}

func (r *balanceRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Balance, error) {
	var out *entity.Balance
	err := r.store.read(ctx, func(st *state) error {
		row, ok := st.balances[userID]
		if !ok {
			return errs.ErrUserNotFound
		}
		b, err := entity.RestoreBalance(userID, row.current, row.lifetimeEarned, row.lifetimeSpent, row.updatedAt)
		out = b
		return err
	})
	return out, err
}

// GetForUpdate needs no extra locking: a transaction already owns the writer slot
func (r *balanceRepository) GetForUpdate(ctx context.Context, userID uint64) (*entity.Balance, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *balanceRepository) Save(ctx context.Context, balance *entity.Balance) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.balances[balance.UserID]; !ok {
			return errs.ErrUserNotFound
		}
		row := toBalanceRow(balance)
		// same guards as the database check constraints
		if row.current < 0 || row.current != row.lifetimeEarned-row.lifetimeSpent {
			return errs.ErrConstraintViolation
		}
		st.balances[balance.UserID] = row
		return nil
	})
}

func toBalanceRow(b *entity.Balance) balanceRow {
	return balanceRow{
		current:        b.Current(),
		lifetimeEarned: b.LifetimeEarned(),
		lifetimeSpent:  b.LifetimeSpent(),
		updatedAt:      b.UpdatedAt,
	}
}

type streakRepository struct{ store *Store }

func (r *streakRepository) Create(ctx context.Context, streak *entity.Streak) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.streaks[streak.UserID]; ok {
			return errs.ErrDuplicateUser
		}
		st.streaks[streak.UserID] = *streak
		return nil
	})
}

func (r *streakRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Streak, error) {
	var out *entity.Streak
	err := r.store.read(ctx, func(st *state) error {
		s, ok := st.streaks[userID]
		if !ok {
			return errs.ErrUserNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *streakRepository) GetForUpdate(ctx context.Context, userID uint64) (*entity.Streak, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *streakRepository) Save(ctx context.Context, streak *entity.Streak) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.streaks[streak.UserID]; !ok {
			return errs.ErrUserNotFound
		}
		st.streaks[streak.UserID] = *streak
		return nil
	})
}

type earnEventRepository struct{ store *Store }

func (r *earnEventRepository) Create(ctx context.Context, event *entity.EarnEvent) error {
	return r.store.write(ctx, func(st *state) error {
		for i := range st.events {
			e := &st.events[i]
			if e.UserID != event.UserID {
				continue
			}
			if event.IdempotencyToken != "" && e.IdempotencyToken == event.IdempotencyToken {
				return errs.NewDuplicateSubmissionError(event.UserID, event.IdempotencyToken)
			}
			if event.Type == entity.EarnTypeLesson && e.Type == entity.EarnTypeLesson &&
				event.ReferenceID != "" && e.ReferenceID == event.ReferenceID {
				return errs.ErrAlreadyCompleted
			}
		}
		event.ID = st.nextID()
		st.events = append(st.events, *event)
		return nil
	})
}

func (r *earnEventRepository) ExistsByToken(ctx context.Context, userID uint64, token string) (bool, error) {
	found := false
	err := r.store.read(ctx, func(st *state) error {
		found = slices.ContainsFunc(st.events, func(e entity.EarnEvent) bool {
			return e.UserID == userID && e.IdempotencyToken == token
		})
		return nil
	})
	return found, err
}

func (r *earnEventRepository) ExistsByReference(ctx context.Context, userID uint64, eventType entity.EarnType, referenceID string) (bool, error) {
	found := false
	err := r.store.read(ctx, func(st *state) error {
		found = slices.ContainsFunc(st.events, func(e entity.EarnEvent) bool {
			return e.UserID == userID && e.Type == eventType && e.ReferenceID == referenceID
		})
		return nil
	})
	return found, err
}

func (r *earnEventRepository) SummarizeRange(ctx context.Context, userID uint64, from, to time.Time) (entity.DailyEarnings, error) {
	var sum entity.DailyEarnings
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.events {
			if e.UserID != userID || e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
				continue
			}
			sum.Add(e.Type, e.Amount)
		}
		return nil
	})
	return sum, err
}

func (r *earnEventRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.EarnEvent, error) {
	var out []*entity.EarnEvent
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.events {
			e := e
			if e.UserID == userID {
				out = append(out, &e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.EarnEvent) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type catalogRepository struct{ store *Store }

func (r *catalogRepository) GetByID(ctx context.Context, id uint64) (*entity.StoreItem, error) {
	var out *entity.StoreItem
	err := r.store.read(ctx, func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return errs.ErrItemNotFound
		}
		out = &item
		return nil
	})
	return out, err
}

func (r *catalogRepository) ListActive(ctx context.Context) ([]*entity.StoreItem, error) {
	var out []*entity.StoreItem
	err := r.store.read(ctx, func(st *state) error {
		for _, item := range st.items {
			item := item
			if item.Active {
				out = append(out, &item)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.StoreItem) int {
		if c := cmp.Compare(a.CreditsCost, b.CreditsCost); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, err
}

func (r *catalogRepository) Create(ctx context.Context, item *entity.StoreItem) error {
	return r.store.write(ctx, func(st *state) error {
		for _, existing := range st.items {
			if existing.Code == item.Code {
				return errs.ErrConstraintViolation
			}
		}
		if item.ID == 0 {
			item.ID = st.nextID()
		} else if _, ok := st.items[item.ID]; ok {
			return errs.ErrConstraintViolation
		}
		st.items[item.ID] = *item
		return nil
	})
}

type inventoryRepository struct{ store *Store }

func (r *inventoryRepository) GetForUpdate(ctx context.Context, userID, itemID uint64) (*entity.InventoryEntry, error) {
	var out *entity.InventoryEntry
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.inventory {
			e := e
			if e.UserID == userID && e.ItemID == itemID {
				out = &e
				return nil
			}
		}
		return errs.ErrNotFound
	})
	return out, err
}

func (r *inventoryRepository) Save(ctx context.Context, entry *entity.InventoryEntry) error {
	return r.store.write(ctx, func(st *state) error {
		if entry.ID == 0 {
			for _, e := range st.inventory {
				if e.UserID == entry.UserID && e.ItemID == entry.ItemID {
					return errs.ErrConstraintViolation
				}
			}
			entry.ID = st.nextID()
		}
		st.inventory[entry.ID] = *entry
		return nil
	})
}

func (r *inventoryRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.InventoryEntry, error) {
	var out []*entity.InventoryEntry
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.inventory {
			e := e
			if e.UserID == userID {
				out = append(out, &e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.InventoryEntry) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

type redemptionRepository struct{ store *Store }

func (r *redemptionRepository) Create(ctx context.Context, redemption *entity.Redemption) error {
	return r.store.write(ctx, func(st *state) error {
		redemption.ID = st.nextID()
		st.redemptions[redemption.ID] = *redemption
		return nil
	})
}

func (r *redemptionRepository) CountByUserAndItem(ctx context.Context, userID, itemID uint64) (int64, error) {
	var n int64
	err := r.store.read(ctx, func(st *state) error {
		for _, red := range st.redemptions {
			if red.UserID == userID && red.ItemID == itemID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *redemptionRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Redemption, error) {
	var out []*entity.Redemption
	err := r.store.read(ctx, func(st *state) error {
		for _, red := range st.redemptions {
			red := red
			if red.UserID == userID {
				out = append(out, &red)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.Redemption) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *redemptionRepository) GetForUpdate(ctx context.Context, id uint64) (*entity.Redemption, error) {
	var out *entity.Redemption
	err := r.store.read(ctx, func(st *state) error {
		red, ok := st.redemptions[id]
		if !ok {
			return errs.ErrRedemptionNotFound
		}
		out = &red
		return nil
	})
	return out, err
}

func (r *redemptionRepository) Update(ctx context.Context, redemption *entity.Redemption) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.redemptions[redemption.ID]; !ok {
			return errs.ErrRedemptionNotFound
		}
		st.redemptions[redemption.ID] = *redemption
		return nil
	})
}

type giveawayRepository struct{ store *Store }

func (r *giveawayRepository) GetByID(ctx context.Context, id uint64) (*entity.Giveaway, error) {
	var out *entity.Giveaway
	err := r.store.read(ctx, func(st *state) error {
		g, ok := st.giveaways[id]
		if !ok {
			return errs.ErrGiveawayNotFound
		}
		out = &g
		return nil
	})
	return out, err
}

func (r *giveawayRepository) Create(ctx context.Context, giveaway *entity.Giveaway) error {
	return r.store.write(ctx, func(st *state) error {
		if giveaway.ID == 0 {
			giveaway.ID = st.nextID()
		} else if _, ok := st.giveaways[giveaway.ID]; ok {
			return errs.ErrConstraintViolation
		}
		st.giveaways[giveaway.ID] = *giveaway
		return nil
	})
}

func (r *giveawayRepository) GetEntryForUpdate(ctx context.Context, userID, giveawayID uint64, entryType entity.EntryType) (*entity.GiveawayEntry, error) {
	var out *entity.GiveawayEntry
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			e := e
			if e.UserID == userID && e.GiveawayID == giveawayID && e.EntryType == entryType {
				out = &e
				return nil
			}
		}
		return errs.ErrNotFound
	})
	return out, err
}

func (r *giveawayRepository) SaveEntry(ctx context.Context, entry *entity.GiveawayEntry) error {
	return r.store.write(ctx, func(st *state) error {
		if entry.ID == 0 {
			for _, e := range st.entries {
				if e.UserID == entry.UserID && e.GiveawayID == entry.GiveawayID && e.EntryType == entry.EntryType {
					return errs.ErrAlreadyClaimed
				}
			}
			entry.ID = st.nextID()
		}
		st.entries[entry.ID] = *entry
		return nil
	})
}

func (r *giveawayRepository) ListEntries(ctx context.Context, userID, giveawayID uint64) ([]*entity.GiveawayEntry, error) {
	var out []*entity.GiveawayEntry
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.entries {
			e := e
			if e.UserID == userID && e.GiveawayID == giveawayID {
				out = append(out, &e)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *entity.GiveawayEntry) int { return cmp.Compare(a.ID, b.ID) })
	return out, err
}

type fraudFlagRepository struct{ store *Store }

func (r *fraudFlagRepository) Create(ctx context.Context, flag *entity.FraudFlag) error {
	return r.store.write(ctx, func(st *state) error {
		flag.ID = st.nextID()
		st.flags = append(st.flags, *flag)
		return nil
	})
}

func (r *fraudFlagRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.FraudFlag, error) {
	var out []*entity.FraudFlag
	err := r.store.read(ctx, func(st *state) error {
		for _, f := range st.flags {
			f := f
			if f.UserID == userID {
				out = append(out, &f)
			}
		}
		return nil
	})
	return out, err
}

type deviceRepository struct{ store *Store }

func (r *deviceRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Device, error) {
	var out *entity.Device
	err := r.store.read(ctx, func(st *state) error {
		d, ok := st.devices[fingerprint]
		if !ok {
			return errs.ErrNotFound
		}
		out = &d
		return nil
	})
	return out, err
}

func (r *deviceRepository) Save(ctx context.Context, device *entity.Device) error {
	return r.store.write(ctx, func(st *state) error {
		if stored, ok := st.devices[device.Fingerprint]; ok {
			device.Blocked = stored.Blocked
			device.RiskScore = max(device.RiskScore, stored.RiskScore)
			device.UserID = stored.UserID
			device.FirstSeenAt = stored.FirstSeenAt
		}
		st.devices[device.Fingerprint] = *device
		return nil
	})
}
