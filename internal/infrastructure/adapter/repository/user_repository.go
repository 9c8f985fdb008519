package repository

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// UserRepository implements persistence.UserRepository using GORM
type UserRepository struct {
	base
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, logger coreport.Logger) *UserRepository {
	return &UserRepository{base: newBase(db, logger)}
}

func userToEntity(m *model.User) *entity.User {
	return &entity.User{
		ID:        m.ID,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
		Banned:    m.Banned,
		BanReason: m.BanReason,
	}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.User
	if err := r.db.WithContext(ctx).First(&userModel, id).Error; err != nil {
		return nil, r.handleDatabaseError("getting user", err, errs.ErrUserNotFound, map[string]any{"user_id": id})
	}
	return userToEntity(&userModel), nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := model.User{
		ID:        user.ID,
		Email:     user.Email,
		Banned:    user.Banned,
		BanReason: user.BanReason,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(&userModel).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateUser
		}
		return r.handleDatabaseError("creating user", err, errs.ErrUserNotFound, map[string]any{"user_id": user.ID})
	}

	r.logger.Debug("User row created", map[string]any{"user_id": user.ID})
	return nil
}

// Update updates the mutable user columns
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":      user.Email,
			"banned":     user.Banned,
			"ban_reason": user.BanReason,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating user", result.Error, errs.ErrUserNotFound, map[string]any{"user_id": user.ID})
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

// BalanceRepository implements persistence.BalanceRepository using GORM
type BalanceRepository struct {
	base
}

// NewBalanceRepository creates a new BalanceRepository instance
func NewBalanceRepository(db *gorm.DB, logger coreport.Logger) *BalanceRepository {
	return &BalanceRepository{base: newBase(db, logger)}
}

func (r *BalanceRepository) toEntity(m *model.Balance) (*entity.Balance, error) {
	balance, err := entity.RestoreBalance(m.UserID, m.CurrentBalance, m.LifetimeEarned, m.LifetimeSpent, m.UpdatedAt.UTC())
	if err != nil {
		r.logger.Error("Corrupt balance row", map[string]any{
			"user_id": m.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return balance, nil
}

// Create inserts the balance row for a new user
func (r *BalanceRepository) Create(ctx context.Context, balance *entity.Balance) error {
	balanceModel := model.Balance{
		UserID:         balance.UserID,
		CurrentBalance: balance.Current(),
		LifetimeEarned: balance.LifetimeEarned(),
		LifetimeSpent:  balance.LifetimeSpent(),
		UpdatedAt:      balance.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(&balanceModel).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateUser
		}
		return r.handleDatabaseError("creating balance", err, errs.ErrUserNotFound, map[string]any{"user_id": balance.UserID})
	}
	return nil
}

// GetByUserID reads the balance without locking
func (r *BalanceRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Balance, error) {
	return r.get(r.db.WithContext(ctx), userID)
}

// GetForUpdate reads the balance and holds its row lock until the transaction ends
func (r *BalanceRepository) GetForUpdate(ctx context.Context, userID uint64) (*entity.Balance, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), userID)
}

func (r *BalanceRepository) get(db *gorm.DB, userID uint64) (*entity.Balance, error) {
	var balanceModel model.Balance
	if err := db.Where("user_id = ?", userID).First(&balanceModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting balance", err, errs.ErrUserNotFound, map[string]any{"user_id": userID})
	}
	return r.toEntity(&balanceModel)
}

// Save writes the balance columns
func (r *BalanceRepository) Save(ctx context.Context, balance *entity.Balance) error {
	result := r.db.WithContext(ctx).Model(&model.Balance{}).
		Where("user_id = ?", balance.UserID).
		Updates(map[string]any{
			"current_balance": balance.Current(),
			"lifetime_earned": balance.LifetimeEarned(),
			"lifetime_spent":  balance.LifetimeSpent(),
			"updated_at":      balance.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("saving balance", result.Error, errs.ErrUserNotFound, map[string]any{
			"user_id": balance.UserID,
			"current": balance.Current(),
		})
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

// StreakRepository implements persistence.StreakRepository using GORM
type StreakRepository struct {
	base
}

// NewStreakRepository creates a new StreakRepository instance
func NewStreakRepository(db *gorm.DB, logger coreport.Logger) *StreakRepository {
	return &StreakRepository{base: newBase(db, logger)}
}

func streakToEntity(m *model.Streak) *entity.Streak {
	s := &entity.Streak{
		UserID:           m.UserID,
		CurrentStreak:    m.CurrentStreak,
		LongestStreak:    m.LongestStreak,
		StreakSaverCount: m.StreakSaverCount,
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
	if m.LastCheckinDate != nil {
		day := entity.UTCDay(*m.LastCheckinDate)
		s.LastCheckinDate = &day
	}
	return s
}

func streakToModel(s *entity.Streak) model.Streak {
	return model.Streak{
		UserID:           s.UserID,
		CurrentStreak:    s.CurrentStreak,
		LongestStreak:    s.LongestStreak,
		LastCheckinDate:  s.LastCheckinDate,
		StreakSaverCount: s.StreakSaverCount,
		UpdatedAt:        s.UpdatedAt,
	}
}

// Create inserts the streak row for a new user
func (r *StreakRepository) Create(ctx context.Context, streak *entity.Streak) error {
	streakModel := streakToModel(streak)
	if err := r.db.WithContext(ctx).Omit("User").Create(&streakModel).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			return errs.ErrDuplicateUser
		}
		return r.handleDatabaseError("creating streak", err, errs.ErrUserNotFound, map[string]any{"user_id": streak.UserID})
	}
	return nil
}

// GetByUserID reads the streak without locking
func (r *StreakRepository) GetByUserID(ctx context.Context, userID uint64) (*entity.Streak, error) {
	return r.get(r.db.WithContext(ctx), userID)
}

// GetForUpdate reads the streak and locks its row
func (r *StreakRepository) GetForUpdate(ctx context.Context, userID uint64) (*entity.Streak, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), userID)
}

func (r *StreakRepository) get(db *gorm.DB, userID uint64) (*entity.Streak, error) {
	var streakModel model.Streak
	if err := db.Where("user_id = ?", userID).First(&streakModel).Error; err != nil {
		return nil, r.handleDatabaseError("getting streak", err, errs.ErrUserNotFound, map[string]any{"user_id": userID})
	}
	return streakToEntity(&streakModel), nil
}

// Save writes the streak columns
func (r *StreakRepository) Save(ctx context.Context, streak *entity.Streak) error {
	result := r.db.WithContext(ctx).Model(&model.Streak{}).
		Where("user_id = ?", streak.UserID).
		Updates(map[string]any{
			"current_streak":     streak.CurrentStreak,
			"longest_streak":     streak.LongestStreak,
			"last_checkin_date":  streak.LastCheckinDate,
			"streak_saver_count": streak.StreakSaverCount,
			"updated_at":         streak.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("saving streak", result.Error, errs.ErrUserNotFound, map[string]any{"user_id": streak.UserID})
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
