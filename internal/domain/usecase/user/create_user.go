package user

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
)

// CreateUser creates the user, an empty balance and a NoStreak streak in one transaction
func (u *UserUseCase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*entity.AccountView, error) {
	if req.UserID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err)
	}

	user, err := entity.NewUser(req.UserID, req.Email, u.timeProvider)
	if err != nil {
		return nil, err
	}
	balance := entity.NewBalance(user.ID, u.timeProvider)
	streak := entity.NewStreak(user.ID, user.CreatedAt)

	err = u.runner.Run(ctx, func(ctx context.Context) error {
		uow := u.runner.UnitOfWork()
		if err := uow.GetUserRepository(ctx).Create(ctx, user); err != nil {
			return err
		}
		if err := uow.GetBalanceRepository(ctx).Create(ctx, balance); err != nil {
			return err
		}
		return uow.GetStreakRepository(ctx).Create(ctx, streak)
	})
	if err != nil {
		u.logger.Error("Failed to create user", map[string]any{
			"user_id": req.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}

	u.logger.Info("User created", map[string]any{"user_id": user.ID})

	view := entity.NewAccountView(user, balance, streak, u.tierView(user))
	return &view, nil
}

func (u *UserUseCase) tierView(user *entity.User) entity.TierView {
	tier := entity.ResolveTier(user.AccountAgeDays(u.timeProvider.Now()))
	return entity.NewTierView(tier, u.policy.DailyCreditCap)
}
