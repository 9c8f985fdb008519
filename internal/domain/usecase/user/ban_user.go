package user

import (
	"context"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
)

// BanUser soft-deletes the account. Ledger history stays in place.
func (u *UserUseCase) BanUser(ctx context.Context, userID uint64, reason string) error {
	if userID == 0 {
		return errs.ErrInvalidUserID
	}

	err := u.runner.Run(ctx, func(ctx context.Context) error {
		uow := u.runner.UnitOfWork()
		users := uow.GetUserRepository(ctx)
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		// waits out in-flight credits and debits, which re-check the ban under this lock
		if _, err := uow.GetBalanceRepository(ctx).GetForUpdate(ctx, userID); err != nil {
			return err
		}
		user.Ban(reason, u.timeProvider)
		return users.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	u.logger.Warn("User banned", map[string]any{"user_id": userID, "reason": reason})
	return nil
}

// UnbanUser lifts a ban
func (u *UserUseCase) UnbanUser(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return errs.ErrInvalidUserID
	}

	err := u.runner.Run(ctx, func(ctx context.Context) error {
		users := u.runner.UnitOfWork().GetUserRepository(ctx)
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user.Unban(u.timeProvider)
		return users.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	u.logger.Info("User unbanned", map[string]any{"user_id": userID})
	return nil
}
