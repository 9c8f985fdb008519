package user

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// GetAccount returns balance, streak and the trust tier valid at request time
func (u *UserUseCase) GetAccount(ctx context.Context, userID uint64) (*entity.AccountView, error) {
	user, err := u.ledger.ActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	uow := u.runner.UnitOfWork()
	balance, err := uow.GetBalanceRepository(ctx).GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	streak, err := uow.GetStreakRepository(ctx).GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := entity.NewAccountView(user, balance, streak, u.tierView(user))
	return &view, nil
}
