package usecase

import (
	"context"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
)

// CreateUserRequest represents a signup forwarded by the auth layer
type CreateUserRequest struct {
	UserID uint64 `json:"userId" validate:"required,gt=0"`
	Email  string `json:"email" validate:"omitempty,email,max=254"`
}

// UserUseCase defines account lifecycle operations
type UserUseCase interface {
	// CreateUser creates the user together with an empty balance and streak
	CreateUser(ctx context.Context, req CreateUserRequest) (*entity.AccountView, error)

	// GetAccount returns balance, streak and the trust tier valid right now
	GetAccount(ctx context.Context, userID uint64) (*entity.AccountView, error)

	// BanUser soft-deletes an account; every later operation by the user fails with ErrAccountBanned
	BanUser(ctx context.Context, userID uint64, reason string) error

	// UnbanUser lifts a ban
	UnbanUser(ctx context.Context, userID uint64) error
}
