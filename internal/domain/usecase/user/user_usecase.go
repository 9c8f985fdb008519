package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/txn"
)

// UserUseCase handles account lifecycle and account reads
type UserUseCase struct {
	runner       *txn.Runner
	ledger       *ledger.Ledger
	validate     *validator.Validate
	policy       entity.EconomyPolicy
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	runner *txn.Runner,
	ldg *ledger.Ledger,
	policy entity.EconomyPolicy,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *UserUseCase {
	return &UserUseCase{
		runner:       runner,
		ledger:       ldg,
		validate:     validator.New(),
		policy:       policy,
		timeProvider: timeProvider,
		logger:       logger,
	}
}
