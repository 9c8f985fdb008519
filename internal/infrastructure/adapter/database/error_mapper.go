package database

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/repository"
)

// ErrorMapper maps errors raised outside a repository (begin, commit, connect) to domain errors
type ErrorMapper struct {
	classifier *repository.ErrorClassifier
}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{classifier: repository.NewErrorClassifier()}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// already a domain error, e.g. returned by a repository inside the transaction
	if errs.ErrorCode(err) != errs.CodeInternalServer || errors.Is(err, errs.ErrInternalServer) {
		return err
	}

	switch m.classifier.Classify(err) {
	case repository.LockError:
		return errs.ErrUserLocked
	case repository.DuplicateKeyError, repository.CheckError:
		return fmt.Errorf("%w: %s failed: %s", errs.ErrConstraintViolation, operation, m.classifier.ConstraintName(err))
	case repository.DataError:
		return fmt.Errorf("%w: %s failed: %s", errs.ErrInvalidRequest, operation, err.Error())
	case repository.ConnectionError:
		return fmt.Errorf("%w: %s failed: %s", errs.ErrDatabaseConnection, operation, err.Error())
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s failed: %s", errs.ErrDatabaseConnection, operation, err.Error())
}
