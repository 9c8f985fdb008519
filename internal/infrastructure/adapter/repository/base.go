package repository

import (
	"fmt"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// base holds what every repository needs. db is either the pool or the open transaction.
type base struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

func newBase(db *gorm.DB, logger coreport.Logger) base {
	return base{db: db, logger: logger, errorClassifier: NewErrorClassifier()}
}

// forUpdate adds a row lock to a query
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// handleDatabaseError standardizes database error handling. notFound is returned for missing rows.
func (b base) handleDatabaseError(operation string, err error, notFound error, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["operation"] = operation
	fields["error"] = err.Error()

	switch b.errorClassifier.Classify(err) {
	case NotFoundError:
		return notFound
	case LockError:
		b.logger.Warn("Row is locked by another transaction", fields)
		return errs.ErrUserLocked
	case DuplicateKeyError, CheckError:
		fields["constraint"] = b.errorClassifier.ConstraintName(err)
		b.logger.Warn("Database constraint rejected write", fields)
		return fmt.Errorf("%w: %s", errs.ErrConstraintViolation, b.errorClassifier.ConstraintName(err))
	case DataError:
		b.logger.Warn("Database rejected a value", fields)
		return fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error())
	}

	b.logger.Error(fmt.Sprintf("Database error when %s", operation), fields)
	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}
