package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/logger"
)

func TestErrorClassifier_Classify(t *testing.T) {
	c := NewErrorClassifier()

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"record not found", gorm.ErrRecordNotFound, NotFoundError},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_earn_events_user_token"}, DuplicateKeyError},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), DuplicateKeyError},
		{"check violation", &pgconn.PgError{Code: "23514"}, CheckError},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, CheckError},
		{"value too long", &pgconn.PgError{Code: "22001"}, DataError},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, DataError},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, LockError},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, LockError},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, LockError},
		{"statement canceled", &pgconn.PgError{Code: "57014"}, LockError},
		{"context deadline", context.DeadlineExceeded, LockError},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), ConnectionError},
		{"other postgres error", &pgconn.PgError{Code: "42P01"}, UnknownError},
		{"plain", errors.New("boom"), UnknownError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.err))
		})
	}
}

func TestErrorClassifier_ConstraintName(t *testing.T) {
	c := NewErrorClassifier()

	assert.Equal(t, "idx_inventory_user_item", c.ConstraintName(fmt.Errorf("wrap: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_inventory_user_item",
	})))
	assert.Empty(t, c.ConstraintName(errors.New("no constraint")))
}

func TestHandleDatabaseError(t *testing.T) {
	b := newBase(nil, logger.NewNoopLogger())
	notFound := errors.New("not found")

	tests := []struct {
		name     string
		err      error
		wantIs   error
		wantKind errs.Kind
	}{
		{"missing row", gorm.ErrRecordNotFound, notFound, ""},
		{"value too long is a validation error", &pgconn.PgError{Code: "22001"}, errs.ErrInvalidRequest, errs.KindValidation},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, errs.ErrUserLocked, ""},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errs.ErrConstraintViolation, ""},
		{"unknown failure", errors.New("boom"), errs.ErrDatabaseConnection, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.handleDatabaseError("create earn event", tt.err, notFound, nil)
			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
			}
		})
	}
}
