package earn

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
)

// RequestValidator checks earn requests before any transaction opens
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a new request validator
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate maps the first failing field onto the matching domain error
func (v *RequestValidator) Validate(req usecase.EarnRequest) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Type":
		return errs.ErrInvalidEarnType
	case "IdempotencyToken":
		if fe.Tag() == "required_if" {
			return errs.ErrMissingIdempotencyToken
		}
	case "QuizScore":
		return errs.ErrInvalidQuizScore
	}
	return fmt.Errorf("%w: field %s failed %s", errs.ErrInvalidRequest, fe.Field(), fe.Tag())
}
