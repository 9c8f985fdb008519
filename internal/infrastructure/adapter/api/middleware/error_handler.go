package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
)

// StatusForKind maps an error kind to the HTTP status returned to the client
func StatusForKind(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnauthenticated:
		return http.StatusUnauthorized
	case errs.KindAccountBanned, errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindStateConflict:
		return http.StatusConflict
	case errs.KindPolicyViolation:
		return http.StatusUnprocessableEntity
	case errs.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse renders err for the client. Internal errors never leak their message.
func NewErrorResponse(err error) dto.ErrorResponse {
	kind := errs.KindOf(err)
	resp := dto.ErrorResponse{
		Code:    errs.ErrorCode(err),
		Kind:    string(kind),
		Message: err.Error(),
	}

	switch kind {
	case errs.KindInternal:
		resp.Message = errs.ErrInternalServer.Error()
	case errs.KindUnavailable:
		resp.Message = "temporarily unavailable, retry shortly"
	}

	var capErr *errs.DailyCapError
	var cooldownErr *errs.CooldownError
	var balanceErr *errs.InsufficientBalanceError
	switch {
	case errors.As(err, &capErr):
		resp.Details = map[string]any{"dailyCap": capErr.Cap, "remaining": capErr.Remaining()}
	case errors.As(err, &cooldownErr):
		resp.Details = map[string]any{"availableAt": cooldownErr.AvailableAt.UTC().Format(time.RFC3339)}
	case errors.As(err, &balanceErr):
		resp.Details = map[string]any{"required": balanceErr.Required, "available": balanceErr.Available}
	}
	return resp
}

// ErrorHandler recovers from panics and renders the last error a handler attached with c.Error
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"panic":      rec,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": GetRequestID(c),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse(errs.ErrInternalServer))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := StatusForKind(errs.KindOf(err))
		if status >= http.StatusInternalServerError {
			fields := errs.LogFields(err)
			fields["path"] = c.Request.URL.Path
			fields["request_id"] = GetRequestID(c)
			logger.Error("Request failed with server error", fields)
		}
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		c.JSON(status, NewErrorResponse(err))
	}
}
