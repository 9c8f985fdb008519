package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/middleware"
)

// EarnHandler handles earn submissions and history
type EarnHandler struct {
	earnUseCase usecase.EarnUseCase
	ledger      usecase.LedgerReader
	logger      coreport.Logger
}

// NewEarnHandler creates a new earn handler instance
func NewEarnHandler(earnUseCase usecase.EarnUseCase, ledger usecase.LedgerReader, logger coreport.Logger) *EarnHandler {
	return &EarnHandler{
		earnUseCase: earnUseCase,
		ledger:      ledger,
		logger:      logger,
	}
}

// Submit handles POST /v1/me/earn
func (h *EarnHandler) Submit(c *gin.Context) {
	var req dto.EarnRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.earnUseCase.SubmitEarnEvent(
		c.Request.Context(),
		middleware.UserID(c),
		req.ToUseCase(c.GetHeader(middleware.DeviceIDHeader)),
	)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListEvents handles GET /v1/me/earn-events
func (h *EarnHandler) ListEvents(c *gin.Context) {
	events, err := h.ledger.ListEarnEvents(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewEarnEventResponses(events))
}
