package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/middleware"
)

// GiveawayHandler handles giveaway entry requests
type GiveawayHandler struct {
	giveawayUseCase usecase.GiveawayUseCase
	logger          coreport.Logger
}

// NewGiveawayHandler creates a new giveaway handler instance
func NewGiveawayHandler(giveawayUseCase usecase.GiveawayUseCase, logger coreport.Logger) *GiveawayHandler {
	return &GiveawayHandler{
		giveawayUseCase: giveawayUseCase,
		logger:          logger,
	}
}

// Enter handles POST /v1/me/giveaways/:giveawayId/entries
func (h *GiveawayHandler) Enter(c *gin.Context) {
	giveawayID, err := pathID(c, "giveawayId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.EntryRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.giveawayUseCase.EnterGiveaway(c.Request.Context(), middleware.UserID(c), giveawayID, req.Action, req.EngagementType)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetEntries handles GET /v1/me/giveaways/:giveawayId/entries
func (h *GiveawayHandler) GetEntries(c *gin.Context) {
	giveawayID, err := pathID(c, "giveawayId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	summary, err := h.giveawayUseCase.GetEntries(c.Request.Context(), middleware.UserID(c), giveawayID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
