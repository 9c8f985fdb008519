package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
)

// AdminHandler handles moderation and fulfillment requests
type AdminHandler struct {
	userUseCase  usecase.UserUseCase
	storeUseCase usecase.StoreUseCase
	logger       coreport.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(userUseCase usecase.UserUseCase, storeUseCase usecase.StoreUseCase, logger coreport.Logger) *AdminHandler {
	return &AdminHandler{
		userUseCase:  userUseCase,
		storeUseCase: storeUseCase,
		logger:       logger,
	}
}

// Ban handles POST /v1/admin/users/:userId/ban
func (h *AdminHandler) Ban(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.BanRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userUseCase.BanUser(c.Request.Context(), userID, req.Reason); err != nil {
		_ = c.Error(err)
		return
	}
	h.logger.Info("Admin banned user", map[string]any{"user_id": userID})
	c.Status(http.StatusNoContent)
}

// Unban handles DELETE /v1/admin/users/:userId/ban
func (h *AdminHandler) Unban(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.userUseCase.UnbanUser(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}
	h.logger.Info("Admin lifted ban", map[string]any{"user_id": userID})
	c.Status(http.StatusNoContent)
}

// Fulfill handles POST /v1/admin/redemptions/:redemptionId/fulfill
func (h *AdminHandler) Fulfill(c *gin.Context) {
	redemptionID, err := pathID(c, "redemptionId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.FulfillRequest
	if !bindJSON(c, &req) {
		return
	}

	redemption, err := h.storeUseCase.FulfillRedemption(c.Request.Context(), redemptionID, req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRedemptionResponse(redemption))
}
