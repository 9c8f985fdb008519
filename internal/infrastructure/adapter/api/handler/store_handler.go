package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/credits-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/middleware"
)

// StoreHandler handles catalog, redemption and inventory requests
type StoreHandler struct {
	storeUseCase usecase.StoreUseCase
	logger       coreport.Logger
}

// NewStoreHandler creates a new store handler instance
func NewStoreHandler(storeUseCase usecase.StoreUseCase, logger coreport.Logger) *StoreHandler {
	return &StoreHandler{
		storeUseCase: storeUseCase,
		logger:       logger,
	}
}

// ListItems handles GET /v1/store/items
func (h *StoreHandler) ListItems(c *gin.Context) {
	items, err := h.storeUseCase.ListCatalog(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStoreItemResponses(items))
}

// Redeem handles POST /v1/me/redemptions
func (h *StoreHandler) Redeem(c *gin.Context) {
	var req dto.RedeemRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.storeUseCase.Redeem(c.Request.Context(), middleware.UserID(c), req.ToUseCase())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewRedeemResponse(result))
}

// ListRedemptions handles GET /v1/me/redemptions
func (h *StoreHandler) ListRedemptions(c *gin.Context) {
	redemptions, err := h.storeUseCase.ListRedemptions(c.Request.Context(), middleware.UserID(c), queryLimit(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRedemptionResponses(redemptions))
}

// GetInventory handles GET /v1/me/inventory
func (h *StoreHandler) GetInventory(c *gin.Context) {
	inventory, err := h.storeUseCase.GetInventory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}
