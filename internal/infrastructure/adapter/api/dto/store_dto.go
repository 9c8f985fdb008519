package dto

import (
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
)

// StoreItemResponse is a catalog entry
type StoreItemResponse struct {
	ID           uint64          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CreditsCost  int64           `json:"creditsCost"`
	ItemType     entity.ItemType `json:"itemType"`
	DurationDays *int            `json:"durationDays,omitempty"`
	MaxPerUser   *int            `json:"maxPerUser,omitempty"`
}

// NewStoreItemResponses maps catalog items
func NewStoreItemResponses(items []*entity.StoreItem) []StoreItemResponse {
	out := make([]StoreItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, StoreItemResponse{
			ID:           i.ID,
			Code:         i.Code,
			Name:         i.Name,
			Description:  i.Description,
			CreditsCost:  i.CreditsCost,
			ItemType:     i.ItemType,
			DurationDays: i.DurationDays,
			MaxPerUser:   i.MaxPerUser,
		})
	}
	return out
}

// RedeemRequest is the body of POST /me/redemptions
type RedeemRequest struct {
	ItemID uint64 `json:"itemId" binding:"required,gt=0"`
	Email  string `json:"email" binding:"omitempty,max=254"`
}

// ToUseCase converts the body
func (r RedeemRequest) ToUseCase() usecase.RedeemRequest {
	return usecase.RedeemRequest{ItemID: r.ItemID, Email: r.Email}
}

// FulfillRequest is the body of the admin fulfill route
type FulfillRequest struct {
	Code string `json:"code" binding:"required,max=256"`
}

// RedemptionResponse is a redemption record
type RedemptionResponse struct {
	ID              uint64                  `json:"id"`
	ItemID          uint64                  `json:"itemId"`
	CreditsSpent    int64                   `json:"creditsSpent"`
	Status          entity.RedemptionStatus `json:"status"`
	DeliveryEmail   string                  `json:"deliveryEmail,omitempty"`
	FulfillmentCode string                  `json:"fulfillmentCode,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	FulfilledAt     *time.Time              `json:"fulfilledAt,omitempty"`
}

// NewRedemptionResponse maps one redemption
func NewRedemptionResponse(r *entity.Redemption) RedemptionResponse {
	return RedemptionResponse{
		ID:              r.ID,
		ItemID:          r.ItemID,
		CreditsSpent:    r.CreditsSpent,
		Status:          r.Status,
		DeliveryEmail:   r.DeliveryEmail,
		FulfillmentCode: r.FulfillmentCode,
		CreatedAt:       r.CreatedAt,
		FulfilledAt:     r.FulfilledAt,
	}
}

// NewRedemptionResponses maps a redemption history
func NewRedemptionResponses(rs []*entity.Redemption) []RedemptionResponse {
	out := make([]RedemptionResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewRedemptionResponse(r))
	}
	return out
}

// RedeemResponse is returned for a successful redemption
type RedeemResponse struct {
	Balance    entity.BalanceSnapshot `json:"balance"`
	Redemption RedemptionResponse     `json:"redemption"`
	Inventory  *usecase.InventoryItem `json:"inventory,omitempty"`
}

// NewRedeemResponse maps a redemption result
func NewRedeemResponse(r *usecase.RedemptionResult) RedeemResponse {
	return RedeemResponse{
		Balance:    r.Balance,
		Redemption: NewRedemptionResponse(r.Redemption),
		Inventory:  r.Inventory,
	}
}
