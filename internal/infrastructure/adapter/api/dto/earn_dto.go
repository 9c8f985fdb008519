package dto

import (
	"time"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/port/usecase"
)

// EarnRequest is the body of POST /me/earn
type EarnRequest struct {
	Type             string `json:"type" binding:"required"`
	IdempotencyToken string `json:"idempotencyToken"`
	ModuleID         string `json:"moduleId"`
	QuizScore        int    `json:"quizScore"`
	DeviceID         string `json:"deviceId"`
	AdUnitID         string `json:"adUnitId"`
	AdNetwork        string `json:"adNetwork"`
}

// ToUseCase converts the body; the device header wins over the body field
func (r EarnRequest) ToUseCase(deviceHeader string) usecase.EarnRequest {
	device := r.DeviceID
	if deviceHeader != "" {
		device = deviceHeader
	}
	return usecase.EarnRequest{
		Type:             r.Type,
		IdempotencyToken: r.IdempotencyToken,
		ModuleID:         r.ModuleID,
		QuizScore:        r.QuizScore,
		DeviceID:         device,
		AdUnitID:         r.AdUnitID,
		AdNetwork:        r.AdNetwork,
	}
}

// EarnEventResponse is one row of the earn history
type EarnEventResponse struct {
	ID          uint64              `json:"id"`
	Type        entity.EarnType     `json:"type"`
	Amount      int64               `json:"amount"`
	ReferenceID string              `json:"referenceId,omitempty"`
	Metadata    entity.EarnMetadata `json:"metadata"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// NewEarnEventResponses maps earn events, newest first as given
func NewEarnEventResponses(events []*entity.EarnEvent) []EarnEventResponse {
	out := make([]EarnEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EarnEventResponse{
			ID:          e.ID,
			Type:        e.Type,
			Amount:      e.Amount,
			ReferenceID: e.ReferenceID,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
