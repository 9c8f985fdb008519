package dto

// EntryRequest is the body of POST /me/giveaways/:giveawayId/entries
type EntryRequest struct {
	Action         string `json:"action" binding:"required"`
	EngagementType string `json:"engagementType"`
}
