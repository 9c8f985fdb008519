package dto

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Code    int            `json:"code"`
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
