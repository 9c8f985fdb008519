package dto

// HealthResponse reports process and storage health
type HealthResponse struct {
	Status   string `json:"status"`
	Driver   string `json:"driver"`
	Database any    `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}
