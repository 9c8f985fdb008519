package dto

// CreateUserRequest is sent by the auth layer after signup
type CreateUserRequest struct {
	UserID uint64 `json:"userId" binding:"required,gt=0"`
	Email  string `json:"email" binding:"omitempty,email,max=254"`
}

// BanRequest carries the reason recorded with a ban
type BanRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}
