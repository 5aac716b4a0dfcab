package auth

import "github.com/simp-lee/amcham/internal/domain"

// LoginRequest represents the sign-in form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,max=128"`
}

// SessionResponse describes the console session. Tokens stay server side.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	ExpiresAt     int64        `json:"expires_at,omitempty"`
	User          *domain.User `json:"user,omitempty"`
	Admin         bool         `json:"admin"`
}
