package request

import (
	"cinema-booking/internal/domain/user"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (r *LoginRequest) ToDomain() (user.Credentials, error) {
	return user.NewCredentials(r.Email, r.Password)
}

// RefreshRequest is optional; the refresh cookie wins when present.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
