package request

import (
	"github.com/google/uuid"
)

type CheckoutRequest struct {
	EventID uuid.UUID `json:"eventId" binding:"required"`
	Seats   int       `json:"seats" binding:"required,min=1,max=100"`
}

type CheckInRequest struct {
	// raw token or the signed QR payload
	Token string `json:"token" binding:"required,max=4096"`
}
