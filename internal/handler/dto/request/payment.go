package request

import (
	"strings"

	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// PaymentWebhookRequest is the provider's payment-succeeded notification.
type PaymentWebhookRequest struct {
	ExternalPaymentID string    `json:"externalPaymentId" binding:"required,max=255"`
	EventID           uuid.UUID `json:"eventId" binding:"required"`
	HolderID          uuid.UUID `json:"holderId" binding:"required"`
	Seats             int       `json:"seats" binding:"required,min=1"`
}

func (r PaymentWebhookRequest) ToConfirmation() shared.PaymentConfirmation {
	return shared.PaymentConfirmation{
		ExternalID: strings.TrimSpace(r.ExternalPaymentID),
		EventID:    r.EventID,
		HolderID:   r.HolderID,
		Seats:      r.Seats,
	}
}
