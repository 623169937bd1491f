package response

import (
	"time"

	"cinema-booking/internal/usecase/commands"
	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type WebhookResponse struct {
	Outcome   string     `json:"outcome"`
	BookingID *uuid.UUID `json:"bookingId,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

func FromReconcileResult(r *commands.ReconcileResult) *WebhookResponse {
	return &WebhookResponse{
		Outcome:   r.Outcome.String(),
		BookingID: r.BookingID,
		Reason:    r.Reason,
	}
}

type PaymentReviewResponse struct {
	ExternalID     string     `json:"externalPaymentId"`
	EventID        uuid.UUID  `json:"eventId"`
	HolderID       uuid.UUID  `json:"holderId"`
	Seats          int        `json:"seats"`
	Outcome        string     `json:"outcome"`
	BookingID      *uuid.UUID `json:"bookingId,omitempty"`
	Deliveries     int        `json:"deliveries"`
	LastReceivedAt time.Time  `json:"lastReceivedAt"`
}

func FromPaymentReviewList(items []*queries.PaymentReviewItem) []*PaymentReviewResponse {
	res := make([]*PaymentReviewResponse, len(items))
	for i, it := range items {
		var item PaymentReviewResponse
		_ = copier.Copy(&item, it)
		res[i] = &item
	}
	return res
}
