package response

import (
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type CheckInResponse struct {
	Outcome    string     `json:"outcome"`
	Admitted   bool       `json:"admitted"`
	BookingID  *uuid.UUID `json:"bookingId,omitempty"`
	Seats      int        `json:"seats,omitempty"`
	EventTitle string     `json:"eventTitle,omitempty"`
	// for already_redeemed this is the original admission time
	RedeemedAt *time.Time `json:"redeemedAt,omitempty"`
}

func FromRedeemResult(r *commands.RedeemResult) *CheckInResponse {
	return &CheckInResponse{
		Outcome:    r.Outcome.String(),
		Admitted:   r.Outcome == booking.RedeemAdmitted,
		BookingID:  r.BookingID,
		Seats:      r.Seats,
		EventTitle: r.EventTitle,
		RedeemedAt: r.RedeemedAt,
	}
}
