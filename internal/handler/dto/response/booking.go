package response

import (
	"time"

	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type BookingResponse struct {
	ID               uuid.UUID       `json:"id"`
	EventID          uuid.UUID       `json:"eventId"`
	EventTitle       string          `json:"eventTitle"`
	EventVenue       string          `json:"eventVenue"`
	EventScheduledAt time.Time       `json:"eventScheduledAt"`
	HolderID         uuid.UUID       `json:"holderId"`
	HolderEmail      string          `json:"holderEmail"`
	Seats            int             `json:"seats"`
	Status           string          `json:"status"`
	Currency         string          `json:"currency"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Total            decimal.Decimal `json:"total"`
	PaymentRef       *string         `json:"paymentRef,omitempty"`
	RedeemedAt       *time.Time      `json:"redeemedAt,omitempty"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type PaymentSessionResponse struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirectUrl"`
}

type CheckoutResponse struct {
	Booking  *BookingResponse        `json:"booking"`
	Session  *PaymentSessionResponse `json:"session,omitempty"`
	Replayed bool                    `json:"replayed"`
}

type BookingListItemResponse struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"eventId"`
	EventTitle       string     `json:"eventTitle"`
	EventScheduledAt time.Time  `json:"eventScheduledAt"`
	Seats            int        `json:"seats"`
	Status           string     `json:"status"`
	RedeemedAt       *time.Time `json:"redeemedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type BookingListResponse struct {
	Bookings   []*BookingListItemResponse `json:"bookings"`
	NextCursor string                     `json:"nextCursor,omitempty"`
}

type TicketResponse struct {
	BookingID   uuid.UUID  `json:"bookingId"`
	EventTitle  string     `json:"eventTitle"`
	Venue       string     `json:"venue"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	Seats       int        `json:"seats"`
	Payload     string     `json:"payload"`
	RedeemedAt  *time.Time `json:"redeemedAt,omitempty"`
}

func FromBookingView(v *queries.BookingView) *BookingResponse {
	var res BookingResponse
	// field names line up one to one; copier cannot fail on these types
	_ = copier.Copy(&res, v)
	return &res
}

func FromCheckout(v *queries.BookingView, replayed bool) *CheckoutResponse {
	res := &CheckoutResponse{
		Booking:  FromBookingView(v),
		Replayed: replayed,
	}
	if v.CheckoutSessionID != nil && v.CheckoutURL != nil {
		res.Session = &PaymentSessionResponse{ID: *v.CheckoutSessionID, RedirectURL: *v.CheckoutURL}
	}
	return res
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	res := &BookingListResponse{Bookings: make([]*BookingListItemResponse, 0, len(items))}
	for _, it := range items {
		var item BookingListItemResponse
		_ = copier.Copy(&item, it)
		res.Bookings = append(res.Bookings, &item)
	}
	if next != nil {
		res.NextCursor = next.After
	}
	return res
}

func FromTicketView(v *queries.TicketView) *TicketResponse {
	var res TicketResponse
	_ = copier.Copy(&res, v)
	return &res
}
