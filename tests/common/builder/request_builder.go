//go:build unit || e2e

package builder

import (
	reqdto "cinema-booking/internal/handler/dto/request"

	"github.com/google/uuid"
)

type AuthBuilder struct {
	Email    string
	Password string
}

func NewAuthBuilder() *AuthBuilder {
	return &AuthBuilder{
		Email:    "test@example.com",
		Password: "password123",
	}
}

func (a *AuthBuilder) WithPassword(password string) *AuthBuilder {
	a.Password = password
	return a
}

func (a *AuthBuilder) BuildDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    a.Email,
		Password: a.Password,
	}
}

type CheckoutBuilder struct {
	EventID uuid.UUID
	Seats   int
}

func NewCheckoutBuilder(eventID uuid.UUID) *CheckoutBuilder {
	return &CheckoutBuilder{EventID: eventID, Seats: 2}
}

func (c *CheckoutBuilder) WithSeats(seats int) *CheckoutBuilder {
	c.Seats = seats
	return c
}

func (c *CheckoutBuilder) BuildDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{EventID: c.EventID, Seats: c.Seats}
}

type WebhookBuilder struct {
	ExternalPaymentID string
	EventID           uuid.UUID
	HolderID          uuid.UUID
	Seats             int
}

func NewWebhookBuilder(eventID, holderID uuid.UUID) *WebhookBuilder {
	return &WebhookBuilder{
		ExternalPaymentID: "pi_" + uuid.NewString(),
		EventID:           eventID,
		HolderID:          holderID,
		Seats:             2,
	}
}

func (w *WebhookBuilder) WithPaymentID(id string) *WebhookBuilder {
	w.ExternalPaymentID = id
	return w
}

func (w *WebhookBuilder) WithSeats(seats int) *WebhookBuilder {
	w.Seats = seats
	return w
}

func (w *WebhookBuilder) BuildDTO() reqdto.PaymentWebhookRequest {
	return reqdto.PaymentWebhookRequest{
		ExternalPaymentID: w.ExternalPaymentID,
		EventID:           w.EventID,
		HolderID:          w.HolderID,
		Seats:             w.Seats,
	}
}
