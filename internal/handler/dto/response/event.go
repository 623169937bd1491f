package response

import (
	"time"

	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type EventResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Venue          string          `json:"venue"`
	ScheduledAt    time.Time       `json:"scheduledAt"`
	Capacity       int             `json:"capacity"`
	CommittedSeats int             `json:"committedSeats"`
	Remaining      int             `json:"remaining"`
	Status         string          `json:"status"`
	Currency       string          `json:"currency"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
}

func FromEventView(v *queries.EventView) *EventResponse {
	var res EventResponse
	_ = copier.Copy(&res, v)
	return &res
}

func FromEventList(items []*queries.EventView) []*EventResponse {
	res := make([]*EventResponse, len(items))
	for i, it := range items {
		res[i] = FromEventView(it)
	}
	return res
}
