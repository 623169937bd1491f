package request

import (
	"strings"
	"time"
)

type CreateEventRequest struct {
	Title          string    `json:"title" binding:"required,max=200"`
	Venue          string    `json:"venue" binding:"required,max=200"`
	Capacity       int       `json:"capacity" binding:"required,min=1"`
	UnitPriceMinor int64     `json:"unitPriceMinor" binding:"min=0"`
	Currency       string    `json:"currency" binding:"required,len=3"`
	ScheduledAt    time.Time `json:"scheduledAt" binding:"required"`
}

func (r *CreateEventRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Venue = strings.TrimSpace(r.Venue)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
}
