package queries

import "cinema-booking/internal/pkg/errs"

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrEventNotFound   = errs.New("event not found")
	ErrTicketNotIssued = errs.New("ticket not issued")
	ErrInvalidCursor   = errs.New("invalid cursor")
	ErrUserNotFound    = errs.New("user not found")
	ErrUserInactive    = errs.New("user inactive")
)
