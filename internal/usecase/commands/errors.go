package commands

import "cinema-booking/internal/pkg/errs"

var (
	ErrInvalidRequest        = errs.New("invalid request")
	ErrEventNotFound         = errs.New("event not found")
	ErrEventNotBookable      = errs.New("event not bookable")
	ErrCapacityRejected      = errs.New("capacity rejected")
	ErrDuplicateBooking      = errs.New("duplicate booking")
	ErrBookingNotFound       = errs.New("booking not found")
	ErrBookingNotPending     = errs.New("booking no longer pending")
	ErrAlreadyRedeemed       = errs.New("booking already redeemed")
	ErrHolderInactive        = errs.New("holder inactive")
	ErrIdempotencyInProgress = errs.New("idempotency in progress")
	ErrIdempotencyKeyReused  = errs.New("idempotency key reused with different request")
	ErrPaymentUnavailable    = errs.New("payment provider unavailable")
	ErrRetryQueueUnavailable = errs.New("retry queue unavailable")
	ErrOperatorRequired      = errs.New("operator role required")
	ErrDatabaseOperation     = errs.New("database operation failed")
)
