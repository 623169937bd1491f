package converter

import (
	"cinema-booking/internal/domain/booking"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"
)

func BookingFromInfra(row sqlc.Bookings) (*booking.Booking, error) {
	status, err := booking.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}
	return booking.Reconstruct(booking.ReconstructParams{
		ID:                row.ID,
		EventID:           row.EventID,
		HolderID:          row.HolderID,
		Seats:             int(row.Seats),
		Status:            status,
		PaymentRef:        pgconv.StringPtrFromPgtype(row.PaymentRef),
		CheckoutSessionID: pgconv.StringPtrFromPgtype(row.CheckoutSessionID),
		CheckoutURL:       pgconv.StringPtrFromPgtype(row.CheckoutUrl),
		RedemptionToken:   pgconv.StringPtrFromPgtype(row.RedemptionToken),
		RedeemedAt:        pgconv.TimePtrFromPgtype(row.RedeemedAt),
		RedeemedBy:        pgconv.UUIDPtrFromPgtype(row.RedeemedBy),
		ExpiresAt:         pgconv.TimeFromPgtype(row.ExpiresAt),
		Version:           int(row.Version),
		CreatedAt:         pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:         pgconv.TimeFromPgtype(row.UpdatedAt),
	}), nil
}

func BookingToCreateParams(b *booking.Booking) sqlc.CreateBookingParams {
	return sqlc.CreateBookingParams{
		ID:        b.ID(),
		EventID:   b.EventID(),
		HolderID:  b.HolderID(),
		Seats:     int32(b.Seats()), // #nosec G115 -- bounded by request validation
		Status:    b.Status().String(),
		ExpiresAt: pgconv.TimeToPgtype(b.ExpiresAt()),
		Version:   int32(b.Version()), // #nosec G115
		CreatedAt: pgconv.TimeToPgtype(b.CreatedAt()),
	}
}

// BookingToUpdateParams expects the version the booking was loaded with.
func BookingToUpdateParams(b *booking.Booking) sqlc.UpdateBookingParams {
	return sqlc.UpdateBookingParams{
		Seats:             int32(b.Seats()), // #nosec G115
		Status:            b.Status().String(),
		PaymentRef:        pgconv.StringPtrToPgtype(b.PaymentRef()),
		CheckoutSessionID: pgconv.StringPtrToPgtype(b.CheckoutSessionID()),
		CheckoutUrl:       pgconv.StringPtrToPgtype(b.CheckoutURL()),
		RedemptionToken:   pgconv.StringPtrToPgtype(b.RedemptionToken()),
		RedeemedAt:        pgconv.TimePtrToPgtype(b.RedeemedAt()),
		RedeemedBy:        pgconv.UUIDPtrToPgtype(b.RedeemedBy()),
		ExpiresAt:         pgconv.TimeToPgtype(b.ExpiresAt()),
		UpdatedAt:         pgconv.TimeToPgtype(b.UpdatedAt()),
		ID:                b.ID(),
		Version:           int32(b.Version()), // #nosec G115
	}
}
