package mailer

import (
	"context"
	"encoding/json"
	"log/slog"

	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"
)

// LogMailer stands in for an SMTP or provider client and writes deliveries to the log.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, topic string, payload []byte) error {
	switch topic {
	case commands.TopicTicketIssued:
		var d commands.TicketDelivery
		if err := json.Unmarshal(payload, &d); err != nil {
			return errs.Wrap(err, "malformed ticket delivery payload")
		}
		if d.HolderEmail == "" || d.SignedPayload == "" {
			return errs.New("ticket delivery missing recipient or payload")
		}
		m.logger.InfoContext(ctx, "ticket email sent",
			"to", d.HolderEmail,
			"booking_id", d.BookingID,
			"event_title", d.EventTitle,
			"seats", d.Seats)
		return nil
	default:
		return errs.Newf("unsupported notification topic %q", topic)
	}
}
