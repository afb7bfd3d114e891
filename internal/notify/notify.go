// Package notify turns booking events into customer notifications.
// Delivery is a stub: events are logged where a mail or push gateway
// would be called.
package notify

import (
	"context"

	"github.com/devnishantt/flight-booking-service/internal/kafka"
	"go.uber.org/zap"
)

type Notifier struct {
	log *zap.Logger
}

func NewNotifier(log *zap.Logger) *Notifier {
	return &Notifier{log: log}
}

func (n *Notifier) Notify(ctx context.Context, event kafka.BookingEvent) error {
	n.log.Info("booking notification",
		zap.String("type", event.Type),
		zap.String("booking_reference", event.BookingReference),
		zap.Int64("flight_id", event.FlightID),
		zap.Int("seats", event.NumberOfSeats),
		zap.String("status", event.Status))
	return nil
}
