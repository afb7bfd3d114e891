package domain

import (
	"time"

	"github.com/devnishantt/flight-booking-service/internal/money"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ParseBookingStatus maps a wire value onto the status enum.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return BookingStatus(s), true
	}
	return "", false
}

const (
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 10
)

type Booking struct {
	ID               int64
	FlightID         int64
	NumberOfSeats    int
	TotalAmount      money.Cents
	BookingReference string
	Status           BookingStatus
	SeatNumbers      []string
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
