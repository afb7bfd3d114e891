package repository

import (
	"testing"
	"time"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool)
	assert.NotNil(t, repo)
}

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(BookingFilter{})
	assert.Equal(t, "", where)
	assert.Nil(t, args)

	flightID := int64(4)
	reference := "BK0123456789AB"
	status := domain.BookingStatusPending
	where, args = buildWhere(BookingFilter{FlightID: &flightID, Status: &status, BookingReference: &reference})
	assert.Equal(t, " WHERE flight_id = $1 AND status = $2 AND booking_reference = $3", where)
	assert.Equal(t, []any{flightID, "pending", reference}, args)

	cutoff := time.Now()
	where, args = buildWhere(BookingFilter{
		Statuses:      []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		CreatedBefore: &cutoff,
	})
	assert.Equal(t, " WHERE status = ANY($1) AND created_at < $2", where)
	assert.Equal(t, []any{[]string{"pending", "confirmed"}, cutoff}, args)
}

func TestEncodeSeatNumbers(t *testing.T) {
	encoded, err := encodeSeatNumbers(nil)
	assert.NoError(t, err)
	assert.Nil(t, encoded)

	encoded, err = encodeSeatNumbers([]string{"12A", "12B"})
	assert.NoError(t, err)
	assert.JSONEq(t, `["12A","12B"]`, string(encoded))
}
