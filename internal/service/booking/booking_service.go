// Package booking owns the reservation lifecycle: reference generation,
// the status state machine, reconciliation of seat counts with the
// remote inventory service, and the batch expiry sweep.
package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/inventory"
	"github.com/devnishantt/flight-booking-service/internal/kafka"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/devnishantt/flight-booking-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	MakePayment(ctx context.Context, bookingID int64, input PaymentInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	CancelOldBookings(ctx context.Context, hoursOld int) (*SweepResult, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	GetBookings(ctx context.Context, filters ListFilters) ([]domain.Booking, error)
}

// PriceCache fronts the inventory price lookup. Misses and cache errors
// fall through to the remote call.
type PriceCache interface {
	GetPrice(ctx context.Context, flightID int64) (money.Cents, bool, error)
	SetPrice(ctx context.Context, flightID int64, price money.Cents) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

// publishRetries bounds event publish attempts, mirroring the seat
// deduction retry policy.
const publishRetries = 3

type CreateBookingInput struct {
	FlightID      int64    `json:"flightId"`
	NumberOfSeats int      `json:"numberOfSeats"`
	SeatNumbers   []string `json:"seatNumbers,omitempty"`
}

type PaymentInput struct {
	Amount           *money.Cents `json:"amount,omitempty"`
	PaymentMethod    string       `json:"paymentMethod,omitempty"`
	PaymentReference string       `json:"paymentReference,omitempty"`
}

type ListFilters struct {
	FlightID         *int64
	Status           *domain.BookingStatus
	BookingReference *string
}

type SweepError struct {
	BookingID int64  `json:"bookingId"`
	Message   string `json:"message"`
}

type SweepResult struct {
	CancelledCount int              `json:"cancelledCount"`
	Bookings       []domain.Booking `json:"bookings"`
	Errors         []SweepError     `json:"errors,omitempty"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	inventory          inventory.FlightClient
	cache              PriceCache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	deductionRetries   int
	retryBackoff       time.Duration
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) { s.notificationsTopic = topic }
}

// WithDeductionRetries bounds how many times the seat deduction after a
// create is attempted before the booking is left pending for the sweep.
func WithDeductionRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.deductionRetries = n
		}
	}
}

func WithRetryBackoff(d time.Duration) BookingServiceOption {
	return func(s *BookingService) { s.retryBackoff = d }
}

func NewBookingService(
	bookings repository.BookingRepository,
	flightInventory inventory.FlightClient,
	cache PriceCache,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:         bookings,
		inventory:        flightInventory,
		cache:            cache,
		producer:         producer,
		eventsTopic:      eventsTopic,
		deductionRetries: 3,
		retryBackoff:     500 * time.Millisecond,
		log:              log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func generateBookingReference() (string, error) {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", domain.WrapError(domain.ErrKindInternal, "generate booking reference", err)
	}
	return fmt.Sprintf("BK%X", buf[:]), nil
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.FlightID <= 0 {
		return nil, domain.ValidationError("flight id must be a positive number")
	}
	if input.NumberOfSeats < domain.MinSeatsPerBooking || input.NumberOfSeats > domain.MaxSeatsPerBooking {
		return nil, domain.ValidationError(fmt.Sprintf("number of seats must be between %d and %d", domain.MinSeatsPerBooking, domain.MaxSeatsPerBooking))
	}

	price, err := s.unitPrice(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}

	booking, err := s.insertWithFreshReference(ctx, input, price.Mul(input.NumberOfSeats))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventBookingCreated, booking)

	if err := s.deductSeats(ctx, booking); err != nil {
		// The record stays pending; the expiry sweep reconciles it later.
		s.log.Warn("seat deduction failed, booking left pending",
			zap.Int64("booking_id", booking.ID),
			zap.Int64("flight_id", booking.FlightID),
			zap.Error(err))
		return nil, err
	}

	confirmed := domain.BookingStatusConfirmed
	updated, err := s.bookings.Update(ctx, booking.ID, repository.BookingUpdate{
		Status:       &confirmed,
		ExpectStatus: []domain.BookingStatus{domain.BookingStatusPending},
	})
	if err != nil {
		return nil, s.mapUpdateError(err, "confirm booking")
	}
	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

// unitPrice consults the cache first; cache failures are logged and the
// remote price is authoritative.
func (s *BookingService) unitPrice(ctx context.Context, flightID int64) (money.Cents, error) {
	if s.cache != nil {
		price, ok, err := s.cache.GetPrice(ctx, flightID)
		if err != nil {
			s.log.Warn("price cache read failed", zap.Int64("flight_id", flightID), zap.Error(err))
		} else if ok {
			return price, nil
		}
	}

	price, err := s.inventory.FetchPrice(ctx, flightID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.SetPrice(ctx, flightID, price); err != nil {
			s.log.Warn("price cache write failed", zap.Int64("flight_id", flightID), zap.Error(err))
		}
	}
	return price, nil
}

// insertWithFreshReference loops generate -> re-check -> insert until
// the reference is unique. The store's unique index is the
// authoritative collision signal; the FindOne pre-check only avoids a
// doomed insert.
func (s *BookingService) insertWithFreshReference(ctx context.Context, input CreateBookingInput, total money.Cents) (*domain.Booking, error) {
	for {
		reference, err := generateBookingReference()
		if err != nil {
			return nil, err
		}

		existing, err := s.bookings.FindOne(ctx, repository.BookingFilter{BookingReference: &reference})
		if err != nil {
			return nil, domain.AsInternal("check booking reference", err)
		}
		if existing != nil {
			continue
		}

		booking := &domain.Booking{
			FlightID:         input.FlightID,
			NumberOfSeats:    input.NumberOfSeats,
			TotalAmount:      total,
			BookingReference: reference,
			Status:           domain.BookingStatusPending,
			SeatNumbers:      input.SeatNumbers,
		}
		if err := s.bookings.Insert(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrDuplicateReference) {
				continue
			}
			return nil, domain.AsInternal("insert booking", err)
		}
		return booking, nil
	}
}

func (s *BookingService) deductSeats(ctx context.Context, booking *domain.Booking) error {
	var lastErr error
	for attempt := 1; attempt <= s.deductionRetries; attempt++ {
		lastErr = s.inventory.AdjustRemainingSeats(ctx, booking.FlightID, -booking.NumberOfSeats)
		if lastErr == nil {
			return nil
		}
		if attempt < s.deductionRetries && s.retryBackoff > 0 {
			time.Sleep(time.Duration(attempt) * s.retryBackoff)
		}
	}
	return lastErr
}

func (s *BookingService) MakePayment(ctx context.Context, bookingID int64, input PaymentInput) (*domain.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case domain.BookingStatusCancelled:
		return nil, domain.ValidationError("cannot pay for a cancelled booking")
	case domain.BookingStatusCompleted:
		return nil, domain.ConflictError("booking has already been paid")
	}

	if input.Amount != nil && *input.Amount != booking.TotalAmount {
		return nil, domain.ValidationError(fmt.Sprintf("payment amount %s does not match booking total %s", input.Amount.String(), booking.TotalAmount.String()))
	}

	// Payment capture is simulated: once the amount checks out the
	// charge always succeeds.
	paymentRef := input.PaymentReference
	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}

	completed := domain.BookingStatusCompleted
	updated, err := s.bookings.Update(ctx, bookingID, repository.BookingUpdate{
		Status:           &completed,
		ExpectStatus:     []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		PaymentReference: &paymentRef,
	})
	if err != nil {
		return nil, s.mapUpdateError(err, "complete payment")
	}
	s.publish(ctx, kafka.EventPaymentCompleted, updated)
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case domain.BookingStatusCancelled:
		return nil, domain.ConflictError("booking has already been cancelled")
	case domain.BookingStatusCompleted:
		return nil, domain.ValidationError("cannot cancel a completed booking")
	}

	cancelled := domain.BookingStatusCancelled
	updated, err := s.bookings.Update(ctx, bookingID, repository.BookingUpdate{
		Status:       &cancelled,
		ExpectStatus: []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
	})
	if err != nil {
		return nil, s.mapUpdateError(err, "cancel booking")
	}

	s.releaseSeats(ctx, updated)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

// releaseSeats gives the seats back to the inventory pool. The
// cancellation has already committed, so a failed release is logged and
// surfaced as an event, never as an error.
func (s *BookingService) releaseSeats(ctx context.Context, booking *domain.Booking) bool {
	if err := s.inventory.AdjustRemainingSeats(ctx, booking.FlightID, booking.NumberOfSeats); err != nil {
		s.log.Warn("seat release failed",
			zap.Int64("booking_id", booking.ID),
			zap.Int64("flight_id", booking.FlightID),
			zap.Int("seats", booking.NumberOfSeats),
			zap.Error(err))
		s.publish(ctx, kafka.EventReleaseFailed, booking)
		return false
	}
	return true
}

func (s *BookingService) CancelOldBookings(ctx context.Context, hoursOld int) (*SweepResult, error) {
	if hoursOld <= 0 {
		return nil, domain.ValidationError("hoursOld must be a positive number")
	}

	cutoff := time.Now().Add(-time.Duration(hoursOld) * time.Hour)
	stale, err := s.bookings.FindAll(ctx, repository.BookingFilter{
		Statuses:      []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return nil, domain.AsInternal("query stale bookings", err)
	}

	result := &SweepResult{Bookings: make([]domain.Booking, 0, len(stale))}
	cancelled := domain.BookingStatusCancelled
	for _, b := range stale {
		updated, err := s.bookings.Update(ctx, b.ID, repository.BookingUpdate{
			Status:       &cancelled,
			ExpectStatus: []domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed},
		})
		if err != nil {
			result.Errors = append(result.Errors, SweepError{BookingID: b.ID, Message: err.Error()})
			continue
		}

		result.CancelledCount++
		result.Bookings = append(result.Bookings, *updated)
		if !s.releaseSeats(ctx, updated) {
			result.Errors = append(result.Errors, SweepError{BookingID: b.ID, Message: "failed to release seats to inventory"})
		}
		s.publish(ctx, kafka.EventBookingExpired, updated)
	}
	return result, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.findBooking(ctx, bookingID)
}

func (s *BookingService) GetBookings(ctx context.Context, filters ListFilters) ([]domain.Booking, error) {
	bookings, err := s.bookings.FindAll(ctx, repository.BookingFilter{
		FlightID:         filters.FlightID,
		Status:           filters.Status,
		BookingReference: filters.BookingReference,
	})
	if err != nil {
		return nil, domain.AsInternal("list bookings", err)
	}
	return bookings, nil
}

func (s *BookingService) findBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFoundError(fmt.Sprintf("booking %d not found", bookingID))
		}
		return nil, domain.AsInternal("load booking", err)
	}
	return booking, nil
}

func (s *BookingService) mapUpdateError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return domain.NotFoundError("booking not found")
	case errors.Is(err, repository.ErrStatusMoved):
		return domain.ConflictError("booking was updated concurrently")
	default:
		return domain.AsInternal(op, err)
	}
}

// publish is best effort: events are an observability surface, not a
// correctness dependency.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		FlightID:         booking.FlightID,
		NumberOfSeats:    booking.NumberOfSeats,
		TotalAmount:      booking.TotalAmount.String(),
		Status:           string(booking.Status),
		OccurredAt:       time.Now(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.eventsTopic, booking.BookingReference, event, publishRetries); err != nil {
		s.log.Warn("publish booking event failed", zap.String("type", eventType), zap.Int64("booking_id", booking.ID), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, booking.BookingReference, event, publishRetries); err != nil {
			s.log.Warn("publish notification failed", zap.String("type", eventType), zap.Int64("booking_id", booking.ID), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
