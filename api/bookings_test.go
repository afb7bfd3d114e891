package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/devnishantt/flight-booking-service/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) MakePayment(ctx context.Context, bookingID int64, input booking.PaymentInput) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelOldBookings(ctx context.Context, hoursOld int) (*booking.SweepResult, error) {
	args := m.Called(ctx, hoursOld)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.SweepResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBookings(ctx context.Context, filters booking.ListFilters) ([]domain.Booking, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newTestRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/api/v1/bookings"))
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	total, _ := money.Parse("376.50")
	created := &domain.Booking{
		ID:               1,
		FlightID:         4,
		NumberOfSeats:    3,
		TotalAmount:      total,
		BookingReference: "BK0123456789AB",
		Status:           domain.BookingStatusConfirmed,
	}
	mockService.On("CreateBooking", mock.Anything, booking.CreateBookingInput{FlightID: 4, NumberOfSeats: 3}).Return(created, nil).Once()

	body, _ := json.Marshal(map[string]any{"flightId": 4, "numberOfSeats": 3})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "Booking created successfully", env.Message)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_InvalidSeats(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	body, _ := json.Marshal(map[string]any{"flightId": 4, "numberOfSeats": 11})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_makePayment_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"cancelled booking", domain.ValidationError("cannot pay for a cancelled booking"), http.StatusBadRequest},
		{"already paid", domain.ConflictError("booking has already been paid"), http.StatusConflict},
		{"missing booking", domain.NotFoundError("booking 5 not found"), http.StatusNotFound},
		{"inventory down", domain.NewError(domain.ErrKindRemoteUnavailable, "flight inventory service unreachable"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			router := newTestRouter(mockService)
			mockService.On("MakePayment", mock.Anything, int64(5), mock.Anything).Return(nil, tc.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/5/payment", bytes.NewReader([]byte(`{}`)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			env := decodeEnvelope(t, w)
			assert.False(t, env.Success)
		})
	}
}

func TestBookingHandler_makePayment_AmountDecimal(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	total, _ := money.Parse("376.50")
	paid := &domain.Booking{ID: 5, TotalAmount: total, Status: domain.BookingStatusCompleted}
	mockService.On("MakePayment", mock.Anything, int64(5), mock.MatchedBy(func(input booking.PaymentInput) bool {
		return input.Amount != nil && *input.Amount == total
	})).Return(paid, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/5/payment", bytes.NewReader([]byte(`{"amount":376.50}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	found := &domain.Booking{ID: 9, BookingReference: "BKABCDEF012345", Status: domain.BookingStatusPending}
	mockService.On("GetBooking", mock.Anything, int64(9)).Return(found, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)
}

func TestBookingHandler_get_BadID(t *testing.T) {
	router := newTestRouter(&MockBookingUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_list_Filters(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("GetBookings", mock.Anything, mock.MatchedBy(func(filters booking.ListFilters) bool {
		return filters.FlightID != nil && *filters.FlightID == 4 &&
			filters.Status != nil && *filters.Status == domain.BookingStatusConfirmed
	})).Return([]domain.Booking{{ID: 1}, {ID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?flightId=4&status=confirmed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list_BadStatus(t *testing.T) {
	router := newTestRouter(&MockBookingUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_cancelOld(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	result := &booking.SweepResult{
		CancelledCount: 2,
		Bookings: []domain.Booking{
			{ID: 1, Status: domain.BookingStatusCancelled},
			{ID: 2, Status: domain.BookingStatusCancelled},
		},
		Errors: []booking.SweepError{{BookingID: 3, Message: "failed to release seats to inventory"}},
	}
	mockService.On("CancelOldBookings", mock.Anything, 48).Return(result, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/cancel-old?hoursOld=48", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "2 old booking(s) cancelled successfully", env.Message)
}

func TestBookingHandler_cancelOld_DefaultsTo24(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	mockService.On("CancelOldBookings", mock.Anything, 24).Return(&booking.SweepResult{}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/cancel-old", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newTestRouter(mockService)

	cancelled := &domain.Booking{ID: 7, Status: domain.BookingStatusCancelled}
	mockService.On("CancelBooking", mock.Anything, int64(7)).Return(cancelled, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/7/cancel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Booking cancelled successfully", env.Message)
}
