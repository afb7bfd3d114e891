package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/devnishantt/flight-booking-service/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.POST("/cancel-old", h.cancelOld)
	router.GET("/:id", h.get)
	router.POST("/:id/payment", h.makePayment)
	router.PATCH("/:id/cancel", h.cancel)
}

type createBookingRequest struct {
	FlightID      int64    `json:"flightId"`
	NumberOfSeats int      `json:"numberOfSeats"`
	SeatNumbers   []string `json:"seatNumbers"`
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ValidationError("invalid request body"))
		return
	}
	if req.FlightID <= 0 {
		sendError(c, domain.ValidationError("flightId must be a positive number"))
		return
	}
	if req.NumberOfSeats < domain.MinSeatsPerBooking || req.NumberOfSeats > domain.MaxSeatsPerBooking {
		sendError(c, domain.ValidationError(fmt.Sprintf("numberOfSeats must be between %d and %d", domain.MinSeatsPerBooking, domain.MaxSeatsPerBooking)))
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		FlightID:      req.FlightID,
		NumberOfSeats: req.NumberOfSeats,
		SeatNumbers:   req.SeatNumbers,
	})
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "Booking created successfully", toBookingResponse(created))
}

type makePaymentRequest struct {
	Amount           *money.Cents `json:"amount"`
	PaymentMethod    string       `json:"paymentMethod"`
	PaymentReference string       `json:"paymentReference"`
}

func (h *BookingHandler) makePayment(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req makePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ValidationError("invalid request body"))
		return
	}
	if req.Amount != nil && *req.Amount <= 0 {
		sendError(c, domain.ValidationError("amount must be a positive number"))
		return
	}
	if req.PaymentMethod != "" && (len(req.PaymentMethod) < 2 || len(req.PaymentMethod) > 50) {
		sendError(c, domain.ValidationError("paymentMethod must be between 2 and 50 characters"))
		return
	}
	if req.PaymentReference != "" && (len(req.PaymentReference) < 5 || len(req.PaymentReference) > 100) {
		sendError(c, domain.ValidationError("paymentReference must be between 5 and 100 characters"))
		return
	}

	paid, err := h.service.MakePayment(c.Request.Context(), id, booking.PaymentInput{
		Amount:           req.Amount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Payment processed successfully", toBookingResponse(paid))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Booking fetched successfully", toBookingResponse(found))
}

func (h *BookingHandler) list(c *gin.Context) {
	var filters booking.ListFilters
	if raw := c.Query("flightId"); raw != "" {
		flightID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || flightID <= 0 {
			sendError(c, domain.ValidationError("flightId must be a positive number"))
			return
		}
		filters.FlightID = &flightID
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseBookingStatus(raw)
		if !ok {
			sendError(c, domain.ValidationError("status must be one of pending, confirmed, cancelled, completed"))
			return
		}
		filters.Status = &status
	}
	if raw := c.Query("bookingReference"); raw != "" {
		filters.BookingReference = &raw
	}

	bookings, err := h.service.GetBookings(c.Request.Context(), filters)
	if err != nil {
		sendError(c, err)
		return
	}

	responses := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, toBookingResponse(&bookings[i]))
	}
	sendSuccess(c, http.StatusOK, "Bookings fetched successfully", responses)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		sendError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Booking cancelled successfully", toBookingResponse(cancelled))
}

func (h *BookingHandler) cancelOld(c *gin.Context) {
	hoursOld := 24
	if raw := c.Query("hoursOld"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			sendError(c, domain.ValidationError("hoursOld must be a positive number"))
			return
		}
		hoursOld = parsed
	}

	result, err := h.service.CancelOldBookings(c.Request.Context(), hoursOld)
	if err != nil {
		sendError(c, err)
		return
	}

	resp := sweepResponse{
		CancelledCount: result.CancelledCount,
		Bookings:       make([]bookingResponse, 0, len(result.Bookings)),
		Errors:         result.Errors,
	}
	for i := range result.Bookings {
		resp.Bookings = append(resp.Bookings, toBookingResponse(&result.Bookings[i]))
	}
	sendSuccess(c, http.StatusOK, fmt.Sprintf("%d old booking(s) cancelled successfully", result.CancelledCount), resp)
}

type sweepResponse struct {
	CancelledCount int                  `json:"cancelledCount"`
	Bookings       []bookingResponse    `json:"bookings"`
	Errors         []booking.SweepError `json:"errors,omitempty"`
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		sendError(c, domain.ValidationError("booking id must be a positive number"))
		return 0, false
	}
	return id, true
}
