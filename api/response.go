package api

import (
	"net/http"
	"time"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/gin-gonic/gin"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type bookingResponse struct {
	ID               int64       `json:"id"`
	FlightID         int64       `json:"flightId"`
	NumberOfSeats    int         `json:"numberOfSeats"`
	TotalAmount      money.Cents `json:"totalAmount"`
	BookingReference string      `json:"bookingReference"`
	Status           string      `json:"status"`
	SeatNumbers      []string    `json:"seatNumbers,omitempty"`
	PaymentReference string      `json:"paymentReference,omitempty"`
	CreatedAt        string      `json:"createdAt"`
	UpdatedAt        string      `json:"updatedAt"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:               b.ID,
		FlightID:         b.FlightID,
		NumberOfSeats:    b.NumberOfSeats,
		TotalAmount:      b.TotalAmount,
		BookingReference: b.BookingReference,
		Status:           string(b.Status),
		SeatNumbers:      b.SeatNumbers,
		PaymentReference: b.PaymentReference,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
}

func sendSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func sendError(c *gin.Context, err error) {
	c.JSON(statusForError(err), envelope{Success: false, Message: err.Error(), Error: string(domain.KindOf(err))})
}

func statusForError(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrKindValidation:
		return http.StatusBadRequest
	case domain.ErrKindNotFound, domain.ErrKindRemoteNotFound:
		return http.StatusNotFound
	case domain.ErrKindConflict:
		return http.StatusConflict
	case domain.ErrKindRemoteUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
