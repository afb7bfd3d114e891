package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devnishantt/flight-booking-service/internal/domain"
	"github.com/devnishantt/flight-booking-service/internal/money"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingFilter carries optional equality constraints; nil fields apply
// no constraint.
type BookingFilter struct {
	FlightID         *int64
	Status           *domain.BookingStatus
	BookingReference *string
	Statuses         []domain.BookingStatus
	CreatedBefore    *time.Time
}

// BookingUpdate is a partial update. ExpectStatus, when set, turns the
// update into a compare-and-swap on the current status.
type BookingUpdate struct {
	Status           *domain.BookingStatus
	ExpectStatus     []domain.BookingStatus
	PaymentReference *string
}

type BookingRepository interface {
	Insert(ctx context.Context, booking *domain.Booking) error
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindOne(ctx context.Context, filter BookingFilter) (*domain.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	Update(ctx context.Context, id int64, upd BookingUpdate) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, flight_id, number_of_seats, total_amount_cents, booking_reference, status, seat_numbers, payment_reference, created_at, updated_at`

func (r *PGBookingRepository) Insert(ctx context.Context, booking *domain.Booking) error {
	seats, err := encodeSeatNumbers(booking.SeatNumbers)
	if err != nil {
		return err
	}

	row := r.db.QueryRow(ctx, `INSERT INTO bookings (flight_id, number_of_seats, total_amount_cents, booking_reference, status, seat_numbers)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.FlightID, booking.NumberOfSeats, int64(booking.TotalAmount), booking.BookingReference, booking.Status, seats)
	if err := row.Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *PGBookingRepository) FindOne(ctx context.Context, filter BookingFilter) (*domain.Booking, error) {
	where, args := buildWhere(filter)
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings`+where+` LIMIT 1`, args...)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *PGBookingRepository) FindAll(ctx context.Context, filter BookingFilter) ([]domain.Booking, error) {
	where, args := buildWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings`+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Update(ctx context.Context, id int64, upd BookingUpdate) (*domain.Booking, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}
	if upd.Status != nil {
		args = append(args, *upd.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}
	if upd.PaymentReference != nil {
		args = append(args, *upd.PaymentReference)
		set = append(set, fmt.Sprintf("payment_reference = $%d", len(args)))
	}

	guard := ""
	if len(upd.ExpectStatus) > 0 {
		args = append(args, statusStrings(upd.ExpectStatus))
		guard = fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings SET `+strings.Join(set, ", ")+` WHERE id=$1`+guard+` RETURNING `+bookingColumns, args...)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a lost CAS from a missing record.
		if _, findErr := r.FindByID(ctx, id); errors.Is(findErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrStatusMoved
	}
	return b, err
}

func buildWhere(filter BookingFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	if filter.FlightID != nil {
		args = append(args, *filter.FlightID)
		conds = append(conds, fmt.Sprintf("flight_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BookingReference != nil {
		args = append(args, *filter.BookingReference)
		conds = append(conds, fmt.Sprintf("booking_reference = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.CreatedBefore != nil {
		args = append(args, *filter.CreatedBefore)
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func encodeSeatNumbers(seats []string) ([]byte, error) {
	if seats == nil {
		return nil, nil
	}
	return json.Marshal(seats)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b          domain.Booking
		amount     int64
		seats      []byte
		paymentRef *string
	)
	if err := row.Scan(&b.ID, &b.FlightID, &b.NumberOfSeats, &amount, &b.BookingReference, &b.Status, &seats, &paymentRef, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.TotalAmount = money.Cents(amount)
	if seats != nil {
		if err := json.Unmarshal(seats, &b.SeatNumbers); err != nil {
			return nil, fmt.Errorf("decode seat numbers for booking %d: %w", b.ID, err)
		}
	}
	if paymentRef != nil {
		b.PaymentReference = *paymentRef
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
