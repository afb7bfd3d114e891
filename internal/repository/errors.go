// Sentinel errors shared by repository implementations. The service
// layer translates these into the user-facing error taxonomy.
package repository

import "errors"

// ErrNotFound is returned when a booking lookup by id matches nothing.
var ErrNotFound = errors.New("booking not found")

// ErrDuplicateReference is returned when an insert violates the unique
// index on booking_reference. It is the authoritative collision signal
// for reference generation; the pre-insert FindOne check is advisory.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// ErrStatusMoved is returned when a compare-and-swap update matched the
// id but not the expected statuses, i.e. a concurrent caller already
// transitioned the record.
var ErrStatusMoved = errors.New("booking status changed concurrently")
