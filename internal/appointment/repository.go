package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/apperr"
)

var (
	ErrBookingNotFound = apperr.New(apperr.ErrNotFound, "booking not found")
	ErrStatusChanged   = apperr.New(apperr.ErrConflict, "booking status changed concurrently, please retry")
)

// Repository contains every persistence call the service needs. Writes are
// expected to run under the bookings lock.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	ListAll(ctx context.Context) ([]Booking, error)

	// ListActive returns the bookings holding a slot of the pair.
	ListActive(ctx context.Context, clinicID, specialtyID int) ([]Booking, error)

	Insert(ctx context.Context, b Booking) error
	// UpdateStatus moves id from one status to another and fails with
	// ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (Booking, error)

	// FindConfirmedBefore returns confirmed bookings dated before date.
	FindConfirmedBefore(ctx context.Context, date string) ([]Booking, error)
}
