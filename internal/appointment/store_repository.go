package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/store"
)

// StoreRepository keeps bookings in the bookings collection, in insertion
// order.
type StoreRepository struct {
	bookings *store.Collection[Booking]
	now      func() time.Time
}

func NewStoreRepository(bookings *store.Collection[Booking]) *StoreRepository {
	return &StoreRepository{bookings: bookings, now: time.Now}
}

func (r *StoreRepository) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	b, ok := r.bookings.Find(ctx, func(b Booking) bool { return b.ID == id })
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (r *StoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	return r.bookings.Filter(ctx, func(b Booking) bool { return b.UserID == userID }), nil
}

func (r *StoreRepository) ListAll(ctx context.Context) ([]Booking, error) {
	return r.bookings.Load(ctx), nil
}

func (r *StoreRepository) ListActive(ctx context.Context, clinicID, specialtyID int) ([]Booking, error) {
	return r.bookings.Filter(ctx, func(b Booking) bool {
		return b.Active() && b.ClinicID == clinicID && b.SpecialtyID == specialtyID
	}), nil
}

func (r *StoreRepository) Insert(ctx context.Context, b Booking) error {
	return r.bookings.Append(ctx, b)
}

func (r *StoreRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (Booking, error) {
	updated, err := r.bookings.Update(ctx,
		func(b Booking) bool { return b.ID == id },
		func(b *Booking) error {
			if b.Status != from {
				return ErrStatusChanged
			}
			b.Status = to
			b.UpdatedAt = r.now().UTC()
			return nil
		})
	if errors.Is(err, store.ErrRecordNotFound) {
		return Booking{}, ErrBookingNotFound
	}
	return updated, err
}

func (r *StoreRepository) FindConfirmedBefore(ctx context.Context, date string) ([]Booking, error) {
	// ISO dates order lexically
	return r.bookings.Filter(ctx, func(b Booking) bool {
		return b.Status == StatusConfirmed && b.Date < date
	}), nil
}
