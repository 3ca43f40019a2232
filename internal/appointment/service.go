package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/metrics"
	"github.com/hackgods/saude-connect/internal/patient"
	"github.com/hackgods/saude-connect/internal/refdata"
	"github.com/hackgods/saude-connect/internal/store"
	"github.com/hackgods/saude-connect/internal/validate"
)

const bookingsLockKey = "collection:" + store.CollectionBookings

var tracer = otel.Tracer("saude.internal.appointment")

var (
	ErrDuplicateBooking        = apperr.New(apperr.ErrConflict, "you already have an active booking for this specialty at this clinic on this date")
	ErrInvalidStatus           = apperr.New(apperr.ErrValidation, "unknown booking status")
	ErrInvalidStatusTransition = apperr.New(apperr.ErrConflict, "invalid status transition")
)

// UserLookup is the identity view the booking manager needs.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (patient.User, error)
	List(ctx context.Context) []patient.User
}

type ReferenceResolver interface {
	Resolve(ctx context.Context, sel refdata.Selection) (refdata.Resolved, error)
}

// SlotChecker re-validates a slot at booking time and supplies the current
// calendar date.
type SlotChecker interface {
	CheckSlot(ctx context.Context, q availability.Query, date string, turn availability.Turn, clock string) error
	Today() time.Time
}

type Service struct {
	repo    Repository
	users   UserLookup
	refs    ReferenceResolver
	slots   SlotChecker
	locker  lock.Locker
	metrics *metrics.Collector
	logger  *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(l) }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, users UserLookup, refs ReferenceResolver, slots SlotChecker, locker lock.Locker, opts ...Option) *Service {
	if repo == nil || users == nil || refs == nil || slots == nil || locker == nil {
		panic("appointment: service dependencies required")
	}
	s := &Service{
		repo:   repo,
		users:  users,
		refs:   refs,
		slots:  slots,
		locker: locker,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create books a slot for a user. The slot check, the duplicate check and
// the insert run under the bookings lock so two requests cannot take the
// same capacity.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Booking, error) {
	ctx, span := tracer.Start(ctx, "appointment.create", trace.WithAttributes(
		attribute.Int("saude.ubs_id", req.ClinicID),
		attribute.Int("saude.service_id", req.SpecialtyID),
		attribute.String("saude.date", req.Date),
	))
	defer span.End()

	b, err := s.create(ctx, req)
	s.metrics.ObserveBooking(outcome(err))
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("booking rejected",
			zap.String("user_id", req.UserID.String()),
			zap.String("date", req.Date),
			zap.String("time", req.Time),
			zap.Error(err),
		)
		return Booking{}, err
	}

	span.SetAttributes(attribute.String("saude.booking_id", b.ID.String()))
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("user_id", b.UserID.String()),
		zap.Int("ubs_id", b.ClinicID),
		zap.Int("service_id", b.SpecialtyID),
		zap.String("date", b.Date),
		zap.String("time", b.Time),
	)
	return b, nil
}

func (s *Service) create(ctx context.Context, req CreateRequest) (Booking, error) {
	if err := validate.Struct(req); err != nil {
		return Booking{}, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return Booking{}, err
	}

	ref, err := s.refs.Resolve(ctx, refdata.Selection{
		CityID:      req.CityID,
		ClinicID:    req.ClinicID,
		SpecialtyID: req.SpecialtyID,
		Doctor:      req.Doctor,
	})
	if err != nil {
		return Booking{}, err
	}

	q := availability.Query{ClinicID: req.ClinicID, SpecialtyID: req.SpecialtyID, Doctor: req.Doctor}

	var created Booking
	err = s.locker.WithLock(ctx, bookingsLockKey, func(ctx context.Context) error {
		if err := s.slots.CheckSlot(ctx, q, req.Date, req.Turn, req.Time); err != nil {
			return err
		}

		existing, err := s.repo.ListByUser(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("list user bookings: %w", err)
		}
		for _, b := range existing {
			if b.Active() && b.ClinicID == req.ClinicID && b.SpecialtyID == req.SpecialtyID && b.Date == req.Date {
				return ErrDuplicateBooking
			}
		}

		now := s.now().UTC()
		created = Booking{
			ID:            uuid.New(),
			UserID:        req.UserID,
			CityID:        ref.CityID,
			ClinicID:      ref.ClinicID,
			SpecialtyID:   ref.SpecialtyID,
			CityName:      ref.CityName,
			ClinicName:    ref.ClinicName,
			ClinicAddress: ref.ClinicAddress,
			SpecialtyName: ref.SpecialtyName,
			DoctorName:    ref.DoctorName,
			Date:          req.Date,
			Time:          req.Time,
			Turn:          req.Turn,
			Notes:         req.Notes,
			Status:        StatusScheduled,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.repo.Insert(ctx, created)
	})
	if err != nil {
		return Booking{}, err
	}
	return created, nil
}

// Cancel frees the slot of a booking. Cancelling twice succeeds.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Booking, error) {
	return s.SetStatus(ctx, id, StatusCancelled)
}

// SetStatus moves a booking along the transition table. Setting the
// current status again returns the booking unchanged.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (Booking, error) {
	ctx, span := tracer.Start(ctx, "appointment.set_status", trace.WithAttributes(
		attribute.String("saude.booking_id", id.String()),
		attribute.String("saude.status", string(status)),
	))
	defer span.End()

	if !status.IsValid() {
		s.metrics.ObserveTransition(string(status), "invalid")
		return Booking{}, ErrInvalidStatus
	}

	var (
		updated Booking
		from    Status
	)
	err := s.locker.WithLock(ctx, bookingsLockKey, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from = current.Status
		if current.Status == status {
			updated = current
			return nil
		}
		if !current.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, status)
		}
		updated, err = s.repo.UpdateStatus(ctx, id, current.Status, status)
		return err
	})
	s.metrics.ObserveTransition(string(status), outcome(err))
	if err != nil {
		span.RecordError(err)
		return Booking{}, err
	}

	if from != status {
		s.logger.Info("booking status changed",
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(status)),
		)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByUser returns the bookings of a user in creation order.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	return bookings, nil
}

// ListAll returns every booking joined with its owner, in creation order.
func (s *Service) ListAll(ctx context.Context) ([]AdminBooking, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	users := make(map[uuid.UUID]patient.User)
	for _, u := range s.users.List(ctx) {
		users[u.ID] = u
	}

	out := make([]AdminBooking, 0, len(bookings))
	for _, b := range bookings {
		u := users[b.UserID]
		name := u.FullName
		if name == "" {
			name = unnamedUser
		}
		out = append(out, AdminBooking{
			Booking:        b,
			UserName:       name,
			UserNationalID: u.NationalID,
			UserPhone:      u.Phone,
		})
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list bookings: %w", err)
	}

	today := s.slots.Today().Format(availability.DateLayout)
	st := Stats{
		TotalBookings: len(bookings),
		TotalUsers:    len(s.users.List(ctx)),
		ByStatus:      make(map[Status]int, len(Statuses)),
	}
	for _, status := range Statuses {
		st.ByStatus[status] = 0
	}
	for _, b := range bookings {
		st.ByStatus[b.Status]++
		if b.Date == today {
			st.Today++
		}
	}
	return st, nil
}

// CompletePastBookings marks confirmed bookings dated before today as
// completed. It is meant to be called periodically by the worker.
func (s *Service) CompletePastBookings(ctx context.Context) (int, error) {
	today := s.slots.Today().Format(availability.DateLayout)
	candidates, err := s.repo.FindConfirmedBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("find past confirmed bookings: %w", err)
	}

	completed := 0
	for _, b := range candidates {
		err := s.locker.WithLock(ctx, bookingsLockKey, func(ctx context.Context) error {
			_, err := s.repo.UpdateStatus(ctx, b.ID, StatusConfirmed, StatusCompleted)
			return err
		})
		if errors.Is(err, ErrStatusChanged) {
			continue
		}
		if err != nil {
			s.logger.Error("failed to complete booking", zap.String("booking_id", b.ID.String()), zap.Error(err))
			continue
		}
		s.metrics.ObserveTransition(string(StatusCompleted), "ok")
		s.logger.Info("booking completed", zap.String("booking_id", b.ID.String()), zap.String("date", b.Date))
		completed++
	}
	return completed, nil
}

// Reservations adapts repo to availability.ReservationSource. The
// calculator is built before the service, so it reads the repository
// directly.
func Reservations(repo Repository) availability.ReservationSource {
	return reservationSource{repo: repo}
}

type reservationSource struct {
	repo Repository
}

func (r reservationSource) Reservations(ctx context.Context, clinicID, specialtyID int) ([]availability.Reservation, error) {
	active, err := r.repo.ListActive(ctx, clinicID, specialtyID)
	if err != nil {
		return nil, err
	}
	out := make([]availability.Reservation, 0, len(active))
	for _, b := range active {
		out = append(out, availability.Reservation{Date: b.Date, Time: b.Time, Turn: b.Turn, Doctor: b.DoctorName})
	}
	return out, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrValidation):
		return "invalid"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
