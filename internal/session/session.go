// Package session composes patient identity and booking history into the
// result a login screen needs.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/metrics"
	"github.com/hackgods/saude-connect/internal/patient"
)

type Authenticator interface {
	Authenticate(ctx context.Context, nationalID, birthDate string) (patient.User, bool, error)
}

type BookingLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]appointment.Booking, error)
}

// LoginResult tells the caller whether to continue to the dashboard
// (existing user with bookings) or straight into booking.
type LoginResult struct {
	UserExists  bool                  `json:"user_exists"`
	HasBookings bool                  `json:"has_bookings"`
	User        patient.User          `json:"user"`
	Bookings    []appointment.Booking `json:"bookings"`
}

type Service struct {
	users    Authenticator
	bookings BookingLister
	metrics  *metrics.Collector
	logger   *zap.Logger
}

func NewService(users Authenticator, bookings BookingLister, m *metrics.Collector, logger *zap.Logger) *Service {
	return &Service{users: users, bookings: bookings, metrics: m, logger: logging.OrNop(logger)}
}

func (s *Service) Login(ctx context.Context, nationalID, birthDate string) (LoginResult, error) {
	user, created, err := s.users.Authenticate(ctx, nationalID, birthDate)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			s.metrics.ObserveLogin("invalid")
		} else {
			s.metrics.ObserveLogin("error")
		}
		return LoginResult{}, err
	}

	if created {
		s.metrics.ObserveLogin("new_user")
		return LoginResult{User: user, Bookings: []appointment.Booking{}}, nil
	}

	bookings, err := s.bookings.ListByUser(ctx, user.ID)
	if err != nil {
		s.metrics.ObserveLogin("error")
		return LoginResult{}, err
	}
	s.metrics.ObserveLogin("returning")
	s.logger.Debug("user logged in", zap.String("user_id", user.ID.String()), zap.Int("bookings", len(bookings)))

	return LoginResult{
		UserExists:  true,
		HasBookings: len(bookings) > 0,
		User:        user,
		Bookings:    bookings,
	}, nil
}
