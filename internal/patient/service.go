package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/store"
)

const usersLockKey = "collection:" + store.CollectionUsers

type Service struct {
	users  *store.Collection[User]
	locker lock.Locker
	logger *zap.Logger
	now    func() time.Time
}

func NewService(users *store.Collection[User], locker lock.Locker, logger *zap.Logger) *Service {
	if users == nil {
		panic("patient: collection required")
	}
	if locker == nil {
		panic("patient: locker required")
	}
	return &Service{users: users, locker: locker, logger: logging.OrNop(logger), now: time.Now}
}

// Authenticate finds the user registered under (nationalID, birthDate),
// creating one with a blank profile on the first login. created reports
// whether the record was made by this call.
func (s *Service) Authenticate(ctx context.Context, nationalID, birthDate string) (User, bool, error) {
	id, err := ValidateNationalID(nationalID)
	if err != nil {
		return User{}, false, err
	}
	dob, err := validateBirthDate(birthDate, s.now())
	if err != nil {
		return User{}, false, err
	}

	match := func(u User) bool { return u.NationalID == id && u.BirthDate == dob }
	if u, ok := s.users.Find(ctx, match); ok {
		return u, false, nil
	}

	var (
		user    User
		created bool
	)
	err = s.locker.WithLock(ctx, usersLockKey, func(ctx context.Context) error {
		records, err := s.users.LoadForUpdate(ctx)
		if err != nil {
			return err
		}
		for _, u := range records {
			if match(u) {
				user = u
				return nil
			}
		}
		now := s.now().UTC()
		user = User{
			ID:         uuid.New(),
			NationalID: id,
			BirthDate:  dob,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created = true
		return s.users.Save(ctx, append(records, user))
	})
	if err != nil {
		return User{}, false, err
	}

	if created {
		s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	}
	return user, created, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (User, error) {
	var user User
	err := s.locker.WithLock(ctx, usersLockKey, func(ctx context.Context) error {
		var err error
		user, err = s.users.Update(ctx,
			func(u User) bool { return u.ID == userID },
			func(u *User) error {
				upd.apply(u)
				u.UpdatedAt = s.now().UTC()
				return nil
			})
		return err
	})
	if errors.Is(err, store.ErrRecordNotFound) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}

	s.logger.Info("user profile updated", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (User, error) {
	u, ok := s.users.Find(ctx, func(u User) bool { return u.ID == userID })
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// List returns every user in registration order.
func (s *Service) List(ctx context.Context) []User {
	return s.users.Load(ctx)
}
