package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/apperr"
)

var (
	ErrInvalidNationalID = apperr.New(apperr.ErrValidation, "invalid national ID")
	ErrInvalidBirthDate  = apperr.New(apperr.ErrValidation, "birth date must be a past date formatted as YYYY-MM-DD")
	ErrUserNotFound      = apperr.New(apperr.ErrNotFound, "user not found")
)

// User is a patient identified by national ID and birth date. Profile
// fields start blank and are filled in through UpdateProfile.
type User struct {
	ID         uuid.UUID `json:"id"`
	NationalID string    `json:"national_id"`
	BirthDate  string    `json:"birth_date"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	HealthCard string    `json:"health_card"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProfileUpdate carries the fields to merge. Nil fields are left untouched.
type ProfileUpdate struct {
	FullName   *string
	Phone      *string
	HealthCard *string
	Email      *string
}

func (u ProfileUpdate) apply(user *User) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = trim(*v)
		}
	}
	set(&user.FullName, u.FullName)
	set(&user.Phone, u.Phone)
	set(&user.HealthCard, u.HealthCard)
	set(&user.Email, u.Email)
}
