package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/availability"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking is a reservation of one time slot. The city, clinic, specialty
// and doctor names are a snapshot taken at creation.
type Booking struct {
	ID            uuid.UUID         `json:"id"`
	UserID        uuid.UUID         `json:"user_id"`
	CityID        int               `json:"city_id"`
	ClinicID      int               `json:"ubs_id"`
	SpecialtyID   int               `json:"service_id"`
	CityName      string            `json:"city_name"`
	ClinicName    string            `json:"ubs_name"`
	ClinicAddress string            `json:"ubs_address"`
	SpecialtyName string            `json:"service_name"`
	DoctorName    string            `json:"doctor_name"`
	Date          string            `json:"date"`
	Time          string            `json:"time"`
	Turn          availability.Turn `json:"turn"`
	Notes         string            `json:"notes"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Active reports whether the booking still holds its slot.
func (b Booking) Active() bool {
	return b.Status != StatusCancelled
}

type CreateRequest struct {
	UserID      uuid.UUID         `json:"user_id" validate:"required"`
	CityID      int               `json:"city_id" validate:"gt=0"`
	ClinicID    int               `json:"ubs_id" validate:"gt=0"`
	SpecialtyID int               `json:"service_id" validate:"gt=0"`
	Doctor      string            `json:"doctor" validate:"required"`
	Date        string            `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string            `json:"time" validate:"required"`
	Turn        availability.Turn `json:"turn" validate:"required,oneof=morning afternoon"`
	Notes       string            `json:"notes" validate:"max=500"`
}

const unnamedUser = "Nome não informado"

// AdminBooking is a booking joined with the identity of its owner.
type AdminBooking struct {
	Booking
	UserName       string `json:"user_name"`
	UserNationalID string `json:"user_national_id"`
	UserPhone      string `json:"user_phone"`
}

type Stats struct {
	TotalBookings int            `json:"total_bookings"`
	TotalUsers    int            `json:"total_users"`
	Today         int            `json:"today"`
	ByStatus      map[Status]int `json:"by_status"`
}
