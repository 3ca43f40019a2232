package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/apperr"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate       = apperr.New(apperr.ErrValidation, "date must be formatted as YYYY-MM-DD")
	ErrOutsideHorizon    = apperr.New(apperr.ErrValidation, "date is outside the booking window")
	ErrWeekend           = apperr.New(apperr.ErrValidation, "bookings are only offered on weekdays")
	ErrInvalidTurn       = apperr.New(apperr.ErrValidation, "turn must be morning or afternoon")
	ErrUnknownTime       = apperr.New(apperr.ErrValidation, "time is not offered in this turn")
	ErrInvalidTotal      = apperr.New(apperr.ErrValidation, "slot total must be positive")
	ErrSlotFull          = apperr.New(apperr.ErrConflict, "this time is no longer available")
	ErrInventoryExists   = apperr.New(apperr.ErrConflict, "an inventory entry already exists for this clinic, specialty, date and turn")
	ErrInventoryNotFound = apperr.New(apperr.ErrNotFound, "inventory entry not found")
	ErrUnknownDoctor     = apperr.New(apperr.ErrNotFound, "doctor does not attend this clinic and specialty")
)

type Turn string

const (
	TurnMorning   Turn = "morning"
	TurnAfternoon Turn = "afternoon"
)

func (t Turn) IsValid() bool {
	return t == TurnMorning || t == TurnAfternoon
}

// Template lists the bookable clock times of each turn.
type Template struct {
	Morning   []string
	Afternoon []string
}

// DefaultTemplate offers 08:00-11:30 and 14:00-17:30 every 30 minutes.
func DefaultTemplate() Template {
	return Template{
		Morning:   []string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30"},
		Afternoon: []string{"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30"},
	}
}

func (t Template) Times(turn Turn) []string {
	switch turn {
	case TurnMorning:
		return t.Morning
	case TurnAfternoon:
		return t.Afternoon
	default:
		return nil
	}
}

// TurnOf returns the turn a clock time belongs to.
func (t Template) TurnOf(clock string) (Turn, bool) {
	for _, turn := range []Turn{TurnMorning, TurnAfternoon} {
		for _, c := range t.Times(turn) {
			if c == clock {
				return turn, true
			}
		}
	}
	return "", false
}

// Reservation is an active booking occupying a time.
type Reservation struct {
	Date   string
	Time   string
	Turn   Turn
	Doctor string
}

// SlotInventory caps how many bookings a turn accepts on one date.
type SlotInventory struct {
	ID          uuid.UUID `json:"id"`
	ClinicID    int       `json:"ubs_id"`
	SpecialtyID int       `json:"service_id"`
	Date        string    `json:"date"`
	Turn        Turn      `json:"turn"`
	Total       int       `json:"total"`
	CreatedAt   time.Time `json:"created_at"`
}

type TurnAvailability struct {
	Open      bool     `json:"open"`
	Times     []string `json:"times"`
	Total     int      `json:"total"`
	Remaining int      `json:"remaining"`
}

type Turns struct {
	Morning   TurnAvailability `json:"morning"`
	Afternoon TurnAvailability `json:"afternoon"`
}

func (t Turns) Get(turn Turn) TurnAvailability {
	if turn == TurnAfternoon {
		return t.Afternoon
	}
	return t.Morning
}

type DateAvailability struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Turns   Turns  `json:"turns"`
}

// Query selects the clinic and specialty to compute availability for. An
// empty Doctor pools the capacity of every doctor of the pair.
type Query struct {
	ClinicID    int
	SpecialtyID int
	Doctor      string
}
