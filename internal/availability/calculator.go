package availability

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// ReservationSource lists the active bookings of a clinic/specialty pair.
type ReservationSource interface {
	Reservations(ctx context.Context, clinicID, specialtyID int) ([]Reservation, error)
}

// Calculator derives bookable dates and times from the slot template, the
// reservations already made and the admin inventory caps.
type Calculator struct {
	doctors      DoctorLister
	reservations ReservationSource
	inventory    *Inventory
	template     Template
	horizonDays  int
	loc          *time.Location
	now          func() time.Time
}

type Option func(*Calculator)

func WithClock(now func() time.Time) Option {
	return func(c *Calculator) { c.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(c *Calculator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func WithHorizon(days int) Option {
	return func(c *Calculator) {
		if days > 0 {
			c.horizonDays = days
		}
	}
}

func WithTemplate(t Template) Option {
	return func(c *Calculator) { c.template = t }
}

// NewCalculator builds a calculator with a 30 day horizon, the default
// template and UTC dates unless overridden. inventory may be nil.
func NewCalculator(doctors DoctorLister, reservations ReservationSource, inventory *Inventory, opts ...Option) *Calculator {
	if doctors == nil || reservations == nil {
		panic("availability: doctors and reservations required")
	}
	c := &Calculator{
		doctors:      doctors,
		reservations: reservations,
		inventory:    inventory,
		template:     DefaultTemplate(),
		horizonDays:  30,
		loc:          time.UTC,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today is the current calendar date at midnight in the calculator location.
func (c *Calculator) Today() time.Time {
	n := c.now().In(c.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, c.loc)
}

// AvailableDates walks the horizon starting tomorrow and returns every
// weekday in ascending order. Fully booked turns are reported closed rather
// than the date being dropped.
func (c *Calculator) AvailableDates(ctx context.Context, q Query) ([]DateAvailability, error) {
	p, err := c.plan(ctx, q)
	if err != nil {
		return nil, err
	}

	today := c.Today()
	out := make([]DateAvailability, 0, c.horizonDays)
	for i := 1; i <= c.horizonDays; i++ {
		d := today.AddDate(0, 0, i)
		if isWeekend(d) {
			continue
		}
		out = append(out, p.day(d))
	}
	return out, nil
}

// CheckSlot verifies that clock on date, in turn, can still be booked for q.
func (c *Calculator) CheckSlot(ctx context.Context, q Query, date string, turn Turn, clock string) error {
	d, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return ErrInvalidDate
	}
	if !turn.IsValid() {
		return ErrInvalidTurn
	}
	if !slices.Contains(c.template.Times(turn), clock) {
		return ErrUnknownTime
	}
	if isWeekend(d) {
		return ErrWeekend
	}
	today := c.Today()
	if !d.After(today) || d.After(today.AddDate(0, 0, c.horizonDays)) {
		return ErrOutsideHorizon
	}

	p, err := c.plan(ctx, q)
	if err != nil {
		return err
	}
	if !slices.Contains(p.day(d).Turns.Get(turn).Times, clock) {
		return ErrSlotFull
	}
	return nil
}

type plan struct {
	template Template
	perTime  int
	timeUsed map[string]int
	turnUsed map[string]int
	poolUsed map[string]int
	turnCaps map[string]int
}

func (c *Calculator) plan(ctx context.Context, q Query) (*plan, error) {
	doctors, err := c.doctors.ListDoctors(ctx, q.ClinicID, q.SpecialtyID)
	if err != nil {
		return nil, err
	}

	perTime := len(doctors)
	if q.Doctor != "" {
		if !slices.Contains(doctors, q.Doctor) {
			return nil, fmt.Errorf("doctor %q: %w", q.Doctor, ErrUnknownDoctor)
		}
		perTime = 1
	}

	reservations, err := c.reservations.Reservations(ctx, q.ClinicID, q.SpecialtyID)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}

	p := &plan{
		template: c.template,
		perTime:  perTime,
		timeUsed: make(map[string]int),
		turnUsed: make(map[string]int),
		poolUsed: make(map[string]int),
		turnCaps: make(map[string]int),
	}
	for _, r := range reservations {
		turn := r.Turn
		if !turn.IsValid() {
			turn, _ = c.template.TurnOf(r.Time)
		}
		p.poolUsed[key(r.Date, string(turn))]++
		if q.Doctor != "" && r.Doctor != q.Doctor {
			continue
		}
		p.timeUsed[key(r.Date, r.Time)]++
		p.turnUsed[key(r.Date, string(turn))]++
	}

	if c.inventory != nil {
		for _, e := range c.inventory.ListFor(ctx, q.ClinicID, q.SpecialtyID) {
			p.turnCaps[key(e.Date, string(e.Turn))] = e.Total
		}
	}
	return p, nil
}

func (p *plan) day(d time.Time) DateAvailability {
	date := d.Format(DateLayout)
	return DateAvailability{
		Date:    date,
		Weekday: d.Weekday().String(),
		Turns: Turns{
			Morning:   p.turn(date, TurnMorning),
			Afternoon: p.turn(date, TurnAfternoon),
		},
	}
}

func (p *plan) turn(date string, turn Turn) TurnAvailability {
	clocks := p.template.Times(turn)
	tk := key(date, string(turn))

	total := len(clocks) * p.perTime
	remaining := total - p.turnUsed[tk]
	if limit, ok := p.turnCaps[tk]; ok {
		total = min(total, limit)
		remaining = min(remaining, limit-p.poolUsed[tk])
	}
	remaining = max(remaining, 0)

	open := []string{}
	if remaining > 0 {
		for _, clock := range clocks {
			if p.timeUsed[key(date, clock)] < p.perTime {
				open = append(open, clock)
			}
		}
	}

	return TurnAvailability{
		Open:      len(open) > 0,
		Times:     open,
		Total:     total,
		Remaining: remaining,
	}
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func key(a, b string) string {
	return a + "|" + b
}
