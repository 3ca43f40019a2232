package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/app"
	"github.com/hackgods/saude-connect/internal/apperr"
	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/config"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/patient"
	"github.com/hackgods/saude-connect/internal/refdata"
)

// seed fills the configured store with fake patients, each holding one
// booking at a random clinic. SEED_USERS controls how many.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	count := 50
	if v, err := strconv.Atoi(os.Getenv("SEED_USERS")); err == nil && v > 0 {
		count = v
	}
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("seeding the memory backend, data is discarded on exit")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close()

	s := seeder{app: a, faker: gofakeit.New(0)}
	created, skipped := 0, 0
	for i := 0; i < count; i++ {
		if err := s.patientWithBooking(ctx); err != nil {
			if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrNotFound) {
				skipped++
				continue
			}
			logger.Fatal("seed failed", zap.Int("done", created), zap.Error(err))
		}
		created++
		if created%25 == 0 {
			logger.Info("seed progress", zap.Int("done", created), zap.Int("total", count))
		}
	}
	logger.Info("seed complete", zap.Int("created", created), zap.Int("skipped", skipped))
}

var errNoSlot = apperr.New(apperr.ErrConflict, "no open slot for the chosen selection")

type seeder struct {
	app   *app.App
	faker *gofakeit.Faker
}

func (s seeder) patientWithBooking(ctx context.Context) error {
	nationalID, err := s.nationalID()
	if err != nil {
		return err
	}
	dob := s.faker.DateRange(time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC))

	res, err := s.app.Sessions.Login(ctx, nationalID, dob.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	name, phone, email := s.faker.Name(), s.faker.Phone(), s.faker.Email()
	if _, err := s.app.Users.UpdateProfile(ctx, res.User.ID, patient.ProfileUpdate{
		FullName: &name,
		Phone:    &phone,
		Email:    &email,
	}); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	sel, ok := s.pickSelection(ctx)
	if !ok {
		return errNoSlot
	}
	dates, err := s.app.Calculator.AvailableDates(ctx, availability.Query{
		ClinicID:    sel.ClinicID,
		SpecialtyID: sel.SpecialtyID,
		Doctor:      sel.Doctor,
	})
	if err != nil {
		return fmt.Errorf("available dates: %w", err)
	}

	date, turn, clock, ok := s.pickSlot(dates)
	if !ok {
		return errNoSlot
	}

	_, err = s.app.Bookings.Create(ctx, appointment.CreateRequest{
		UserID:      res.User.ID,
		CityID:      sel.CityID,
		ClinicID:    sel.ClinicID,
		SpecialtyID: sel.SpecialtyID,
		Doctor:      sel.Doctor,
		Date:        date,
		Time:        clock,
		Turn:        turn,
	})
	return err
}

// nationalID draws random CPF bases until one completes to a valid number.
func (s seeder) nationalID() (string, error) {
	var err error
	for range 10 {
		var id string
		if id, err = patient.CompleteNationalID(s.faker.DigitN(9)); err == nil {
			return id, nil
		}
	}
	return "", err
}

// pickSelection picks a random bookable chain from the reference tree.
func (s seeder) pickSelection(ctx context.Context) (refdata.Selection, bool) {
	var choices []refdata.Selection
	for _, city := range s.app.Refs.Tree(ctx) {
		for _, clinic := range city.Clinics {
			for _, spec := range clinic.Specialties {
				for _, doctor := range spec.Doctors {
					choices = append(choices, refdata.Selection{
						CityID:      city.ID,
						ClinicID:    clinic.ID,
						SpecialtyID: spec.ID,
						Doctor:      doctor,
					})
				}
			}
		}
	}
	if len(choices) == 0 {
		return refdata.Selection{}, false
	}
	return choices[s.faker.Number(0, len(choices)-1)], true
}

func (s seeder) pickSlot(dates []availability.DateAvailability) (string, availability.Turn, string, bool) {
	if len(dates) == 0 {
		return "", "", "", false
	}
	start := s.faker.Number(0, len(dates)-1)
	for i := range dates {
		d := dates[(start+i)%len(dates)]
		for _, turn := range []availability.Turn{availability.TurnMorning, availability.TurnAfternoon} {
			t := d.Turns.Get(turn)
			if t.Open && len(t.Times) > 0 {
				return d.Date, turn, t.Times[s.faker.Number(0, len(t.Times)-1)], true
			}
		}
	}
	return "", "", "", false
}
