package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/patient"
	"github.com/hackgods/saude-connect/internal/refdata"
)

type SimConfig struct {
	APIBaseURL  string
	Duration    time.Duration
	Workers     int
	Patients    int
	BookRatio   float64
	CancelRatio float64
	ReadRatio   float64
}

// choice is one bookable clinic, specialty and doctor.
type choice struct {
	CityID      int
	ClinicID    int
	SpecialtyID int
	Doctor      string
}

type slot struct {
	date, clock string
	turn        availability.Turn
}

type DataPool struct {
	Users   []string
	Choices []choice

	mu       sync.Mutex
	bookings []string
}

func (dp *DataPool) AddBooking(id string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.bookings = append(dp.bookings, id)
}

// TakeBooking removes and returns a random booking id.
func (dp *DataPool) TakeBooking(f *gofakeit.Faker) (string, bool) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	if len(dp.bookings) == 0 {
		return "", false
	}
	i := f.Number(0, len(dp.bookings)-1)
	id := dp.bookings[i]
	dp.bookings = slices.Delete(dp.bookings, i, i+1)
	return id, true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err == nil && status < http.StatusBadRequest:
		atomic.AddInt64(&om.Success, 1)
	case err == nil && status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, lo, hi, p50, p95 time.Duration) {
	om.mu.Lock()
	latencies := slices.Clone(om.Latencies)
	om.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	n := len(latencies)
	return sum / time.Duration(n), latencies[0], latencies[n-1], latencies[n*50/100], latencies[min(n*95/100, n-1)]
}

type Metrics struct {
	Login     OperationMetrics
	Dates     OperationMetrics
	Booking   OperationMetrics
	Cancel    OperationMetrics
	ListByUsr OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	logger  *zap.Logger
}

func main() {
	_ = godotenv.Load()

	logger, err := logging.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "console"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	logger.Info("simulator starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Int("patients", cfg.Patients),
	)

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := sim.Prepare(ctx); err != nil {
		logger.Fatal("prepare data pool", zap.Error(err))
	}
	logger.Info("data pool ready", zap.Int("users", len(sim.pool.Users)), zap.Int("choices", len(sim.pool.Choices)))

	sim.Run()
	sim.PrintReport()
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:  strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:    getDuration("SIM_DURATION", 30*time.Second),
		Workers:     getInt("SIM_WORKERS", 10),
		Patients:    getInt("SIM_PATIENTS", 200),
		BookRatio:   getFloat("SIM_BOOK_RATIO", 0.5),
		CancelRatio: getFloat("SIM_CANCEL_RATIO", 0.2),
		ReadRatio:   getFloat("SIM_READ_RATIO", 0.3),
	}

	total := cfg.BookRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}
	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return errors.New("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return errors.New("SIM_DURATION must be > 0")
	}
	if cfg.Patients <= 0 {
		return errors.New("SIM_PATIENTS must be > 0")
	}
	return nil
}

// Prepare logs in the fake patients and walks the reference tree through
// the public endpoints.
func (s *Simulator) Prepare(ctx context.Context) error {
	f := gofakeit.New(0)
	for len(s.pool.Users) < s.config.Patients {
		id, err := patient.CompleteNationalID(f.DigitN(9))
		if err != nil {
			continue
		}
		dob := f.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))

		var out struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
		}
		status, err := s.do(ctx, &s.metrics.Login, http.MethodPost, "/api/auth/login",
			map[string]string{"national_id": id, "birth_date": dob.Format("2006-01-02")}, &out)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("login: status %d", status)
		}
		s.pool.Users = append(s.pool.Users, out.User.ID)
	}

	var cities struct {
		Cities []refdata.CitySummary `json:"cities"`
	}
	if _, err := s.do(ctx, nil, http.MethodGet, "/api/appointments/cities", nil, &cities); err != nil {
		return fmt.Errorf("cities: %w", err)
	}
	for _, city := range cities.Cities {
		var clinics struct {
			Clinics []refdata.ClinicSummary `json:"ubs"`
		}
		if _, err := s.do(ctx, nil, http.MethodGet, fmt.Sprintf("/api/appointments/ubs/%d", city.ID), nil, &clinics); err != nil {
			return fmt.Errorf("clinics of city %d: %w", city.ID, err)
		}
		for _, clinic := range clinics.Clinics {
			var specs struct {
				Specialties []refdata.SpecialtySummary `json:"services"`
			}
			if _, err := s.do(ctx, nil, http.MethodGet, fmt.Sprintf("/api/appointments/services/%d", clinic.ID), nil, &specs); err != nil {
				return fmt.Errorf("specialties of clinic %d: %w", clinic.ID, err)
			}
			for _, spec := range specs.Specialties {
				var doctors struct {
					Doctors []string `json:"doctors"`
				}
				path := fmt.Sprintf("/api/appointments/doctors/%d/%d", clinic.ID, spec.ID)
				if _, err := s.do(ctx, nil, http.MethodGet, path, nil, &doctors); err != nil {
					return fmt.Errorf("doctors: %w", err)
				}
				for _, d := range doctors.Doctors {
					s.pool.Choices = append(s.pool.Choices, choice{city.ID, clinic.ID, spec.ID, d})
				}
			}
		}
	}
	if len(s.pool.Choices) == 0 {
		return errors.New("reference tree has no bookable doctor")
	}
	return nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.logger.Info("simulation running")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx)
		}()
	}
	wg.Wait()

	s.logger.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context) {
	f := gofakeit.New(0)
	for ctx.Err() == nil {
		r := f.Float64()
		switch {
		case r < s.config.BookRatio:
			s.doBooking(ctx, f)
		case r < s.config.BookRatio+s.config.CancelRatio:
			s.doCancel(ctx, f)
		default:
			s.doListByUser(ctx, f)
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, f *gofakeit.Faker) {
	user := s.pool.Users[f.Number(0, len(s.pool.Users)-1)]
	c := s.pool.Choices[f.Number(0, len(s.pool.Choices)-1)]

	var dates struct {
		Dates []availability.DateAvailability `json:"dates"`
	}
	if _, err := s.do(ctx, &s.metrics.Dates, http.MethodPost, "/api/appointments/available-dates",
		map[string]any{"ubs_id": c.ClinicID, "service_id": c.SpecialtyID, "doctor": c.Doctor}, &dates); err != nil {
		return
	}

	var open []slot
	for _, d := range dates.Dates {
		for _, turn := range []availability.Turn{availability.TurnMorning, availability.TurnAfternoon} {
			for _, clock := range d.Turns.Get(turn).Times {
				open = append(open, slot{d.Date, clock, turn})
			}
		}
	}
	if len(open) == 0 {
		return
	}
	pick := open[f.Number(0, len(open)-1)]

	var out struct {
		Appointment struct {
			ID string `json:"id"`
		} `json:"appointment"`
	}
	status, err := s.do(ctx, &s.metrics.Booking, http.MethodPost, "/api/appointments/create", map[string]any{
		"user_id":    user,
		"city_id":    c.CityID,
		"ubs_id":     c.ClinicID,
		"service_id": c.SpecialtyID,
		"doctor":     c.Doctor,
		"date":       pick.date,
		"time":       pick.clock,
		"turn":       pick.turn,
	}, &out)
	if err == nil && status == http.StatusCreated {
		s.pool.AddBooking(out.Appointment.ID)
	}
}

func (s *Simulator) doCancel(ctx context.Context, f *gofakeit.Faker) {
	id, ok := s.pool.TakeBooking(f)
	if !ok {
		return
	}
	_, _ = s.do(ctx, &s.metrics.Cancel, http.MethodPut, "/api/appointments/cancel/"+id, nil, nil)
}

func (s *Simulator) doListByUser(ctx context.Context, f *gofakeit.Faker) {
	user := s.pool.Users[f.Number(0, len(s.pool.Users)-1)]
	_, _ = s.do(ctx, &s.metrics.ListByUsr, http.MethodGet, "/api/appointments/user/"+user, nil, nil)
}

// do sends one request and decodes a successful response into out. A non-2xx
// status is returned without an error so callers can count conflicts.
func (s *Simulator) do(ctx context.Context, om *OperationMetrics, method, path string, body, out any) (int, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		if om != nil && ctx.Err() == nil {
			om.Record(latency, 0, err)
		}
		return 0, err
	}
	defer resp.Body.Close()

	if om != nil {
		om.Record(latency, resp.StatusCode, nil)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if om == nil {
			return resp.StatusCode, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Login", &s.metrics.Login)
	printOperationReport("Available dates", &s.metrics.Dates)
	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("List by user", &s.metrics.ListByUsr)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, lo, hi, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), lo.Round(time.Millisecond), hi.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
