package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hackgods/saude-connect/internal/app"
	"github.com/hackgods/saude-connect/internal/logging"
)

type RouterConfig struct {
	App      *app.App
	Gatherer prometheus.Gatherer // served on /metrics; nil uses the default registry
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	a := cfg.App
	logger := logging.OrNop(a.Logger)

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger, a.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.Config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	checks := []Check{{Name: a.Backend.Name(), Critical: true, Ping: a.Backend.Ping}}
	if a.Redis != nil && a.Backend.Name() != "redis" {
		checks = append(checks, Check{Name: "redis", Ping: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}})
	}
	health := NewHealthHandler(checks, a.Config.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if a.Config.RateLimitPerSecond > 0 {
			r.Use(httprate.LimitByIP(a.Config.RateLimitPerSecond, time.Second))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", loginHandler(a.Sessions, logger))
			r.Put("/update-user", updateUserHandler(a.Users, logger))
		})
		r.Get("/users/{id}", getUserHandler(a.Users, logger))

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/cities", listCitiesHandler(a.Refs))
			r.Get("/ubs/{cityID}", listClinicsHandler(a.Refs, logger))
			r.Get("/services/{ubsID}", listSpecialtiesHandler(a.Refs, logger))
			r.Get("/doctors/{ubsID}/{serviceID}", listDoctorsHandler(a.Refs, logger))
			r.Post("/selection", selectionHandler(a.Refs, logger))
			r.Post("/available-dates", availableDatesHandler(a.Calculator, logger))
			r.Post("/create", createAppointmentHandler(a.Bookings, logger))
			r.Get("/user/{userID}", listUserAppointmentsHandler(a.Bookings, logger))
			r.Put("/cancel/{id}", cancelAppointmentHandler(a.Bookings, logger))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminLoginHandler(a.Admin, logger))

			r.Group(func(r chi.Router) {
				r.Use(AdminAuth(a.Admin, logger))

				r.Get("/appointments", adminListAppointmentsHandler(a.Bookings, logger))
				r.Put("/appointments/{id}/status", adminSetStatusHandler(a.Bookings, logger))
				r.Get("/stats", adminStatsHandler(a.Bookings, logger))
				r.Get("/cities", adminTreeHandler(a.Refs))
				r.Post("/cities", adminAddCityHandler(a.Refs, logger))
				r.Post("/ubs", adminAddClinicHandler(a.Refs, logger))
				r.Post("/services", adminAddSpecialtyHandler(a.Refs, logger))
				r.Post("/doctors", adminAddDoctorHandler(a.Refs, logger))
				r.Get("/slots", adminListSlotsHandler(a.Inventory))
				r.Post("/slots", adminCreateSlotHandler(a.Inventory, logger))
				r.Delete("/slots/{id}", adminDeleteSlotHandler(a.Inventory, logger))
			})
		})
	})

	return r
}
