// Package app builds the services shared by every executable from config.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/saude-connect/internal/admin"
	"github.com/hackgods/saude-connect/internal/appointment"
	"github.com/hackgods/saude-connect/internal/availability"
	"github.com/hackgods/saude-connect/internal/config"
	"github.com/hackgods/saude-connect/internal/db"
	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/logging"
	"github.com/hackgods/saude-connect/internal/metrics"
	"github.com/hackgods/saude-connect/internal/patient"
	redisclient "github.com/hackgods/saude-connect/internal/redis"
	"github.com/hackgods/saude-connect/internal/refdata"
	"github.com/hackgods/saude-connect/internal/session"
	"github.com/hackgods/saude-connect/internal/store"
)

// App holds the wired components. Close releases the connections it opened.
type App struct {
	Config  config.Config
	Logger  *zap.Logger
	Metrics *metrics.Collector

	Backend store.Backend
	Redis   *redis.Client // nil unless configured
	Locker  lock.Locker

	Refs       *refdata.Provider
	Users      *patient.Service
	Inventory  *availability.Inventory
	Calculator *availability.Calculator
	Bookings   *appointment.Service
	Sessions   *session.Service
	Admin      *admin.Authenticator

	closers []func()
}

// New connects the configured backends and builds every service. reg may be
// nil, in which case the default Prometheus registry is used.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logging.OrNop(logger),
		Metrics: metrics.NewCollector(reg),
	}

	if cfg.UsesRedis() {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		a.Logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.PostgresMaxConn, a.Logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.Backend = store.NewPgBackend(pool)
	case config.BackendRedis:
		if a.Redis == nil {
			a.Close()
			return nil, fmt.Errorf("store backend %q requires a redis address", cfg.StoreBackend)
		}
		a.Backend = store.NewRedisBackend(a.Redis)
	default:
		a.Backend = store.NewMemoryBackend()
	}

	if a.Redis != nil {
		a.Locker = redisclient.NewRedisLocker(a.Redis, cfg.LockTTL, cfg.LockWait, a.Metrics)
	} else {
		if cfg.StoreBackend != config.BackendMemory {
			a.Logger.Warn("no redis configured, locks only cover this process", zap.String("backend", cfg.StoreBackend))
		}
		a.Locker = lock.NewLocalLocker(cfg.LockWait)
	}

	a.wire()
	a.Logger.Info("record store ready", zap.String("backend", a.Backend.Name()))
	return a, nil
}

func (a *App) wire() {
	log := a.Logger

	a.Refs = refdata.NewProvider(
		store.NewCollection[refdata.City](a.Backend, store.CollectionReference, log), a.Locker, log)
	a.Users = patient.NewService(
		store.NewCollection[patient.User](a.Backend, store.CollectionUsers, log), a.Locker, log)
	a.Inventory = availability.NewInventory(
		store.NewCollection[availability.SlotInventory](a.Backend, store.CollectionSlotInventory, log), a.Refs, a.Locker, log)

	repo := appointment.NewStoreRepository(
		store.NewCollection[appointment.Booking](a.Backend, store.CollectionBookings, log))

	a.Calculator = availability.NewCalculator(a.Refs, appointment.Reservations(repo), a.Inventory,
		availability.WithHorizon(a.Config.HorizonDays),
		availability.WithLocation(a.Config.Location),
	)
	a.Bookings = appointment.NewService(repo, a.Users, a.Refs, a.Calculator, a.Locker,
		appointment.WithLogger(log),
		appointment.WithMetrics(a.Metrics),
	)
	a.Sessions = session.NewService(a.Users, a.Bookings, a.Metrics, log)
	a.Admin = admin.NewAuthenticator(a.Config.AdminUsername, a.Config.AdminPassword, a.Config.AdminJWTSecret, a.Config.AdminTokenTTL)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
