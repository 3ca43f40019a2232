package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/saude-connect/internal/config"
	"github.com/hackgods/saude-connect/internal/lock"
)

func testConfig() config.Config {
	return config.Config{
		StoreBackend:   config.BackendMemory,
		LockTTL:        time.Second,
		LockWait:       time.Second,
		HorizonDays:    30,
		Location:       time.UTC,
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
		AdminJWTSecret: "secret",
		AdminTokenTTL:  time.Hour,
	}
}

func TestNewMemoryBackend(t *testing.T) {
	a, err := New(context.Background(), testConfig(), nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "memory", a.Backend.Name())
	assert.Nil(t, a.Redis)
	assert.IsType(t, &lock.LocalLocker{}, a.Locker)

	ctx := context.Background()
	res, err := a.Sessions.Login(ctx, "11144477735", "1990-01-01")
	require.NoError(t, err)
	assert.False(t, res.UserExists)
	assert.Len(t, a.Refs.ListCities(ctx), 3)
}

func TestNewRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.StoreBackend = config.BackendRedis
	cfg.RedisAddr = mr.Addr()

	a, err := New(context.Background(), cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "redis", a.Backend.Name())
	require.NotNil(t, a.Redis)

	ctx := context.Background()
	_, err = a.Sessions.Login(ctx, "11144477735", "1990-01-01")
	require.NoError(t, err)
	assert.True(t, mr.Exists("saude:collection:users"))
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg, nil, prometheus.NewRegistry())
	assert.Error(t, err)
}
