package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/config"
	"github.com/teemow/voicecal/internal/store"
)

func TestServeFlagsOverrideConfig(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--addr", ":9000",
		"--storage", "sqlite",
		"--sqlite-path", "/tmp/prefs.db",
		"--rate-limit", "0",
		"--debug",
	}))

	v := config.New()
	require.NoError(t, bindFlags(v, cmd))

	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/tmp/prefs.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 0.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestServeFlagsUnchangedKeepDefaults(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.Flags().Parse(nil))

	v := config.New()
	require.NoError(t, bindFlags(v, cmd))

	cfg, err := config.Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, store.TypeMemory, cfg.Storage.Type)
	assert.Equal(t, store.DefaultRedisPrefix, cfg.Storage.RedisPrefix)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestFlagBindingsCoverEveryFlag(t *testing.T) {
	cmd := newServeCmd()
	for name := range flagBindings {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestStoreConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	got := storeConfig(config.StorageConfig{
		Type:        "redis",
		RedisAddr:   "localhost:6379",
		RedisDB:     2,
		RedisPrefix: "test:",
	}, logger, nil)

	assert.Equal(t, "redis", got.Type)
	assert.Equal(t, "localhost:6379", got.RedisAddr)
	assert.Equal(t, 2, got.RedisDB)
	assert.Equal(t, "test:", got.RedisPrefix)
	assert.Equal(t, logger, got.Logger)
}

func TestCalendarFactory(t *testing.T) {
	factory := newCalendarFactory("http://127.0.0.1:1/", nil)

	_, err := factory(context.Background(), "")
	assert.ErrorIs(t, err, calendar.ErrNoAccessToken)

	cal, err := factory(context.Background(), "token")
	require.NoError(t, err)
	assert.NotNil(t, cal)
}

func TestInstrumentationConfig(t *testing.T) {
	got := instrumentationConfig(config.TelemetryConfig{
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "otlp",
		OTLPEndpoint:    "collector:4318",
		SamplingRate:    0.5,
		AuditEnabled:    true,
		AuditIncludePII: true,
	})

	assert.Equal(t, version, got.ServiceVersion)
	assert.Equal(t, "voicecal", got.ServiceName)
	assert.Equal(t, "otlp", got.TracingExporter)
	assert.Equal(t, "collector:4318", got.OTLPEndpoint)
	assert.Equal(t, 0.5, got.TraceSamplingRate)
	assert.True(t, got.AuditLogging.IncludePII)
	assert.NoError(t, got.Validate())
}
