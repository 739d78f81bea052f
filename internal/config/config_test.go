package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "voicecal:", cfg.Storage.RedisPrefix)
	assert.Equal(t, 2.0, cfg.RateLimit.PerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "prometheus", cfg.Telemetry.MetricsExporter)
	assert.Equal(t, "none", cfg.Telemetry.TracingExporter)
	assert.Equal(t, 0.1, cfg.Telemetry.SamplingRate)
	assert.True(t, cfg.Telemetry.AuditEnabled)
	assert.False(t, cfg.Telemetry.AuditIncludePII)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("VOICECAL_HTTP_ADDR", ":8443")
	t.Setenv("VOICECAL_STORAGE_TYPE", "sqlite")
	t.Setenv("VOICECAL_STORAGE_SQLITE_PATH", "/var/lib/voicecal/prefs.db")
	t.Setenv("VOICECAL_RATE_LIMIT_BURST", "3")
	t.Setenv("VOICECAL_LOG_DEBUG", "true")
	t.Setenv("VOICECAL_TELEMETRY_TRACING_EXPORTER", "otlp")
	t.Setenv("VOICECAL_TELEMETRY_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8443", cfg.HTTP.Addr)
	assert.Equal(t, "sqlite", cfg.Storage.Type)
	assert.Equal(t, "/var/lib/voicecal/prefs.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "otlp", cfg.Telemetry.TracingExporter)
	assert.Equal(t, "collector:4318", cfg.Telemetry.OTLPEndpoint)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voicecal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
storage:
  type: redis
  redis_addr: "redis:6379"
  redis_db: 2
metrics:
  enabled: false
`), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Storage.RedisDB)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load(New(), "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no http addr", func(c *Config) { c.HTTP.Addr = "" }, "http.addr is required"},
		{"same addr", func(c *Config) { c.Metrics.Addr = c.HTTP.Addr }, "must differ"},
		{"metrics disabled same addr", func(c *Config) { c.Metrics.Enabled = false; c.Metrics.Addr = c.HTTP.Addr }, ""},
		{"unknown storage", func(c *Config) { c.Storage.Type = "etcd" }, `got "etcd"`},
		{"sqlite without path", func(c *Config) { c.Storage.Type = "sqlite"; c.Storage.SQLitePath = "" }, "sqlite_path"},
		{"redis without addr", func(c *Config) { c.Storage.Type = "redis" }, "redis_addr"},
		{"negative rate", func(c *Config) { c.RateLimit.PerSecond = -1 }, "per_second"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "burst"},
		{"rate disabled zero burst", func(c *Config) { c.RateLimit.PerSecond = 0; c.RateLimit.Burst = 0 }, ""},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"sampling rate above one", func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, "sampling_rate"},
		{"metrics server without prometheus", func(c *Config) { c.Telemetry.MetricsExporter = "otlp" }, "telemetry.metrics_exporter"},
		{"otlp metrics without server", func(c *Config) { c.Telemetry.MetricsExporter = "otlp"; c.Metrics.Enabled = false }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
