// Package config loads the voicecal server configuration.
//
// Values are resolved by viper in this order: command-line flags bound by the
// caller, VOICECAL_* environment variables (dots become underscores, so
// storage.sqlite_path is VOICECAL_STORAGE_SQLITE_PATH), an optional config
// file, and the defaults set here.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VOICECAL"

// Config is the complete server configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Storage   StorageConfig   `mapstructure:"storage"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// HTTPConfig configures the webhook listener.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MetricsConfig configures the dedicated Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// StorageConfig selects the preference store backend.
type StorageConfig struct {
	Type          string `mapstructure:"type"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
}

// RateLimitConfig bounds requests per platform user.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// CalendarConfig overrides the calendar provider endpoint, mainly for tests
// against a local fake.
type CalendarConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Debug  bool   `mapstructure:"debug"`
}

// TelemetryConfig selects the OpenTelemetry exporters and audit logging.
type TelemetryConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MetricsExporter string  `mapstructure:"metrics_exporter"`
	TracingExporter string  `mapstructure:"tracing_exporter"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	SamplingRate    float64 `mapstructure:"sampling_rate"`
	DetailedLabels  bool    `mapstructure:"detailed_labels"`
	AuditEnabled    bool    `mapstructure:"audit_enabled"`
	AuditIncludePII bool    `mapstructure:"audit_include_pii"`
}

// SetDefaults registers the default for every key, which also makes every
// key resolvable from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.sqlite_path", "voicecal.db")
	v.SetDefault("storage.redis_addr", "")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "voicecal:")
	v.SetDefault("rate_limit.per_second", 2.0)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("calendar.endpoint", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.debug", false)
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.metrics_exporter", "prometheus")
	v.SetDefault("telemetry.tracing_exporter", "none")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.sampling_rate", 0.1)
	v.SetDefault("telemetry.detailed_labels", false)
	v.SetDefault("telemetry.audit_enabled", true)
	v.SetDefault("telemetry.audit_include_pii", false)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile when set and returns the validated configuration.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Log.Debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required when metrics are enabled"))
	}
	if c.Metrics.Enabled && c.Metrics.Addr == c.HTTP.Addr {
		errs = append(errs, errors.New("metrics.addr must differ from http.addr"))
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite backend"))
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be memory, sqlite or redis, got %q", c.Storage.Type))
	}

	if c.RateLimit.PerSecond < 0 {
		errs = append(errs, errors.New("rate_limit.per_second must not be negative"))
	}
	if c.RateLimit.PerSecond > 0 && c.RateLimit.Burst < 1 {
		errs = append(errs, errors.New("rate_limit.burst must be at least 1"))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be between 0 and 1, got %g", c.Telemetry.SamplingRate))
	}
	if c.Metrics.Enabled && c.Telemetry.Enabled && c.Telemetry.MetricsExporter != "prometheus" {
		errs = append(errs, errors.New("metrics.enabled serves prometheus metrics and requires telemetry.metrics_exporter prometheus"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
