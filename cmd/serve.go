package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/config"
	"github.com/teemow/voicecal/internal/instrumentation"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/platform"
	"github.com/teemow/voicecal/internal/server"
	"github.com/teemow/voicecal/internal/skill"
	"github.com/teemow/voicecal/internal/store"
)

// flagBindings maps each serve flag to the configuration key it overrides.
var flagBindings = map[string]string{
	"addr":              "http.addr",
	"metrics-enabled":   "metrics.enabled",
	"metrics-addr":      "metrics.addr",
	"storage":           "storage.type",
	"sqlite-path":       "storage.sqlite_path",
	"redis-addr":        "storage.redis_addr",
	"redis-password":    "storage.redis_password",
	"redis-db":          "storage.redis_db",
	"redis-prefix":      "storage.redis_prefix",
	"rate-limit":        "rate_limit.per_second",
	"rate-burst":        "rate_limit.burst",
	"calendar-endpoint": "calendar.endpoint",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"debug":             "log.debug",
	"tracing-exporter":  "telemetry.tracing_exporter",
	"otlp-endpoint":     "telemetry.otlp_endpoint",
}

func newServeCmd() *cobra.Command {
	var configFile string
	v := config.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the voice skill webhook server",
		Long: `Run the HTTP webhook that receives voice platform requests.

Each request carries the user's linked Google account token. The server answers
with speech and keeps per-user scheduling preferences in the configured store.

Configuration is read from flags, VOICECAL_* environment variables and an
optional config file, in that order of precedence.

Storage backends:
  - memory: Preferences live in process memory and are lost on restart (default)
  - sqlite: Preferences are kept in a local SQLite database file
  - redis:  Preferences are kept in Redis, shared between replicas

Examples:
  voicecal serve
  voicecal serve --addr :8443 --storage sqlite --sqlite-path /var/lib/voicecal/prefs.db
  VOICECAL_STORAGE_TYPE=redis VOICECAL_STORAGE_REDIS_ADDR=redis:6379 voicecal serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	flags.String("addr", ":8080", "Address for the webhook server to listen on")
	flags.Bool("metrics-enabled", true, "Serve Prometheus metrics on a separate listener")
	flags.String("metrics-addr", ":9090", "Address for the metrics server to listen on")
	flags.String("storage", store.TypeMemory, "Preference store backend: memory, sqlite or redis")
	flags.String("sqlite-path", "voicecal.db", "SQLite database file for the sqlite backend")
	flags.String("redis-addr", "", "Redis address (host:port) for the redis backend")
	flags.String("redis-password", "", "Redis password for the redis backend")
	flags.Int("redis-db", 0, "Redis database number for the redis backend")
	flags.String("redis-prefix", store.DefaultRedisPrefix, "Prefix for every Redis key")
	flags.Float64("rate-limit", 2.0, "Requests per second allowed per user (0 disables rate limiting)")
	flags.Int("rate-burst", 10, "Burst size for the per-user rate limit")
	flags.String("calendar-endpoint", "", "Override the Google Calendar API endpoint")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", logging.FormatJSON, "Log format: text or json")
	flags.Bool("debug", false, "Enable debug logging (shorthand for --log-level debug)")
	flags.String("tracing-exporter", instrumentation.ExporterNone, "Trace exporter: otlp, stdout or none")
	flags.String("otlp-endpoint", "", "OTLP collector endpoint (host:port) for the otlp exporters")

	if err := bindFlags(v, cmd); err != nil {
		panic(err)
	}

	return cmd
}

// bindFlags makes every serve flag override its configuration key when set.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

func runServe(cfg config.Config) error {
	logger, err := logging.NewLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// Create a context that can be cancelled by signals
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize instrumentation provider
	instrConfig := instrumentationConfig(cfg.Telemetry)
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error shutting down instrumentation provider", logging.Err(err))
		}
	}()
	metrics := provider.Metrics()

	prefStore, err := store.New(ctx, storeConfig(cfg.Storage, logger, metrics))
	if err != nil {
		return err
	}

	sk, err := skill.New(skill.Config{
		Store:     prefStore,
		Calendars: newCalendarFactory(cfg.Calendar.Endpoint, metrics),
		TimeZones: platform.NewSettingsClient(nil),
		Logger:    logger,
		Metrics:   metrics,
		Audit:     instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging),
	})
	if err != nil {
		_ = prefStore.Close()
		return fmt.Errorf("failed to create skill: %w", err)
	}

	sc, err := server.NewServerContext(ctx, sk, prefStore, provider)
	if err != nil {
		_ = prefStore.Close()
		return fmt.Errorf("failed to create server context: %w", err)
	}

	errChan := make(chan error, 2)

	// Start metrics server if enabled (on separate port for security)
	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled && provider.MetricsHandler() != nil {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			Path:                    instrConfig.PrometheusEndpoint,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			_ = sc.Shutdown()
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	httpServer := server.NewHTTPServer(sc, server.HTTPServerConfig{
		Addr:    cfg.HTTP.Addr,
		Limiter: server.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
		Health: server.HealthInfo{
			Version:      version,
			StoreBackend: cfg.Storage.Type,
		},
		Logger: logger,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("webhook server error: %w", err)
		}
	}()

	logger.Info("voicecal started",
		slog.String("version", version),
		slog.String("addr", cfg.HTTP.Addr),
		logging.Backend(cfg.Storage.Type))

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, stopping")
	case runErr = <-errChan:
		logger.Error("Server failed, stopping", logging.Err(runErr))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error shutting down webhook server", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error shutting down metrics server", logging.Err(err))
		}
	}

	logger.Info("voicecal stopped")
	return runErr
}

// instrumentationConfig applies the telemetry settings to the
// instrumentation defaults.
func instrumentationConfig(t config.TelemetryConfig) instrumentation.Config {
	c := instrumentation.DefaultConfig()
	c.ServiceVersion = version
	c.Enabled = t.Enabled
	c.MetricsExporter = t.MetricsExporter
	c.TracingExporter = t.TracingExporter
	c.OTLPEndpoint = t.OTLPEndpoint
	c.OTLPInsecure = t.OTLPInsecure
	c.TraceSamplingRate = t.SamplingRate
	c.DetailedLabels = t.DetailedLabels
	c.AuditLogging.Enabled = t.AuditEnabled
	c.AuditLogging.IncludePII = t.AuditIncludePII
	return c
}

// storeConfig translates the storage settings into a store.Config.
func storeConfig(cfg config.StorageConfig, logger *slog.Logger, metrics *instrumentation.Metrics) store.Config {
	return store.Config{
		Type:          cfg.Type,
		SQLitePath:    cfg.SQLitePath,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   cfg.RedisPrefix,
		Logger:        logger,
		Metrics:       metrics,
	}
}

// calendarOptions returns the client options shared by every per-request
// calendar client.
func calendarOptions(endpoint string, metrics *instrumentation.Metrics) []calendar.Option {
	opts := []calendar.Option{
		calendar.WithHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   calendar.DefaultTimeout,
		}),
	}
	if metrics != nil {
		opts = append(opts, calendar.WithMetrics(metrics))
	}
	if endpoint != "" {
		opts = append(opts, calendar.WithEndpoint(endpoint))
	}
	return opts
}

// newCalendarFactory builds a calendar client for each request's token.
func newCalendarFactory(endpoint string, metrics *instrumentation.Metrics) skill.CalendarFactory {
	opts := calendarOptions(endpoint, metrics)
	return func(ctx context.Context, accessToken string) (skill.Calendar, error) {
		client, err := calendar.NewClient(ctx, accessToken, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
