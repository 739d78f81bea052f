package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/voicecal/internal/instrumentation"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/preferences"
)

// Supported backend types.
const (
	TypeMemory = instrumentation.BackendMemory
	TypeSQLite = instrumentation.BackendSQLite
	TypeRedis  = instrumentation.BackendRedis
)

// DefaultRedisPrefix is prepended to every Redis key.
const DefaultRedisPrefix = "voicecal:"

// Config selects and configures a backend.
type Config struct {
	// Type is one of "memory", "sqlite" or "redis" (default: memory).
	Type string

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string

	// Redis connection settings for the redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Logger receives backend diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records store operations. May be nil.
	Metrics *instrumentation.Metrics
}

// New opens the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (preferences.Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var (
		backend preferences.Store
		err     error
	)
	switch cfg.Type {
	case "", TypeMemory:
		cfg.Type = TypeMemory
		backend = NewMemory()
	case TypeSQLite:
		backend, err = OpenSQLite(ctx, cfg.SQLitePath)
	case TypeRedis:
		backend, err = NewRedis(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Type, err)
	}

	cfg.Logger.Info("Preference store opened", logging.Backend(cfg.Type))
	return &observed{
		backend: backend,
		name:    cfg.Type,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// observed traces and counts every call to the wrapped backend.
type observed struct {
	backend preferences.Store
	name    string
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

func (o *observed) Load(ctx context.Context, userID string) (preferences.Map, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, o.name, instrumentation.OperationLoad)
	defer span.End()

	start := time.Now()
	prefs, err := o.backend.Load(ctx, userID)
	o.finish(ctx, span, instrumentation.OperationLoad, userID, start, err)
	return prefs, err
}

func (o *observed) Save(ctx context.Context, userID string, prefs preferences.Map) error {
	ctx, span := instrumentation.StartStoreSpan(ctx, o.name, instrumentation.OperationSave)
	defer span.End()

	start := time.Now()
	err := o.backend.Save(ctx, userID, prefs)
	o.finish(ctx, span, instrumentation.OperationSave, userID, start, err)
	return err
}

// Pinger is implemented by backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the backend connection. Backends without one always pass.
func (o *observed) Ping(ctx context.Context) error {
	if p, ok := o.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (o *observed) Close() error {
	return o.backend.Close()
}

func (o *observed) finish(ctx context.Context, span trace.Span, op, userID string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		o.logger.Warn("Preference store operation failed",
			logging.Backend(o.name),
			logging.Operation(op),
			logging.UserHash(userID),
			logging.Err(err))
	} else {
		instrumentation.SetSpanSuccess(span)
		o.logger.Debug("Preference store operation",
			logging.Backend(o.name),
			logging.Operation(op),
			logging.UserHash(userID),
			slog.Duration(logging.KeyDuration, time.Since(start)))
	}
	o.metrics.RecordStoreOperation(ctx, o.name, op, status)
}
