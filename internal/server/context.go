package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/voicecal/internal/instrumentation"
	"github.com/teemow/voicecal/internal/preferences"
	"github.com/teemow/voicecal/internal/skill"
)

// ServerContext holds the long-lived dependencies of the webhook server.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	skill    *skill.Skill
	store    preferences.Store
	provider *instrumentation.Provider
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. provider may be nil when
// instrumentation is not configured.
func NewServerContext(ctx context.Context, sk *skill.Skill, store preferences.Store, provider *instrumentation.Provider) (*ServerContext, error) {
	if sk == nil {
		return nil, fmt.Errorf("skill is required")
	}
	if store == nil {
		return nil, fmt.Errorf("preference store is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		skill:    sk,
		store:    store,
		provider: provider,
	}, nil
}

// Context returns the server context. It is cancelled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Skill returns the request handler.
func (sc *ServerContext) Skill() *skill.Skill {
	return sc.skill
}

// Metrics returns the metrics recorder, or nil when instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil {
		return nil
	}
	return sc.provider.Metrics()
}

// storePinger matches stores that can check their backend connection.
type storePinger interface {
	Ping(ctx context.Context) error
}

// CheckStore pings the preference store when it supports it.
func (sc *ServerContext) CheckStore(ctx context.Context) error {
	if p, ok := sc.store.(storePinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and closes the preference store.
// Calling it more than once is a no-op.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	if err := sc.store.Close(); err != nil {
		return fmt.Errorf("failed to close preference store: %w", err)
	}
	return nil
}
