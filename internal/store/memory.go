package store

import (
	"context"
	"sync"

	"github.com/teemow/voicecal/internal/preferences"
)

// Memory keeps preferences in process memory. Contents are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	users map[string]preferences.Map
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]preferences.Map)}
}

// Load returns a copy of the user's preferences.
func (m *Memory) Load(_ context.Context, userID string) (preferences.Map, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[userID].Clone(), nil
}

// Save stores a copy of prefs for the user.
func (m *Memory) Save(_ context.Context, userID string, prefs preferences.Map) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = prefs.Clone()
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
