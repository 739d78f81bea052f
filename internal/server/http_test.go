package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/voicecal/internal/platform"
	"github.com/teemow/voicecal/internal/skill"
	"github.com/teemow/voicecal/internal/store"
)

type utcZones struct{}

func (utcZones) TimeZone(context.Context, *platform.RequestEnvelope) (*time.Location, error) {
	return time.UTC, nil
}

func newTestServerContext(t *testing.T) *ServerContext {
	t.Helper()

	prefs := store.NewMemory()
	sk, err := skill.New(skill.Config{
		Store: prefs,
		Calendars: func(context.Context, string) (skill.Calendar, error) {
			return nil, nil
		},
		TimeZones: utcZones{},
	})
	require.NoError(t, err)

	sc, err := NewServerContext(context.Background(), sk, prefs, nil)
	require.NoError(t, err)
	return sc
}

func TestNewServerContext_Validation(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil, store.NewMemory(), nil)
	assert.Error(t, err)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	assert.False(t, sc.IsShutdown())
	assert.Nil(t, sc.Metrics())

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.Error(t, sc.Context().Err())

	// Second shutdown is a no-op.
	require.NoError(t, sc.Shutdown())
}

func TestHTTPServer_Routes(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(sc, HTTPServerConfig{Health: HealthInfo{Version: "test"}})
	assert.Equal(t, DefaultAddr, srv.Addr())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+SkillPath, "application/json", strings.NewReader(helpRequest))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out platform.ResponseEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Response.OutputSpeech)
	assert.Equal(t, skill.HelpSpeech, out.Response.OutputSpeech.Text)
	assert.NotEmpty(t, out.SessionAttributes)

	health, err := http.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	_ = health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestHTTPServer_ShutdownWithoutStart(t *testing.T) {
	sc := newTestServerContext(t)
	srv := NewHTTPServer(sc, HTTPServerConfig{Addr: ":0"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))
	assert.True(t, sc.IsShutdown())
	assert.False(t, srv.health.IsReady())
}
