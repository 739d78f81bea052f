package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestClientConfigFromEnv(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	_, err := ClientConfigFromEnv()
	assert.ErrorIs(t, err, ErrNoClientConfig)

	t.Setenv(EnvClientID, "client-id")
	t.Setenv(EnvClientSecret, "secret")
	cfg, err := ClientConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "client-id", cfg.ClientID)
}

func TestAuthURL(t *testing.T) {
	url := ClientConfig{ClientID: "client-id", ClientSecret: "secret"}.AuthURL("xyz")

	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=xyz")
	assert.Contains(t, url, "access_type=offline")
	assert.True(t, strings.Contains(url, "auth%2Fcalendar"), url)
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "google.token")
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", got.AccessToken)
	assert.Equal(t, "refresh", got.RefreshToken)
}

func TestLoadTokenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadToken(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrNoToken)

	garbage := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("access refresh"), 0o600))
	_, err = LoadToken(garbage)
	assert.ErrorContains(t, err, "invalid token file")

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o600))
	_, err = LoadToken(empty)
	assert.ErrorContains(t, err, "no token")
}

func TestFileTokenProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.token")
	require.NoError(t, SaveToken(path, &oauth2.Token{
		AccessToken: "still-valid",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	p := NewFileTokenProvider(ClientConfig{ClientID: "id", ClientSecret: "secret"}, path)
	got, err := p.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "still-valid", got)

	missing := NewFileTokenProvider(ClientConfig{}, filepath.Join(t.TempDir(), "none"))
	_, err = missing.AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestFileTokenProvider_ExpiredWithoutClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.token")
	require.NoError(t, SaveToken(path, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	_, err := NewFileTokenProvider(ClientConfig{}, path).AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoClientConfig)
	assert.ErrorContains(t, err, EnvClientID)
}

func TestFileTokenProvider_ValidWithoutClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "google.token")
	require.NoError(t, SaveToken(path, &oauth2.Token{
		AccessToken: "fresh",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}))

	got, err := NewFileTokenProvider(ClientConfig{}, path).AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestStaticToken(t *testing.T) {
	got, err := StaticToken("abc").AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = StaticToken("").AccessToken(context.Background())
	assert.ErrorIs(t, err, ErrNoToken)
}
