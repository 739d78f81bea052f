package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Environment variables holding the operator OAuth client.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
)

// oobRedirectURL makes Google show the authorization code to the user
// instead of redirecting.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// ErrNoToken is returned when no cached token exists.
var ErrNoToken = errors.New("no cached Google OAuth token, run 'voicecal auth login' first")

// ErrNoClientConfig is returned when the operator OAuth client is not set.
var ErrNoClientConfig = errors.New("no Google OAuth client configured")

// ClientConfig identifies the OAuth client used for operator logins.
type ClientConfig struct {
	ClientID     string
	ClientSecret string
}

// ClientConfigFromEnv reads the OAuth client from GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET.
func ClientConfigFromEnv() (ClientConfig, error) {
	cfg := ClientConfig{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return ClientConfig{}, fmt.Errorf("%w: %s and %s must be set", ErrNoClientConfig, EnvClientID, EnvClientSecret)
	}
	return cfg, nil
}

func (c ClientConfig) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oobRedirectURL,
		Scopes:       CalendarScopes,
	}
}

// AuthURL returns the URL the operator opens to authorize the calendar scopes.
func (c ClientConfig) AuthURL(state string) string {
	return c.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// DefaultTokenFile returns the token cache path under the user cache directory.
func DefaultTokenFile() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "voicecal", "google.token"), nil
}

// Exchange trades an authorization code for a token and caches it at path.
func (c ClientConfig) Exchange(ctx context.Context, path, authCode string) (*oauth2.Token, error) {
	tok, err := c.oauth2Config().Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	if err := SaveToken(path, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// SaveToken writes tok to path, readable only by the current user.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// LoadToken reads the token cached at path.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("invalid token file %s: no token", path)
	}
	return &tok, nil
}
