package google

import (
	"context"
	"fmt"
	"sync"
)

// TokenProvider supplies a current access token for calendar calls.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider for a token obtained elsewhere.
type StaticToken string

// AccessToken returns the token unchanged.
func (s StaticToken) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// FileTokenProvider serves the token cached on disk, refreshing it through
// the OAuth client when it has expired. A refreshed token is written back.
// Without a client only unexpired tokens can be served.
type FileTokenProvider struct {
	client ClientConfig
	path   string

	mu sync.Mutex
}

// NewFileTokenProvider creates a provider for the token cached at path.
func NewFileTokenProvider(client ClientConfig, path string) *FileTokenProvider {
	return &FileTokenProvider{client: client, path: path}
}

// AccessToken returns a valid access token.
func (p *FileTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cached, err := LoadToken(p.path)
	if err != nil {
		return "", err
	}

	if cached.Valid() {
		return cached.AccessToken, nil
	}
	if p.client.ClientID == "" || p.client.ClientSecret == "" {
		return "", fmt.Errorf("cached token expired and cannot be refreshed: %w (set %s and %s)",
			ErrNoClientConfig, EnvClientID, EnvClientSecret)
	}

	tok, err := p.client.oauth2Config().TokenSource(ctx, cached).Token()
	if err != nil {
		return "", fmt.Errorf("cached token is invalid: %w", err)
	}

	if tok.AccessToken != cached.AccessToken {
		if err := SaveToken(p.path, tok); err != nil {
			return "", err
		}
	}
	return tok.AccessToken, nil
}

var (
	_ TokenProvider = (*FileTokenProvider)(nil)
	_ TokenProvider = StaticToken("")
)
