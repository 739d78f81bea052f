package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrNoDevice is returned when the request carries no device or platform
// endpoint to look the time zone up with.
var ErrNoDevice = errors.New("request has no device settings endpoint")

// DefaultSettingsTimeout bounds a device settings lookup.
const DefaultSettingsTimeout = 5 * time.Second

// SettingsClient reads device settings from the voice platform.
type SettingsClient struct {
	httpClient *http.Client
}

// NewSettingsClient returns a client using httpClient, or a default traced
// client when nil.
func NewSettingsClient(httpClient *http.Client) *SettingsClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   DefaultSettingsTimeout,
		}
	}
	return &SettingsClient{httpClient: httpClient}
}

// TimeZone returns the IANA time zone configured on the device the request
// came from.
func (c *SettingsClient) TimeZone(ctx context.Context, env *RequestEnvelope) (*time.Location, error) {
	sys := env.Context.System
	if sys.APIEndpoint == "" || sys.Device.DeviceID == "" {
		return nil, ErrNoDevice
	}

	u := strings.TrimSuffix(sys.APIEndpoint, "/") +
		"/v2/devices/" + url.PathEscape(sys.Device.DeviceID) + "/settings/System.timeZone"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build time zone request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sys.APIAccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device time zone: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return nil, fmt.Errorf("failed to read device time zone: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device settings returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var name string
	if err := json.Unmarshal(body, &name); err != nil {
		return nil, fmt.Errorf("failed to decode device time zone: %w", err)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("device time zone %q: %w", name, err)
	}
	return loc, nil
}
