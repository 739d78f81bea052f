package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/voicecal/internal/instrumentation"
)

// PrimaryCalendarID is the calendar all operations use unless overridden.
const PrimaryCalendarID = "primary"

// DefaultTimeout bounds a single calendar API call.
const DefaultTimeout = 10 * time.Second

// ErrNoAccessToken is returned by NewClient when no access token is given.
var ErrNoAccessToken = errors.New("no calendar access token")

// Client wraps the Google Calendar service for a single user's token
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    *instrumentation.Metrics
}

type clientOptions struct {
	endpoint   string
	httpClient *http.Client
	calendarID string
	metrics    *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*clientOptions)

// WithEndpoint overrides the Calendar API base URL, e.g. to point at a test server.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithHTTPClient sets the HTTP client whose transport carries the requests.
// The bearer token is still added by the client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithCalendarID selects a calendar other than the user's primary one.
func WithCalendarID(id string) Option {
	return func(o *clientOptions) { o.calendarID = id }
}

// WithMetrics records calendar API metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// NewClient creates a Calendar client authorized with the given OAuth access
// token. The token is used as-is and never refreshed; the voice platform
// hands out a fresh one with each request.
func NewClient(ctx context.Context, accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, ErrNoAccessToken
	}

	o := clientOptions{calendarID: PrimaryCalendarID}
	for _, opt := range opts {
		opt(&o)
	}

	base := http.DefaultTransport
	timeout := DefaultTimeout
	if o.httpClient != nil {
		if o.httpClient.Transport != nil {
			base = o.httpClient.Transport
		}
		if o.httpClient.Timeout > 0 {
			timeout = o.httpClient.Timeout
		}
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: tokenSource, Base: base},
		Timeout:   timeout,
	}

	svcOpts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if o.endpoint != "" {
		svcOpts = append(svcOpts, option.WithEndpoint(o.endpoint))
	}

	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: o.calendarID,
		metrics:    o.metrics,
	}, nil
}

// observe runs fn inside a calendar.<operation> span and records the call's
// outcome and duration.
func (c *Client) observe(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := instrumentation.StartCalendarSpan(ctx, operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordCalendarOperation(ctx, operation, status, time.Since(start))

	return err
}

// ListEvents lists the single (expanded) events starting between timeMin and
// timeMax, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]EventSummary, error) {
	var summaries []EventSummary

	err := c.observe(ctx, instrumentation.OperationList, func(ctx context.Context) error {
		events, err := c.svc.Events.List(c.calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}

		for _, event := range events.Items {
			summaries = append(summaries, toEventSummary(event))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*EventSummary, error) {
	start, err := toEventDateTime(input.Start, input.TimeZone)
	if err != nil {
		return nil, err
	}
	end, err := toEventDateTime(input.End, input.TimeZone)
	if err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:    input.Summary,
		Start:      start,
		End:        end,
		Recurrence: input.Recurrence,
	}

	var summary EventSummary
	err = c.observe(ctx, instrumentation.OperationCreate, func(ctx context.Context) error {
		created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		summary = toEventSummary(created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &summary, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}

	return c.observe(ctx, instrumentation.OperationDelete, func(ctx context.Context) error {
		if err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to delete event %s: %w", eventID, err)
		}
		return nil
	})
}
