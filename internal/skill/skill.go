package skill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/voicecal/internal/calendar"
	"github.com/teemow/voicecal/internal/instrumentation"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/platform"
	"github.com/teemow/voicecal/internal/preferences"
)

var (
	// ErrNoLinkedAccount is returned when a request needs the calendar but the
	// user has not linked an account.
	ErrNoLinkedAccount = errors.New("no linked calendar account")

	// ErrNoPendingSchedule is returned when a follow-up turn arrives without a
	// preceding scheduling turn in the session.
	ErrNoPendingSchedule = errors.New("no pending schedule in session")
)

// Calendar is the subset of the calendar client the handlers use.
type Calendar interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]calendar.EventSummary, error)
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventSummary, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// CalendarFactory returns a calendar client acting with the user's token.
type CalendarFactory func(ctx context.Context, accessToken string) (Calendar, error)

// TimeZoneResolver looks up the time zone of the device a request came from.
type TimeZoneResolver interface {
	TimeZone(ctx context.Context, env *platform.RequestEnvelope) (*time.Location, error)
}

// Config holds the collaborators of a Skill.
type Config struct {
	Store     preferences.Store
	Calendars CalendarFactory
	TimeZones TimeZoneResolver

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics and Audit are optional.
	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Skill handles voice platform requests.
type Skill struct {
	store     preferences.Store
	calendars CalendarFactory
	timeZones TimeZoneResolver
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
	now       func() time.Time
}

// New creates a Skill. Store, Calendars and TimeZones are required.
func New(cfg Config) (*Skill, error) {
	if cfg.Store == nil {
		return nil, errors.New("preference store is required")
	}
	if cfg.Calendars == nil {
		return nil, errors.New("calendar factory is required")
	}
	if cfg.TimeZones == nil {
		return nil, errors.New("time zone resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Skill{
		store:     cfg.Store,
		calendars: cfg.Calendars,
		timeZones: cfg.TimeZones,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		audit:     cfg.Audit,
		now:       cfg.Now,
	}, nil
}

// turn is the request-scoped state of one handler invocation.
type turn struct {
	ctx    context.Context
	env    *platform.RequestEnvelope
	state  State
	resp   *platform.ResponseBuilder
	logger *slog.Logger
}

// say speaks text and remembers it for the repeat intent. A non-empty
// reprompt keeps the session open.
func (t *turn) say(text, reprompt string) {
	t.state.LastSpeech = text
	t.resp.Speak(text).Reprompt(reprompt)
}

// requestName names the request for routing, logs and metrics: the intent
// name for intent requests, the request type otherwise.
func requestName(env *platform.RequestEnvelope) string {
	if name := env.IntentName(); name != "" {
		return name
	}
	return env.Request.Type
}

// Handle runs the handler for env and returns the response to send back.
// Handler failures are turned into spoken responses; an error is only
// returned when the response itself cannot be built.
func (s *Skill) Handle(ctx context.Context, env *platform.RequestEnvelope) (*platform.ResponseEnvelope, error) {
	name := requestName(env)
	userHash := logging.AnonymizeUser(env.UserID())

	ctx, span := instrumentation.StartIntentSpan(ctx, instrumentation.IntentLabel(name),
		instrumentation.NewSpanAttributeBuilder().
			WithRequestID(env.Request.RequestID).
			WithUserHash(userHash).
			WithNewSession(env.Session.New).
			Build()...)
	defer span.End()

	invocation := instrumentation.NewIntentInvocation(name).
		WithUser(env.UserID()).
		WithRequest(env.Request.RequestID, env.Session.New).
		WithSpanContext(ctx)

	logger := s.logger.With(
		slog.String(logging.KeyIntent, name),
		slog.String(logging.KeyRequestID, env.Request.RequestID),
		logging.UserHash(env.UserID()),
	)

	t := &turn{ctx: ctx, env: env, resp: platform.NewResponseBuilder(), logger: logger}

	state, err := DecodeState(env.Session.Attributes)
	if err != nil {
		// A corrupt session is not fatal; start the conversation over.
		logger.Warn("Discarding session state", logging.Err(err))
	}
	t.state = state

	err = s.dispatch(t, name)
	switch {
	case errors.Is(err, ErrNoLinkedAccount):
		s.metrics.RecordAccountLinkRequired(ctx)
		t.resp = platform.NewResponseBuilder().
			Speak(LinkAccountSpeech).
			WithLinkAccountCard().
			WithShouldEndSession(true)
	case err != nil:
		logger.Error("Intent handler failed", logging.Err(err))
		t.resp = platform.NewResponseBuilder()
		t.say(ErrorSpeech, ErrorSpeech)
	}

	invocation.Complete(err)
	s.audit.LogIntent(invocation)
	s.metrics.RecordIntentInvocation(ctx, name, invocation.Status(), userHash, invocation.Duration)
	if err != nil {
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	attrs, encErr := t.state.Encode()
	if encErr != nil {
		return nil, encErr
	}
	return t.resp.WithSessionAttributes(attrs).Build(), nil
}

// dispatch routes the turn to its handler.
func (s *Skill) dispatch(t *turn, name string) error {
	switch t.env.Request.Type {
	case platform.RequestTypeLaunch:
		return s.handleLaunch(t)
	case platform.RequestTypeSessionEnded:
		return s.handleSessionEnded(t)
	case platform.RequestTypeIntent:
		if h, ok := intentHandlers[name]; ok {
			return h(s, t)
		}
		return s.handleReflector(t, name)
	default:
		return fmt.Errorf("unsupported request type %q", t.env.Request.Type)
	}
}

// calendar returns a client for the user's linked account.
func (s *Skill) calendar(t *turn) (Calendar, error) {
	token := t.env.AccessToken()
	if token == "" {
		return nil, ErrNoLinkedAccount
	}
	cal, err := s.calendars(t.ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return cal, nil
}

// preferences returns the user's preferences, loading them from the store
// on first use in a session. A failed load is logged and yields an empty map
// that is not cached, so the next turn tries again.
func (s *Skill) preferences(t *turn) preferences.Map {
	if t.state.Preferences != nil {
		return t.state.Preferences
	}
	prefs, err := s.store.Load(t.ctx, t.env.UserID())
	if err != nil {
		t.logger.Warn("Failed to load preferences", logging.Err(err))
		return preferences.Map{}
	}
	t.state.Preferences = prefs
	return prefs
}

// savePreferences persists prefs and keeps them in the session.
func (s *Skill) savePreferences(t *turn, prefs preferences.Map) error {
	if err := s.store.Save(t.ctx, t.env.UserID(), prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	t.state.Preferences = prefs
	return nil
}

// location returns the device time zone, falling back to UTC when the
// lookup fails.
func (s *Skill) location(t *turn) *time.Location {
	loc, err := s.timeZones.TimeZone(t.ctx, t.env)
	if err != nil {
		t.logger.Warn("Failed to resolve device time zone, using UTC", logging.Err(err))
		return time.UTC
	}
	return loc
}
