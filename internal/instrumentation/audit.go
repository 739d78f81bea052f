package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/voicecal/internal/logging"
)

// IntentInvocation captures everything about one handled voice request for
// audit logging.
//
// # Privacy Considerations
//
// The UserID field is the platform's stable per-user identifier and counts
// as PII. When logging, consider:
//   - Using UserHash() for metrics and general logs
//   - Only logging the raw id in audit-specific log streams
type IntentInvocation struct {
	// Intent name, or the request type for non-intent requests
	Intent string

	// Platform identity
	UserID    string
	RequestID string

	// NewSession marks the first request of a voice session
	NewSession bool

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// UserHash returns the anonymized user id.
func (ii *IntentInvocation) UserHash() string {
	return logging.AnonymizeUser(ii.UserID)
}

// Status returns "success" or "error" based on the Success field.
func (ii *IntentInvocation) Status() string {
	if ii.Success {
		return StatusSuccess
	}
	return StatusError
}

// LogAttrs returns slog attributes for operational logging. The user is
// identified by hash only. For full audit logging, use LogAuditAttrs.
func (ii *IntentInvocation) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(logging.KeyIntent, ii.Intent),
		slog.String(logging.KeyUserHash, ii.UserHash()),
		slog.Duration(logging.KeyDuration, ii.Duration),
		slog.Bool("success", ii.Success),
	}
	return ii.appendOptional(attrs, false)
}

// LogAuditAttrs returns slog attributes for full audit logging, including
// the raw platform user id.
//
// # Security Warning
//
// This method includes PII. Ensure audit logs are stored securely and are
// not exposed to general monitoring dashboards.
func (ii *IntentInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String(logging.KeyIntent, ii.Intent),
		slog.String("user", ii.UserID),
		slog.Duration(logging.KeyDuration, ii.Duration),
		slog.Bool("success", ii.Success),
	}
	return ii.appendOptional(attrs, true)
}

func (ii *IntentInvocation) appendOptional(attrs []slog.Attr, withSpan bool) []slog.Attr {
	if ii.RequestID != "" {
		attrs = append(attrs, slog.String(logging.KeyRequestID, ii.RequestID))
	}
	if ii.NewSession {
		attrs = append(attrs, slog.Bool("new_session", true))
	}
	if ii.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ii.TraceID))
	}
	if withSpan && ii.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ii.SpanID))
	}
	if ii.Error != "" {
		attrs = append(attrs, slog.String(logging.KeyError, ii.Error))
	}
	return attrs
}

// NewIntentInvocation creates a new IntentInvocation with timing started.
// Call Complete() when handling finishes.
func NewIntentInvocation(intent string) *IntentInvocation {
	return &IntentInvocation{
		Intent:    intent,
		StartTime: time.Now(),
	}
}

// WithUser sets the platform user id.
func (ii *IntentInvocation) WithUser(userID string) *IntentInvocation {
	ii.UserID = userID
	return ii
}

// WithRequest sets the platform request id and session flag.
func (ii *IntentInvocation) WithRequest(requestID string, newSession bool) *IntentInvocation {
	ii.RequestID = requestID
	ii.NewSession = newSession
	return ii
}

// WithSpanContext extracts trace context from the current span.
func (ii *IntentInvocation) WithSpanContext(ctx context.Context) *IntentInvocation {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		ii.TraceID = span.SpanContext().TraceID().String()
		ii.SpanID = span.SpanContext().SpanID().String()
	}
	return ii
}

// Complete marks the invocation as completed and calculates duration.
func (ii *IntentInvocation) Complete(err error) *IntentInvocation {
	ii.Duration = time.Since(ii.StartTime)
	ii.Success = err == nil
	if err != nil {
		ii.Error = err.Error()
	}
	return ii
}

// AuditLogger provides structured audit logging for intent invocations.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates a new AuditLogger with the given slog.Logger.
// By default, PII is not included in logs.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: true})
}

// NewAuditLoggerWithConfig creates a new AuditLogger with the given configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogIntent logs a handled intent. Raw user ids are only included when the
// logger is configured with IncludePII.
func (al *AuditLogger) LogIntent(ii *IntentInvocation) {
	if al == nil || !al.enabled {
		return
	}

	var attrs []slog.Attr
	if al.includePII {
		attrs = ii.LogAuditAttrs()
	} else {
		attrs = ii.LogAttrs()
	}

	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}

	if ii.Success {
		al.logger.Info("intent_handled", args...)
	} else {
		al.logger.Warn("intent_failed", args...)
	}
}
