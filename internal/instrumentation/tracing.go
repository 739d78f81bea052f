package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for voicecal.
const TracerName = "github.com/teemow/voicecal"

// Span attribute keys for operations.
const (
	// SpanAttrIntent is the voice intent or request type name.
	SpanAttrIntent = "skill.intent"

	// SpanAttrRequestID is the platform request id.
	SpanAttrRequestID = "skill.request_id"

	// SpanAttrUserHash is the anonymized platform user id.
	SpanAttrUserHash = "skill.user_hash"

	// SpanAttrNewSession marks the first request of a voice session.
	SpanAttrNewSession = "skill.new_session"

	// SpanAttrOperation is the calendar operation type attribute.
	SpanAttrOperation = "calendar.operation"

	// SpanAttrEventID is the calendar event identifier.
	SpanAttrEventID = "calendar.event_id"

	// SpanAttrEventCount is the number of events returned by a list call.
	SpanAttrEventCount = "calendar.event_count"

	// SpanAttrBackend is the preference store backend attribute.
	SpanAttrBackend = "store.backend"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 8),
	}
}

// WithIntent adds the intent name attribute.
func (b *SpanAttributeBuilder) WithIntent(intent string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrIntent, intent))
	return b
}

// WithRequestID adds the platform request id attribute.
func (b *SpanAttributeBuilder) WithRequestID(requestID string) *SpanAttributeBuilder {
	if requestID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrRequestID, requestID))
	}
	return b
}

// WithUserHash adds the anonymized user attribute.
func (b *SpanAttributeBuilder) WithUserHash(userHash string) *SpanAttributeBuilder {
	if userHash != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrUserHash, userHash))
	}
	return b
}

// WithNewSession adds the new-session indicator attribute.
func (b *SpanAttributeBuilder) WithNewSession(isNew bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrNewSession, isNew))
	return b
}

// WithEventID adds the calendar event id attribute.
func (b *SpanAttributeBuilder) WithEventID(eventID string) *SpanAttributeBuilder {
	if eventID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrEventID, eventID))
	}
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// Returns the context with the span and the span itself.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartIntentSpan starts a server span named "intent.<name>" for handling a
// voice request.
func StartIntentSpan(ctx context.Context, intent string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrIntent, intent))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "intent."+intent,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartCalendarSpan starts a client span named "calendar.<operation>" for a
// calendar provider API call.
func StartCalendarSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrOperation, operation))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "calendar."+operation,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// StartStoreSpan starts a client span named "store.<operation>" for a
// preference store call.
func StartStoreSpan(ctx context.Context, backend, operation string) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "store."+operation,
		trace.WithAttributes(attribute.String(SpanAttrBackend, backend)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event to the span with optional attributes.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the span ID from the current span in context.
// Returns empty string if no valid span is present.
func GetSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().SpanID().String()
	}
	return ""
}

// SpanContextString returns a human-readable trace context string.
// Format: "trace_id=X span_id=Y" or empty string if no valid context.
func SpanContextString(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return "trace_id=" + span.SpanContext().TraceID().String() +
		" span_id=" + span.SpanContext().SpanID().String()
}
