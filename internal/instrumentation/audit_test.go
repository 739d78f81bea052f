package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

// Test constants to reduce string repetition and satisfy goconst
const (
	testUserID    = "amzn1.ask.account.AEXAMPLE"
	testRequestID = "amzn1.echo-api.request.1"
	testTraceID   = "abc123def456"
	testSpanID    = "span789"
	testIntent    = "ScheduleEventIntent"
)

func attrMap(attrs []slog.Attr) map[string]slog.Value {
	m := make(map[string]slog.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestIntentInvocation_NewAndComplete(t *testing.T) {
	ii := NewIntentInvocation(testIntent)

	if ii.Intent != testIntent {
		t.Errorf("Intent = %q, want %q", ii.Intent, testIntent)
	}
	if ii.StartTime.IsZero() {
		t.Error("StartTime should not be zero")
	}

	ii.Complete(nil)

	if !ii.Success {
		t.Error("Success should be true")
	}
	if ii.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ii.Status() != StatusSuccess {
		t.Errorf("Status() = %q, want %q", ii.Status(), StatusSuccess)
	}
}

func TestIntentInvocation_CompleteWithError(t *testing.T) {
	ii := NewIntentInvocation(testIntent).Complete(errors.New("calendar unavailable"))

	if ii.Success {
		t.Error("Success should be false")
	}
	if ii.Error != "calendar unavailable" {
		t.Errorf("Error = %q, want %q", ii.Error, "calendar unavailable")
	}
	if ii.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", ii.Status(), StatusError)
	}
}

func TestIntentInvocation_LogAttrs(t *testing.T) {
	ii := NewIntentInvocation(testIntent).
		WithUser(testUserID).
		WithRequest(testRequestID, true).
		Complete(errors.New("boom"))
	ii.TraceID = testTraceID
	ii.SpanID = testSpanID

	attrs := attrMap(ii.LogAttrs())

	if _, ok := attrs["user"]; ok {
		t.Error("LogAttrs must not include the raw user id")
	}
	if attrs["user_hash"].String() != ii.UserHash() {
		t.Errorf("user_hash = %q, want %q", attrs["user_hash"].String(), ii.UserHash())
	}
	if attrs["request_id"].String() != testRequestID {
		t.Errorf("request_id = %q, want %q", attrs["request_id"].String(), testRequestID)
	}
	if !attrs["new_session"].Bool() {
		t.Error("new_session should be true")
	}
	if attrs["trace_id"].String() != testTraceID {
		t.Errorf("trace_id = %q, want %q", attrs["trace_id"].String(), testTraceID)
	}
	if _, ok := attrs["span_id"]; ok {
		t.Error("LogAttrs should not include span_id")
	}
	if attrs["error"].String() != "boom" {
		t.Errorf("error = %q, want %q", attrs["error"].String(), "boom")
	}
}

func TestIntentInvocation_LogAttrs_MinimalFields(t *testing.T) {
	ii := NewIntentInvocation("AMAZON.HelpIntent").Complete(nil)

	attrs := ii.LogAttrs()
	// intent, user_hash, duration, success
	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d", len(attrs))
	}
}

func TestIntentInvocation_LogAuditAttrs(t *testing.T) {
	ii := NewIntentInvocation(testIntent).WithUser(testUserID).Complete(nil)
	ii.SpanID = testSpanID

	attrs := attrMap(ii.LogAuditAttrs())

	if attrs["user"].String() != testUserID {
		t.Errorf("user = %q, want %q", attrs["user"].String(), testUserID)
	}
	if attrs["span_id"].String() != testSpanID {
		t.Errorf("span_id = %q, want %q", attrs["span_id"].String(), testSpanID)
	}
}

func TestIntentInvocation_WithSpanContext_NoSpan(t *testing.T) {
	ii := NewIntentInvocation(testIntent).WithSpanContext(context.Background())

	if ii.TraceID != "" || ii.SpanID != "" {
		t.Errorf("expected empty trace context, got trace=%q span=%q", ii.TraceID, ii.SpanID)
	}
}

func TestAuditLogger_New(t *testing.T) {
	al := NewAuditLogger(nil)
	if al.logger == nil {
		t.Error("logger should not be nil when created with nil")
	}
	if !al.enabled {
		t.Error("audit logger should be enabled by default")
	}

	logger := slog.Default()
	al = NewAuditLogger(logger)
	if al.logger != logger {
		t.Error("logger should be the provided logger")
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("invalid json log line: %v", err)
		}
		out = append(out, entry)
	}
	return out
}

func TestAuditLogger_LogIntent(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	al.LogIntent(NewIntentInvocation(testIntent).WithUser(testUserID).Complete(nil))
	al.LogIntent(NewIntentInvocation(testIntent).WithUser(testUserID).Complete(errors.New("boom")))

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(lines))
	}
	if lines[0]["msg"] != "intent_handled" || lines[0]["level"] != "INFO" {
		t.Errorf("unexpected success line: %v", lines[0])
	}
	if lines[1]["msg"] != "intent_failed" || lines[1]["level"] != "WARN" {
		t.Errorf("unexpected failure line: %v", lines[1])
	}
	if _, ok := lines[0]["user"]; ok {
		t.Error("raw user id logged without IncludePII")
	}
}

func TestAuditLogger_IncludePII(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{
		Enabled:    true,
		IncludePII: true,
	})

	al.LogIntent(NewIntentInvocation(testIntent).WithUser(testUserID).Complete(nil))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d", len(lines))
	}
	if lines[0]["user"] != testUserID {
		t.Errorf("user = %v, want %q", lines[0]["user"], testUserID)
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLoggerWithConfig(slog.New(slog.NewJSONHandler(&buf, nil)), AuditLoggingConfig{Enabled: false})

	al.LogIntent(NewIntentInvocation(testIntent).Complete(nil))

	if buf.Len() != 0 {
		t.Errorf("expected no output from disabled audit logger, got %q", buf.String())
	}

	var nilLogger *AuditLogger
	nilLogger.LogIntent(NewIntentInvocation(testIntent).Complete(nil))
}
