// Package instrumentation provides OpenTelemetry instrumentation for the
// voicecal skill server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, voice intents, calendar API calls
//     and preference store operations
//   - Distributed tracing for intent handling and calendar API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//   - Audit logging of every handled intent
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - http_rate_limited_total: Counter of skill requests rejected by the rate limiter
//
// Voice Metrics:
//   - active_sessions: Gauge of open voice sessions
//   - account_link_required_total: Counter of requests without a linked calendar account
//   - intent_invocations_total: Counter of intents by name and status
//   - intent_duration_seconds: Histogram of intent handling durations
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of calendar API calls by operation and status
//   - calendar_api_operation_duration_seconds: Histogram of calendar API call durations
//
// Preference Store Metrics:
//   - preference_store_operations_total: Counter of store loads and saves by backend
//
// Intent names are reduced to a fixed set with IntentLabel before being used
// as a label.
//
// # Tracing
//
// Spans are created for:
//   - Intent handling (intent.<name>)
//   - Calendar API calls (calendar.<operation>)
//   - Preference store calls (store.<operation>)
//
// # Configuration
//
// DefaultConfig gives Prometheus metrics without tracing. The serve command
// overrides it from the telemetry section of the voicecal configuration
// (VOICECAL_TELEMETRY_* in the environment). Kubernetes namespace and pod
// name are read from the downward API variables K8S_NAMESPACE/POD_NAMESPACE
// and K8S_POD_NAME/HOSTNAME.
//
// With the Prometheus exporter the provider collects into its own registry,
// served by Provider.MetricsHandler.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordHTTPRequest(ctx, "POST", "/skill", 200, time.Since(start))
//	recorder.RecordCalendarOperation(ctx, instrumentation.OperationList, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
