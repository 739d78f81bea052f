// Package server exposes the skill over HTTP.
//
// # Key Components
//
// ServerContext owns the long-lived collaborators of a running server: the
// skill, the preference store and the instrumentation provider. Shutting it
// down closes the store and flips the readiness probes.
//
// HTTPServer serves the voice platform webhook on POST /skill together with
// the health endpoints (/healthz, /readyz, /healthz/detailed). The webhook
// handler decodes the request envelope, applies a per-user rate limit,
// tags every request with an X-Request-ID and hands the envelope to the
// skill. Requests are traced with otelhttp.
//
// MetricsServer serves Prometheus metrics on a separate port so that
// operational metrics are not reachable through the public webhook listener.
package server
