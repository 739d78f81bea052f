package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/voicecal/internal/instrumentation"
	"github.com/teemow/voicecal/internal/logging"
	"github.com/teemow/voicecal/internal/platform"
)

const (
	// SkillPath is where the voice platform posts requests.
	SkillPath = "/skill"

	// HeaderRequestID carries the correlation id of a webhook call.
	HeaderRequestID = "X-Request-ID"

	// MaxRequestBodyBytes bounds the size of a request envelope.
	MaxRequestBodyBytes = 1 << 20
)

// RequestHandler handles one decoded voice platform request.
type RequestHandler interface {
	Handle(ctx context.Context, env *platform.RequestEnvelope) (*platform.ResponseEnvelope, error)
}

// SkillHandler is the http.Handler for the webhook endpoint.
type SkillHandler struct {
	handler RequestHandler
	limiter *RateLimiter
	metrics *instrumentation.Metrics
	logger  *slog.Logger
}

// NewSkillHandler creates the webhook handler. limiter and metrics may be nil.
func NewSkillHandler(handler RequestHandler, limiter *RateLimiter, metrics *instrumentation.Metrics, logger *slog.Logger) *SkillHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SkillHandler{
		handler: handler,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *SkillHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		h.metrics.RecordHTTPRequest(r.Context(), r.Method, SkillPath, rec.status, time.Since(start))
	}()

	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	rec.Header().Set(HeaderRequestID, requestID)
	logger := logging.WithRequestID(h.logger, requestID)

	if r.Method != http.MethodPost {
		rec.Header().Set("Allow", http.MethodPost)
		writeError(rec, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var env platform.RequestEnvelope
	if err := json.NewDecoder(http.MaxBytesReader(rec, r.Body, MaxRequestBodyBytes)).Decode(&env); err != nil {
		logger.Warn("Rejecting malformed request envelope", logging.Err(err))
		writeError(rec, http.StatusBadRequest, "malformed request envelope")
		return
	}

	key := env.UserID()
	if key == "" {
		key = clientIP(r)
	}
	if ok, retryAfter := h.limiter.Allow(key); !ok {
		h.metrics.RecordRateLimited(r.Context())
		logger.Warn("Rate limit exceeded", logging.UserHash(key))
		rec.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		writeError(rec, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	switch {
	case env.Session.New:
		h.metrics.IncrementActiveSessions(r.Context())
	case env.Request.Type == platform.RequestTypeSessionEnded:
		h.metrics.DecrementActiveSessions(r.Context())
	}

	resp, err := h.handler.Handle(r.Context(), &env)
	if err != nil {
		logger.Error("Failed to handle request", logging.RequestType(env.Request.Type), logging.Err(err))
		writeError(rec, http.StatusInternalServerError, "internal error")
		return
	}

	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(rec).Encode(resp); err != nil {
		logger.Warn("Failed to write response", logging.Err(err))
	}
}

// writeError writes a small JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// clientIP returns the remote address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
