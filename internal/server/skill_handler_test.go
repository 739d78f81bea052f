package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/voicecal/internal/platform"
)

type fakeRequestHandler struct {
	got  []*platform.RequestEnvelope
	resp *platform.ResponseEnvelope
	err  error
}

func (f *fakeRequestHandler) Handle(_ context.Context, env *platform.RequestEnvelope) (*platform.ResponseEnvelope, error) {
	f.got = append(f.got, env)
	return f.resp, f.err
}

const helpRequest = `{
  "version": "1.0",
  "session": {"new": true, "sessionId": "s-1", "user": {"userId": "user-1"}},
  "context": {"System": {"user": {"userId": "user-1"}}},
  "request": {"type": "IntentRequest", "requestId": "r-1", "intent": {"name": "AMAZON.HelpIntent"}}
}`

func postSkill(h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, SkillPath, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSkillHandler_Success(t *testing.T) {
	fake := &fakeRequestHandler{resp: platform.NewResponseBuilder().Speak("Hello").Build()}
	h := NewSkillHandler(fake, nil, nil, nil)

	rec := postSkill(h, helpRequest, map[string]string{HeaderRequestID: "corr-1"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "corr-1", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"version":"1.0","response":{"outputSpeech":{"type":"PlainText","text":"Hello"}}}`, rec.Body.String())

	require.Len(t, fake.got, 1)
	assert.Equal(t, "AMAZON.HelpIntent", fake.got[0].IntentName())
	assert.Equal(t, "user-1", fake.got[0].UserID())
}

func TestSkillHandler_GeneratesRequestID(t *testing.T) {
	fake := &fakeRequestHandler{resp: platform.NewResponseBuilder().Build()}
	h := NewSkillHandler(fake, nil, nil, nil)

	rec := postSkill(h, helpRequest, nil)

	assert.Len(t, rec.Header().Get(HeaderRequestID), 36)
}

func TestSkillHandler_Rejects(t *testing.T) {
	fake := &fakeRequestHandler{resp: platform.NewResponseBuilder().Build()}
	h := NewSkillHandler(fake, nil, nil, nil)

	rec := postSkill(h, `{"version":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, SkillPath, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = postSkill(h, `{"padding":"`+strings.Repeat("x", MaxRequestBodyBytes)+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, fake.got)
}

func TestSkillHandler_HandlerError(t *testing.T) {
	fake := &fakeRequestHandler{err: errors.New("encode failed")}
	h := NewSkillHandler(fake, nil, nil, nil)

	rec := postSkill(h, helpRequest, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSkillHandler_RateLimited(t *testing.T) {
	fake := &fakeRequestHandler{resp: platform.NewResponseBuilder().Build()}
	h := NewSkillHandler(fake, NewRateLimiter(1, 1), nil, nil)

	rec := postSkill(h, helpRequest, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postSkill(h, helpRequest, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Len(t, fake.got, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, SkillPath, nil)
	req.RemoteAddr = "203.0.113.7:54321"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.RemoteAddr = "not-an-addr"
	assert.Equal(t, "not-an-addr", clientIP(req))
}
