package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybergate-systems/relay"
	"github.com/cybergate-systems/relay/logger"
	"github.com/cybergate-systems/relay/types"
)

type fakeRelayer struct {
	outcome *relay.Outcome
	calls   int
	lastReq *relay.Request
	panics  bool
}

func (f *fakeRelayer) Handle(_ context.Context, req *relay.Request) *relay.Outcome {
	if f.panics {
		panic("boom")
	}
	f.calls++
	f.lastReq = req
	return f.outcome
}

func newTestServer(gate Relayer) *Server {
	return NewServer("0", gate, "/api/send-dm", logger.NoopLogger{}, nil)
}

func TestOptionsReturnsCORSHeaders(t *testing.T) {
	gate := &fakeRelayer{}
	srv := newTestServer(gate)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/send-dm", nil)
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), PaymentHeader)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Zero(t, gate.calls)
}

func TestMethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		gate := &fakeRelayer{}
		srv := newTestServer(gate)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/send-dm", nil)
		srv.Engine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.JSONEq(t, `{"error":"Method Not Allowed"}`, w.Body.String())
		assert.Zero(t, gate.calls, "%s must have no side effects", method)
	}
}

func TestPostPlumbing(t *testing.T) {
	gate := &fakeRelayer{outcome: &relay.Outcome{
		Status: http.StatusOK,
		Body:   &types.SuccessEnvelope{Success: true, Message: "Priority Mail Delivered!", Tx: "0x1"},
	}}
	srv := newTestServer(gate)

	body := `{"platform":"Twitter","username":"@a","message":"hi","amount":0.1}`
	req := httptest.NewRequest(http.MethodPost, "/api/send-dm", strings.NewReader(body))
	req.Host = "relay.example.com"
	req.Header.Set("X-Forwarded-Proto", "http")
	req.Header.Set(PaymentHeader, "proof-token")

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, 1, gate.calls)
	assert.Equal(t, "proof-token", gate.lastReq.Proof)
	assert.Equal(t, http.MethodPost, gate.lastReq.Resource.Method)
	assert.Equal(t, "http://relay.example.com/api/send-dm", gate.lastReq.Resource.URL)
	assert.JSONEq(t, body, string(gate.lastReq.Body))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "0x1", envelope.Tx)
}

func TestForwardedProtoDefaultsToHTTPS(t *testing.T) {
	gate := &fakeRelayer{outcome: &relay.Outcome{Status: http.StatusOK, Body: &types.SuccessEnvelope{}}}
	srv := newTestServer(gate)

	req := httptest.NewRequest(http.MethodPost, "/api/send-dm", strings.NewReader(`{}`))
	req.Host = "relay.example.com"

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, 1, gate.calls)
	assert.Equal(t, "https://relay.example.com/api/send-dm", gate.lastReq.Resource.URL)
}

func TestPassthroughBodyWrittenVerbatim(t *testing.T) {
	challenge := `{"error":"Payment Required","price":"0.1","currency":"MON","payTo":"0xabc"}`
	gate := &fakeRelayer{outcome: &relay.Outcome{
		Status: http.StatusPaymentRequired,
		Body:   json.RawMessage(challenge),
	}}
	srv := newTestServer(gate)

	req := httptest.NewRequest(http.MethodPost, "/api/send-dm", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, challenge, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestPanicConvertedToGeneric500(t *testing.T) {
	srv := newTestServer(&fakeRelayer{panics: true})

	req := httptest.NewRequest(http.MethodPost, "/api/send-dm", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&fakeRelayer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
