// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/whistle-consult/internal/consult"
	"github.com/pdiddy/whistle-consult/internal/gemini"
	"github.com/pdiddy/whistle-consult/internal/knowledge"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

// stubConsultant echoes the number of messages it received.
type stubConsultant struct {
	chatCalls   int
	reportCalls int
	last        []types.ChatMessage
}

func (s *stubConsultant) Chat(_ context.Context, msgs []types.ChatMessage) string {
	s.chatCalls++
	s.last = msgs
	return "reply"
}

func (s *stubConsultant) GenerateReport(_ context.Context, msgs []types.ChatMessage) string {
	s.reportCalls++
	s.last = msgs
	return "draft"
}

func newTestServer(t *testing.T, svc Consultant) *httptest.Server {
	t.Helper()
	cfg := types.DefaultConfig().Server
	cfg.MaxBodyBytes = 4096
	srv := New(cfg, svc, Status{Model: "gemini-2.5-flash", APIKeySet: true, Documents: 31}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubConsultant{})

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[types.HealthResponse](t, resp)
	assert.Equal(t, types.HealthResponse{Status: "ok", APIKeySet: true, Model: "gemini-2.5-flash", Documents: 31}, got)
}

func TestChat(t *testing.T) {
	svc := &stubConsultant{}
	ts := newTestServer(t, svc)

	resp := post(t, ts.URL+"/api/chat", `{"messages":[{"role":"user","content":"질문"}]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.ChatResponse{Reply: "reply"}, decodeBody[types.ChatResponse](t, resp))
	assert.Equal(t, 1, svc.chatCalls)
	assert.Equal(t, []types.ChatMessage{{Role: "user", Content: "질문"}}, svc.last)
}

func TestGenerateReport(t *testing.T) {
	svc := &stubConsultant{}
	ts := newTestServer(t, svc)

	resp := post(t, ts.URL+"/api/generate-report",
		`{"messages":[{"role":"user","content":"a"},{"role":"assistant","content":"b"}]}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.ReportResponse{Report: "draft"}, decodeBody[types.ReportResponse](t, resp))
	assert.Equal(t, 1, svc.reportCalls)
}

func TestEmptyMessagesReachService(t *testing.T) {
	svc := &stubConsultant{}
	ts := newTestServer(t, svc)

	resp := post(t, ts.URL+"/api/chat", `{"messages":[]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, svc.chatCalls)
	assert.Empty(t, svc.last)
}

func TestRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"messages":`, http.StatusBadRequest, "invalid_json"},
		{"unknown role", `{"messages":[{"role":"system","content":"x"}]}`, http.StatusBadRequest, "invalid_request"},
		{"empty content", `{"messages":[{"role":"user","content":""}]}`, http.StatusBadRequest, "invalid_request"},
		{"too large", `{"messages":[{"role":"user","content":"` + strings.Repeat("x", 5000) + `"}]}`, http.StatusRequestEntityTooLarge, "body_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubConsultant{}
			ts := newTestServer(t, svc)

			resp := post(t, ts.URL+"/api/chat", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			got := decodeBody[errorResponse](t, resp)
			assert.Equal(t, tt.code, got.Error)
			assert.NotEmpty(t, got.Message)
			assert.Zero(t, svc.chatCalls)
		})
	}
}

func TestValidationFieldMessages(t *testing.T) {
	ts := newTestServer(t, &stubConsultant{})

	resp := post(t, ts.URL+"/api/chat", `{"messages":[{"role":"system","content":"x"}]}`)
	got := decodeBody[errorResponse](t, resp)
	assert.Equal(t, "Role must be one of: user assistant", got.Fields["ChatRequest.Messages[0].Role"])
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t, &stubConsultant{})

	resp, err := http.Get(ts.URL + "/api/chat")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp2, err := http.Get(ts.URL + "/docs")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &stubConsultant{})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.github.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestEndToEndWithGemini(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"상담 답변"}]}}]}`))
	}))
	defer upstream.Close()

	cfg := types.DefaultConfig()
	cfg.Gemini.APIKey = "k"
	cfg.Gemini.BaseURL = upstream.URL
	gen := gemini.New(cfg.Gemini, nil)

	kb, err := knowledge.Embedded()
	require.NoError(t, err)
	svc := consult.New(kb, gen, cfg.Knowledge, nil)

	ts := httptest.NewServer(New(cfg.Server, svc, Status{Model: gen.Model(), APIKeySet: gen.Configured(), Documents: kb.Len()}, nil).Handler())
	defer ts.Close()

	body, _ := json.Marshal(types.ChatRequest{Messages: []types.ChatMessage{{Role: "user", Content: "법인카드를 개인적으로 사용하는 것 같아요"}}})
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "상담 답변", decodeBody[types.ChatResponse](t, resp).Reply)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := types.DefaultConfig().Server
	cfg.ShutdownTimeout = time.Second
	srv := New(cfg, &stubConsultant{}, Status{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
