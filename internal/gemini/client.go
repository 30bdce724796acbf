// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini calls the Gemini generateContent API to produce
// consultation replies and report drafts.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/whistle-consult/internal/httputil"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

// Acknowledgement is the fixed model turn that follows the system prompt.
const Acknowledgement = "네, 내부자신고 사전상담 AI 어시스턴트로서 도움드리겠습니다. 편하게 말씀해 주세요."

// Generation parameters sent with every request.
const (
	temperature     = 0.7
	topP            = 0.9
	maxOutputTokens = 2048
)

// harmCategories are relaxed to BLOCK_NONE: reports routinely describe
// harassment and violence, and blocking them would end the consultation.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// ErrEmptyResponse is returned when the API answers without any text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// StatusError reports a non-200 response from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini API returned %d: %s", e.StatusCode, e.Body)
}

// Request is one generation call: the system prompt plus the conversation.
type Request struct {
	SystemPrompt string
	Messages     []types.ChatMessage
}

// Client calls the Gemini API. The zero value is not usable; build one with New.
type Client struct {
	APIKey     string
	ModelName  string
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Retry      httputil.RetryPolicy

	// Limiter throttles calls across all requests. Nil disables throttling.
	Limiter *rate.Limiter

	Logger *zap.Logger
}

// New builds a Client from configuration.
func New(cfg types.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		APIKey:     cfg.APIKey,
		ModelName:  cfg.Model,
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		UserAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Retry: httputil.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBaseDelay,
		},
		Logger: logger,
	}
	c.Retry.OnRetry = func(attempt int, wait time.Duration) {
		c.Logger.Warn("gemini rate limited, backing off",
			zap.Int("attempt", attempt), zap.Duration("wait", wait))
	}
	if cfg.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(cfg.RequestsPerMinute) / 60)
		c.Limiter = rate.NewLimiter(perSecond, max(1, cfg.RequestsPerMinute/10))
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.APIKey != "" }

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.ModelName }

// generateRequest is the request body for generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateResponse is the subset of the generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends req and returns the first text part of the first candidate.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	bodyBytes, err := json.Marshal(buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.ModelName)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, httpReq, c.Retry)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var gResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := gResp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// buildRequest maps the conversation onto Gemini roles: the system prompt
// goes first as a user turn followed by the fixed acknowledgement; "user"
// stays "user" and every other role becomes "model".
func buildRequest(req Request) generateRequest {
	contents := make([]content, 0, len(req.Messages)+2)
	contents = append(contents,
		content{Role: "user", Parts: []part{{Text: req.SystemPrompt}}},
		content{Role: "model", Parts: []part{{Text: Acknowledgement}}},
	)
	for _, m := range req.Messages {
		role := "model"
		if m.Role == types.RoleUser {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}

	safety := make([]safetySetting, len(harmCategories))
	for i, cat := range harmCategories {
		safety[i] = safetySetting{Category: cat, Threshold: "BLOCK_NONE"}
	}

	return generateRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
		SafetySettings: safety,
	}
}
