// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers for upstream API calls.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultMaxRetries = 2
	defaultBaseDelay  = 2 * time.Second
	maxRetryAfter     = 30 * time.Second
)

// RetryPolicy controls backoff on HTTP 429 (Too Many Requests).
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero uses the default (2); negative disables retries.
	MaxRetries int

	// BaseDelay is the first backoff interval. It doubles each attempt.
	// Zero uses the default (2 s).
	BaseDelay time.Duration

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, wait time.Duration)
}

func (p RetryPolicy) maxRetries() int {
	switch {
	case p.MaxRetries < 0:
		return 0
	case p.MaxRetries == 0:
		return defaultMaxRetries
	default:
		return p.MaxRetries
	}
}

func (p RetryPolicy) backoff(attempt int, resp *http.Response) time.Duration {
	if d, ok := retryAfter(resp); ok {
		return d
	}
	base := p.BaseDelay
	if base <= 0 {
		base = defaultBaseDelay
	}
	return time.Duration(math.Pow(2, float64(attempt))) * base
}

// DoWithRetry executes req and retries on HTTP 429 with exponential backoff
// (BaseDelay, 2×BaseDelay, 4×BaseDelay, ...). A Retry-After header given in
// seconds overrides the computed delay, capped at 30 s.
//
// Request bodies are replayed through req.GetBody, which http.NewRequest sets
// for in-memory readers. On each 429 the response body is drained and closed
// before sleeping. If ctx is cancelled during a wait the function returns
// ctx.Err(). After exhausting retries the last 429 response is returned so the
// caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := policy.maxRetries()

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= maxRetries {
			return resp, nil
		}

		wait := policy.backoff(attempt, resp)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// retryAfter parses a Retry-After header expressed in whole seconds.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d, true
}
