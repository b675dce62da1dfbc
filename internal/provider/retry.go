package provider

import (
	"context"
	"net/http"
	"time"
)

// RetryConfig tunes the HTTP-level retry loop. This layer is independent
// of the orchestrator's retry around the whole provider call; the combined
// worst case is MaxAttempts(HTTP) x MaxAttempts(orchestrator) requests.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second}
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry issues an HTTP call with bounded exponential backoff on 429,
// 503, 504 and transport failures. build must return a fresh request each
// attempt since request bodies are single-use. Non-retryable statuses and
// context cancellation short-circuit; no delay is applied after the final
// attempt.
func DoWithRetry(ctx context.Context, client *http.Client, cfg RetryConfig, build func() (*http.Request, error)) (*http.Response, error) {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.BaseDelay * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastResp = nil
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			if lastResp != nil {
				lastResp.Body.Close()
			}
			return resp, nil
		}
		if lastResp != nil {
			lastResp.Body.Close()
		}
		lastResp = resp
		lastErr = nil
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}
