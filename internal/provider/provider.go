// Package provider implements clients for the AI back-ends used for
// question generation. Clients are stateless and safe for concurrent use;
// each turns a GenerationRequest into one vendor HTTP call and hands the
// raw completion text to the response normalizer.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vuthanhlam/quizbank/internal/model"
)

// Credentials is one resolved credential set for a provider call. Endpoint
// and Model override the vendor defaults when set (self-hosted or gateway
// deployments).
type Credentials struct {
	APIKey   string
	Endpoint string
	Model    string
}

// Provider is the contract every AI back-end implements.
type Provider interface {
	Name() string
	Generate(ctx context.Context, creds Credentials, req model.GenerationRequest) ([]model.GeneratedQuestion, error)
	ValidateCredentials(ctx context.Context, creds Credentials) bool
}

// Error carries the vendor HTTP status so the orchestrator can decide
// retry-worthiness.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient (rate limit or
// upstream unavailability).
func (e *Error) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Token budget. Roughly 280 tokens per generated question keeps batches
// from truncating mid-JSON; each client clamps to its vendor maximum.
const tokensPerQuestion = 280

func tokenBudget(count, providerMax int) int {
	budget := count * tokensPerQuestion
	if budget > providerMax {
		return providerMax
	}
	return budget
}

var defaultHTTPClient = &http.Client{Timeout: 120 * time.Second}
