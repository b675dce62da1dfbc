package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/messages", r.URL.Path)

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-haiku-latest", body.Model)
		assert.Equal(t, systemPrompt, body.System)

		// Text split across blocks must be reassembled before parsing.
		w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "{\"questions\":[{\"question\":\"Q\","},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "\"correct_answer\":\"true\"}]}"}
			],
			"usage": {"input_tokens": 100, "output_tokens": 50}
		}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider()
	p.retry = RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}
	p.httpClient = &http.Client{Timeout: 5 * time.Second}

	questions, err := p.Generate(context.Background(), Credentials{APIKey: "key-123", Endpoint: server.URL}, testRequest())
	require.NoError(t, err)
	require.Len(t, questions, 1)

	require.NotNil(t, questions[0].TokenUsage)
	assert.Equal(t, 150, *questions[0].TokenUsage)
}

func TestAnthropicEndpointNormalization(t *testing.T) {
	p := NewAnthropicProvider()

	tests := []struct {
		endpoint string
		want     string
	}{
		{"", anthropicDefaultEndpoint},
		{"https://proxy.example.com", "https://proxy.example.com/v1/messages"},
		{"https://proxy.example.com/", "https://proxy.example.com/v1/messages"},
		{"https://proxy.example.com/v1", "https://proxy.example.com/v1/messages"},
		{"https://proxy.example.com/v1/", "https://proxy.example.com/v1/messages"},
		{"https://proxy.example.com/v1/messages", "https://proxy.example.com/v1/messages"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.endpoint(Credentials{Endpoint: tt.endpoint}))
	}
}

func TestAnthropicErrorMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"Overloaded"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider()
	p.retry = RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}
	p.httpClient = &http.Client{Timeout: 5 * time.Second}

	_, err := p.Generate(context.Background(), Credentials{APIKey: "k", Endpoint: server.URL}, testRequest())
	require.Error(t, err)

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, anthropicName, provErr.Provider)
	assert.True(t, provErr.Retryable())
}

func TestAnthropicNoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider()
	p.retry = RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond}
	p.httpClient = &http.Client{Timeout: 5 * time.Second}

	_, err := p.Generate(context.Background(), Credentials{APIKey: "k", Endpoint: server.URL}, testRequest())
	assert.ErrorContains(t, err, "no text content")
}

func TestFactoryResolve(t *testing.T) {
	f := NewFactory()

	for _, name := range []string{"openai", "deepseek", "anthropic", "openai_compatible"} {
		p, err := f.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}

	// Resolution tolerates case and padding.
	p, err := f.Resolve("  OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, openAIName, p.Name())

	_, err = f.Resolve("gemini")
	assert.Error(t, err)

	assert.Len(t, f.Names(), 4)
}
