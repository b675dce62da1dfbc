package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vuthanhlam/quizbank/internal/model"
)

const (
	anthropicName            = "anthropic"
	anthropicDefaultEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion         = "2023-06-01"
	anthropicMaxTokens       = 8192
)

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// anthropicResponse has a distinct envelope: content is an array of typed
// blocks rather than choices[0].message.content.
type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// AnthropicProvider targets the Anthropic Messages API.
type AnthropicProvider struct {
	httpClient *http.Client
	retry      RetryConfig
}

func NewAnthropicProvider() *AnthropicProvider {
	return &AnthropicProvider{
		httpClient: defaultHTTPClient,
		retry:      DefaultRetryConfig(),
	}
}

func (p *AnthropicProvider) Name() string { return anthropicName }

func (p *AnthropicProvider) endpoint(creds Credentials) string {
	if creds.Endpoint == "" {
		return anthropicDefaultEndpoint
	}
	ep := strings.TrimRight(creds.Endpoint, "/")
	if !strings.HasSuffix(ep, "/messages") {
		ep = strings.TrimSuffix(ep, "/v1") + "/v1/messages"
	}
	return ep
}

func (p *AnthropicProvider) modelID(creds Credentials) string {
	if creds.Model != "" {
		return creds.Model
	}
	return "claude-3-5-haiku-latest"
}

func (p *AnthropicProvider) Generate(ctx context.Context, creds Credentials, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	body := anthropicRequest{
		Model:       p.modelID(creds),
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: BuildUserPrompt(req)}},
		Temperature: 0.7,
		MaxTokens:   tokenBudget(req.Count, anthropicMaxTokens),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal anthropic request: %w", err)
	}

	resp, err := DoWithRetry(ctx, p.httpClient, p.retry, func() (*http.Request, error) {
		httpReq, err := http.NewRequest(http.MethodPost, p.endpoint(creds), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", creds.APIKey)
		httpReq.Header.Set("anthropic-version", anthropicVersion)
		return httpReq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider:   anthropicName,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	var envelope anthropicResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode anthropic response: %w", err)
	}
	if envelope.Error != nil {
		return nil, &Error{Provider: anthropicName, StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}

	var text strings.Builder
	for _, block := range envelope.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic returned no text content")
	}

	questions, err := NormalizeResponse(text.String())
	if err != nil {
		return nil, err
	}
	if total := envelope.Usage.InputTokens + envelope.Usage.OutputTokens; total > 0 {
		perQuestion := total / len(questions)
		for i := range questions {
			questions[i].TokenUsage = &perQuestion
		}
	}
	return questions, nil
}

func (p *AnthropicProvider) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	body := anthropicRequest{
		Model:     p.modelID(creds),
		Messages:  []chatMessage{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(creds), bytes.NewReader(payload))
	if err != nil {
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", creds.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Str("provider", anthropicName).Msg("Credential validation call failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
