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
	openAIName            = "openai"
	openAIDefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	openAIMaxTokens       = 16384
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-style request body. The token-limit field name
// varies by vendor, so both are declared and exactly one is populated.
type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// chatClient implements the OpenAI-compatible wire protocol shared by
// several vendors. Vendor structs embed it with their own defaults.
type chatClient struct {
	name            string
	defaultEndpoint string
	defaultModel    string
	maxTokens       int
	// useCompletionTokens selects max_completion_tokens over max_tokens.
	useCompletionTokens bool

	httpClient *http.Client
	retry      RetryConfig
}

func (c *chatClient) Name() string { return c.name }

// endpoint resolves and normalizes the completion URL. Gateways are often
// configured with just a base URL, so a missing /chat/completions suffix
// is appended.
func (c *chatClient) endpoint(creds Credentials) string {
	ep := creds.Endpoint
	if ep == "" {
		return c.defaultEndpoint
	}
	ep = strings.TrimRight(ep, "/")
	if !strings.HasSuffix(ep, "/chat/completions") {
		ep += "/chat/completions"
	}
	return ep
}

func (c *chatClient) modelID(creds Credentials) string {
	if creds.Model != "" {
		return creds.Model
	}
	return c.defaultModel
}

func (c *chatClient) Generate(ctx context.Context, creds Credentials, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	body := chatRequest{
		Model: c.modelID(creds),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildUserPrompt(req)},
		},
		Temperature: 0.7,
	}
	budget := tokenBudget(req.Count, c.maxTokens)
	if c.useCompletionTokens {
		body.MaxCompletionTokens = budget
	} else {
		body.MaxTokens = budget
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	resp, err := DoWithRetry(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		httpReq, err := http.NewRequest(http.MethodPost, c.endpoint(creds), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+creds.APIKey)
		return httpReq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Provider:   c.name,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	var envelope chatResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", c.name, err)
	}
	if envelope.Error != nil {
		return nil, &Error{Provider: c.name, StatusCode: resp.StatusCode, Message: envelope.Error.Message}
	}
	if len(envelope.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.name)
	}

	questions, err := NormalizeResponse(envelope.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if envelope.Usage.TotalTokens > 0 {
		perQuestion := envelope.Usage.TotalTokens / len(questions)
		for i := range questions {
			questions[i].TokenUsage = &perQuestion
		}
	}
	return questions, nil
}

// ValidateCredentials issues a minimal one-token completion to probe the
// key. Any 2xx means the credentials work.
func (c *chatClient) ValidateCredentials(ctx context.Context, creds Credentials) bool {
	body := chatRequest{
		Model:    c.modelID(creds),
		Messages: []chatMessage{{Role: "user", Content: "ping"}},
	}
	if c.useCompletionTokens {
		body.MaxCompletionTokens = 1
	} else {
		body.MaxTokens = 1
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return false
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(creds), bytes.NewReader(payload))
	if err != nil {
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+creds.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Str("provider", c.name).Msg("Credential validation call failed")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// errorMessage pulls a human-readable message out of a vendor error body,
// falling back to a bounded raw snippet.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	s := string(raw)
	if len(s) > snippetLimit {
		s = s[:snippetLimit]
	}
	return s
}

// OpenAIProvider targets the OpenAI API. Newer OpenAI models reject
// max_tokens in favor of max_completion_tokens.
type OpenAIProvider struct {
	chatClient
}

func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{chatClient{
		name:                openAIName,
		defaultEndpoint:     openAIDefaultEndpoint,
		defaultModel:        "gpt-4o-mini",
		maxTokens:           openAIMaxTokens,
		useCompletionTokens: true,
		httpClient:          defaultHTTPClient,
		retry:               DefaultRetryConfig(),
	}}
}
