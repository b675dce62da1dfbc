package provider

const (
	deepSeekName            = "deepseek"
	deepSeekDefaultEndpoint = "https://api.deepseek.com/chat/completions"
	deepSeekMaxTokens       = 8192
)

// DeepSeekProvider targets the DeepSeek API, which is OpenAI-compatible
// but still uses the max_tokens field.
type DeepSeekProvider struct {
	chatClient
}

func NewDeepSeekProvider() *DeepSeekProvider {
	return &DeepSeekProvider{chatClient{
		name:            deepSeekName,
		defaultEndpoint: deepSeekDefaultEndpoint,
		defaultModel:    "deepseek-chat",
		maxTokens:       deepSeekMaxTokens,
		httpClient:      defaultHTTPClient,
		retry:           DefaultRetryConfig(),
	}}
}
