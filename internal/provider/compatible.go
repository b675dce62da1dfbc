package provider

const compatibleName = "openai_compatible"

// CompatibleProvider targets self-hosted or gateway deployments that speak
// the OpenAI wire protocol (vLLM, Ollama, LiteLLM and the like). There is
// no sensible default endpoint; the credential set must supply one, which
// the chatClient normalizes with the /chat/completions suffix.
type CompatibleProvider struct {
	chatClient
}

func NewCompatibleProvider() *CompatibleProvider {
	return &CompatibleProvider{chatClient{
		name:       compatibleName,
		maxTokens:  8192,
		httpClient: defaultHTTPClient,
		retry:      DefaultRetryConfig(),
	}}
}
