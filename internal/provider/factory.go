package provider

import (
	"context"
	"fmt"
)

// openAICompatible lists providers served by the OpenAI-shaped driver with
// a provider-specific base URL. google is included here: the Gemini REST
// surface is OpenAI-compatible and no dedicated Google SDK is wired (see
// DESIGN.md).
var openAICompatibleBaseURL = map[string]string{
	"openai":          "",
	"openrouter":      "https://openrouter.ai/api/v1",
	"openrouter_free": "https://openrouter.ai/api/v1",
	"google":          "https://generativelanguage.googleapis.com/v1beta/openai",
	"xai":             "https://api.x.ai/v1",
	"glm":             "https://open.bigmodel.cn/api/paas/v4",
	"ollama":          "",
	"lmstudio":        "",
}

// anthropicCompatible lists providers served by the Anthropic-messages
// shaped driver with a provider-specific base URL override.
var anthropicCompatibleBaseURL = map[string]string{
	"anthropic": "",
	"pagespace": "",
	"minimax":   "https://api.minimax.chat/v1",
}

// Factory constructs a Provider instance for a single resolved
// (provider, model, credentials) tuple. Unlike the teacher's startup-time
// registry, gateway providers carry per-user BYOK keys and so are built
// fresh per request rather than cached process-wide.
type Factory struct{}

// NewFactory returns a Factory. It has no state; it exists so future
// driver caching (e.g. connection pooling) has a natural home.
func NewFactory() *Factory {
	return &Factory{}
}

// New constructs a Provider for providerID using creds and modelID.
func (f *Factory) New(ctx context.Context, providerID, modelID string, creds Credentials) (Provider, error) {
	if !IsKnownProvider(providerID) {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}

	if baseURL, ok := anthropicCompatibleBaseURL[providerID]; ok {
		effectiveBaseURL := creds.BaseURL
		if effectiveBaseURL == "" {
			effectiveBaseURL = baseURL
		}
		return NewAnthropicProvider(ctx, &AnthropicConfig{
			ID:        providerID,
			APIKey:    creds.APIKey,
			BaseURL:   effectiveBaseURL,
			Model:     modelID,
			MaxTokens: 8192,
		})
	}

	if baseURL, ok := openAICompatibleBaseURL[providerID]; ok {
		effectiveBaseURL := creds.BaseURL
		if effectiveBaseURL == "" {
			effectiveBaseURL = baseURL
		}
		return NewOpenAIProvider(ctx, &OpenAIConfig{
			ID:        providerID,
			APIKey:    creds.APIKey,
			BaseURL:   effectiveBaseURL,
			Model:     modelID,
			MaxTokens: 4096,
		})
	}

	return nil, fmt.Errorf("no driver wired for provider %q", providerID)
}
