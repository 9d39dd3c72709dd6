package types

// AppConfig is the gateway's runtime configuration, resolved once at
// startup from environment variables (see internal/config) and merged with
// any on-disk provider/MCP declarations.
type AppConfig struct {
	WebAppURL              string   `json:"webAppUrl"`
	AdditionalAllowedOrigins []string `json:"additionalAllowedOrigins,omitempty"`
	OriginValidationMode   string   `json:"originValidationMode"` // "warn" | "block"
	CookieDomain           string   `json:"cookieDomain,omitempty"`
	CronSecret             string   `json:"-"`
	AuthSecret             string   `json:"-"` // keys session/MCP token hashing and CSRF HMAC binding
	ProcessorURL           string   `json:"processorUrl"`
	FileStoragePath        string   `json:"fileStoragePath"`
	DatabaseURL            string   `json:"-"`

	DefaultProviderKeyPointer string `json:"defaultProviderKeyPointer,omitempty"` // "glm" | "google"

	Provider map[string]ProviderConfig `json:"provider,omitempty"`
	MCP      map[string]MCPConfig      `json:"mcp,omitempty"`
}

// ProviderConfig holds configuration for a single LLM provider entry.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`
	Model   string `json:"model,omitempty"`
	Disable bool   `json:"disable,omitempty"`
}

// MCPConfig declares a remote or local MCP tool server.
type MCPConfig struct {
	Type        string            `json:"type,omitempty"` // "local" | "remote"
	Command     []string          `json:"command,omitempty"`
	URL         string            `json:"url,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty"`
	Timeout     int               `json:"timeout,omitempty"`
}

// Model represents an LLM model available from a provider.
type Model struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	ProviderID        string       `json:"providerID"`
	ContextLength     int          `json:"contextLength"`
	MaxOutputTokens   int          `json:"maxOutputTokens,omitempty"`
	SupportsTools     bool         `json:"supportsTools"`
	SupportsVision    bool         `json:"supportsVision"`
	SupportsReasoning bool         `json:"supportsReasoning,omitempty"`
	InputPrice        float64      `json:"inputPrice,omitempty"`  // USD per 1M input tokens
	OutputPrice       float64      `json:"outputPrice,omitempty"` // USD per 1M output tokens
	Options           ModelOptions `json:"options,omitempty"`
}

// ModelOptions contains model-specific generation options.
type ModelOptions struct {
	Temperature    *float64 `json:"temperature,omitempty"`
	TopP           *float64 `json:"topP,omitempty"`
	PromptCaching  bool     `json:"promptCaching,omitempty"`
	ExtendedOutput bool     `json:"extendedOutput,omitempty"`
}
