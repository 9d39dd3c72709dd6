package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pagespace/gateway/pkg/types"
)

// KnownProviders is the fixed provider enumeration the gateway resolves
// against. Order matters only for display purposes.
var KnownProviders = []string{
	"pagespace", "openrouter", "openrouter_free", "google", "openai",
	"anthropic", "xai", "ollama", "lmstudio", "glm", "minimax",
}

// DefaultModelFor returns the model id the gateway proposes for a provider
// when the caller and the user's stored preference are both silent.
func DefaultModelFor(providerID string) string {
	switch providerID {
	case "pagespace", "anthropic":
		return "claude-sonnet-4-20250514"
	case "openrouter", "openrouter_free":
		return "anthropic/claude-sonnet-4"
	case "google":
		return "gemini-2.0-flash"
	case "openai":
		return "gpt-5"
	case "xai":
		return "grok-2-latest"
	case "glm":
		return "glm-4-plus"
	case "minimax":
		return "abab6.5s-chat"
	default:
		return ""
	}
}

// IsKnownProvider reports whether id is a member of the fixed enumeration.
func IsKnownProvider(id string) bool {
	for _, p := range KnownProviders {
		if p == id {
			return true
		}
	}
	return false
}

// Registry holds per-provider model catalogs used for listing; the
// capability oracle keeps its own map and does not read it. It does not
// hold live API keys: those are resolved
// per-request by ResolveCredentials and handed to Factory.New.
type Registry struct {
	mu     sync.RWMutex
	models map[string][]types.Model
}

// NewRegistry creates an empty registry seeded with the static model
// catalogs known to the gateway.
func NewRegistry() *Registry {
	r := &Registry{models: make(map[string][]types.Model)}
	r.seedDefaults()
	return r
}

// RegisterModels replaces the model catalog for a provider. No refresh
// path in the gateway calls it; the seeded lists stay in place otherwise.
func (r *Registry) RegisterModels(providerID string, models []types.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[providerID] = models
}

// Models returns the known models for a provider.
func (r *Registry) Models(providerID string) []types.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Model, len(r.models[providerID]))
	copy(out, r.models[providerID])
	return out
}

// GetModel retrieves a specific model from a provider's catalog.
func (r *Registry) GetModel(providerID, modelID string) (*types.Model, error) {
	for _, m := range r.Models(providerID) {
		if m.ID == modelID {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("model not found: %s/%s", providerID, modelID)
}

// AllModels returns every known model across every provider, sorted by a
// rough quality priority (most capable first).
func (r *Registry) AllModels() []types.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var models []types.Model
	for _, list := range r.models {
		models = append(models, list...)
	}

	sort.Slice(models, func(i, j int) bool {
		return modelPriority(models[i].ID) > modelPriority(models[j].ID)
	})

	return models
}

// ParseModelString parses "provider/model" format.
func ParseModelString(s string) (providerID, modelID string) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return "", s
}

func modelPriority(modelID string) int {
	switch {
	case strings.Contains(modelID, "gpt-5"):
		return 100
	case strings.Contains(modelID, "claude-sonnet-4"):
		return 90
	case strings.Contains(modelID, "claude-opus"):
		return 85
	case strings.Contains(modelID, "gpt-4o"):
		return 80
	case strings.Contains(modelID, "claude-3-5"):
		return 75
	case strings.Contains(modelID, "gemini-2"):
		return 70
	default:
		return 50
	}
}

// seedDefaults populates the minimal static catalog per provider that
// AllModels/GetModel serve.
func (r *Registry) seedDefaults() {
	r.models["anthropic"] = []types.Model{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", ProviderID: "anthropic", ContextLength: 200000, SupportsTools: true, SupportsVision: true},
		{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", ProviderID: "anthropic", ContextLength: 200000, SupportsTools: true, SupportsVision: true},
	}
	r.models["pagespace"] = r.models["anthropic"]
	r.models["openai"] = []types.Model{
		{ID: "gpt-5", Name: "GPT-5", ProviderID: "openai", ContextLength: 400000, SupportsTools: true, SupportsVision: true},
		{ID: "gpt-4o", Name: "GPT-4o", ProviderID: "openai", ContextLength: 128000, SupportsTools: true, SupportsVision: true},
	}
	r.models["google"] = []types.Model{
		{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", ProviderID: "google", ContextLength: 1000000, SupportsTools: true, SupportsVision: true},
	}
	r.models["xai"] = []types.Model{
		{ID: "grok-2-latest", Name: "Grok 2", ProviderID: "xai", ContextLength: 131072, SupportsTools: true, SupportsVision: true},
	}
	r.models["glm"] = []types.Model{
		{ID: "glm-4-plus", Name: "GLM-4 Plus", ProviderID: "glm", ContextLength: 128000, SupportsTools: true, SupportsVision: false},
	}
	r.models["minimax"] = []types.Model{
		{ID: "abab6.5s-chat", Name: "MiniMax abab6.5s", ProviderID: "minimax", ContextLength: 245000, SupportsTools: true, SupportsVision: false},
	}
	r.models["ollama"] = []types.Model{}
	r.models["lmstudio"] = []types.Model{}
	// openrouter/openrouter_free start empty and stay empty unless
	// RegisterModels fills them; the capability oracle's hourly OpenRouter
	// fetch only updates its own tool-capability map.
	r.models["openrouter"] = []types.Model{}
	r.models["openrouter_free"] = []types.Model{}
}
