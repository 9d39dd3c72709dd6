package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagespace/gateway/pkg/types"
)

// ErrNoDefaultKey is returned when the pagespace provider has neither a
// platform default key nor a user Google key to fall back to.
var ErrNoDefaultKey = errors.New("no default API key configured")

// ErrKeyNotConfigured is returned when a provider requiring a per-user key
// has none on file and none was supplied in the request.
var ErrKeyNotConfigured = errors.New("API key not configured")

// KeyStore persists and retrieves a user's provider credentials. Backed by
// internal/db in production; tests may supply an in-memory fake.
type KeyStore interface {
	Get(ctx context.Context, userID, providerID string) (*types.ProviderKey, error)
	Put(ctx context.Context, key *types.ProviderKey) error
}

// Credentials is the resolved (apiKey, baseURL) pair a Factory uses to
// construct a provider instance for a single request.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// ResolveCredentials implements the provider key-resolution rules: the
// platform default key for pagespace, the shared OpenRouter key store for
// openrouter/openrouter_free, per-provider keys everywhere else, and no key
// at all for the local ollama/lmstudio backends. requestKey, if non-empty,
// is a key supplied directly in the request body; on success it is
// persisted to store before use.
func ResolveCredentials(ctx context.Context, cfg *types.AppConfig, store KeyStore, userID, providerID, requestKey string) (Credentials, error) {
	if requestKey != "" {
		if err := store.Put(ctx, &types.ProviderKey{UserID: userID, Provider: providerID, APIKey: requestKey}); err != nil {
			return Credentials{}, fmt.Errorf("persist provider key: %w", err)
		}
	}

	switch providerID {
	case "pagespace":
		return resolvePagespace(ctx, cfg, store, userID, requestKey)

	case "openrouter", "openrouter_free":
		if requestKey != "" {
			return Credentials{APIKey: requestKey}, nil
		}
		key, err := store.Get(ctx, userID, "openrouter")
		if err != nil || key == nil || key.APIKey == "" {
			return Credentials{}, fmt.Errorf("OpenRouter %w", ErrKeyNotConfigured)
		}
		return Credentials{APIKey: key.APIKey}, nil

	case "ollama", "lmstudio":
		key, err := store.Get(ctx, userID, providerID)
		baseURL := ""
		if err == nil && key != nil {
			baseURL = key.BaseURL
		}
		if requestKey != "" {
			baseURL = requestKey
		}
		if baseURL == "" {
			return Credentials{}, fmt.Errorf("%s base URL not configured", providerID)
		}
		return Credentials{BaseURL: baseURL}, nil

	case "google", "openai", "anthropic", "xai", "glm", "minimax":
		if requestKey != "" {
			return Credentials{APIKey: requestKey}, nil
		}
		key, err := store.Get(ctx, userID, providerID)
		if err != nil || key == nil || key.APIKey == "" {
			return Credentials{}, fmt.Errorf("%s %w", providerID, ErrKeyNotConfigured)
		}
		return Credentials{APIKey: key.APIKey, BaseURL: key.BaseURL}, nil

	default:
		return Credentials{}, fmt.Errorf("unknown provider %q", providerID)
	}
}

// resolvePagespace implements the pagespace fallback chain: platform
// default key (GLM or Google, per config.DefaultProviderKeyPointer) first,
// then the user's own Google key.
func resolvePagespace(ctx context.Context, cfg *types.AppConfig, store KeyStore, userID, requestKey string) (Credentials, error) {
	if requestKey != "" {
		return Credentials{APIKey: requestKey}, nil
	}

	switch cfg.DefaultProviderKeyPointer {
	case "glm":
		if pc, ok := cfg.Provider["glm"]; ok && pc.APIKey != "" {
			return Credentials{APIKey: pc.APIKey, BaseURL: pc.BaseURL}, nil
		}
	case "google":
		if pc, ok := cfg.Provider["google"]; ok && pc.APIKey != "" {
			return Credentials{APIKey: pc.APIKey, BaseURL: pc.BaseURL}, nil
		}
	}

	if key, err := store.Get(ctx, userID, "google"); err == nil && key != nil && key.APIKey != "" {
		return Credentials{APIKey: key.APIKey, BaseURL: key.BaseURL}, nil
	}

	return Credentials{}, ErrNoDefaultKey
}

// EffectiveSelection applies the "explicit request ?? user preference ??
// platform default" fallback chain for provider and model selection.
func EffectiveSelection(requestedProvider, requestedModel string, user *types.User) (providerID, modelID string) {
	providerID = requestedProvider
	if providerID == "" {
		providerID = user.CurrentAIProvider
	}
	if providerID == "" {
		providerID = "pagespace"
	}

	modelID = requestedModel
	if modelID == "" {
		modelID = user.CurrentAIModel
	}
	if modelID == "" {
		modelID = DefaultModelFor(providerID)
	}

	return providerID, modelID
}
