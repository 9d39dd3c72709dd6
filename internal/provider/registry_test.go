package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/pkg/types"
)

func TestRegistry_SeedsKnownProviders(t *testing.T) {
	registry := NewRegistry()

	models := registry.Models("anthropic")
	require.NotEmpty(t, models)
	assert.Equal(t, "anthropic", models[0].ProviderID)
}

func TestRegistry_GetModel(t *testing.T) {
	registry := NewRegistry()

	m, err := registry.GetModel("anthropic", "claude-sonnet-4-20250514")
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", m.ID)

	_, err = registry.GetModel("anthropic", "nonexistent")
	assert.Error(t, err)

	_, err = registry.GetModel("nonexistent", "model-a")
	assert.Error(t, err)
}

func TestRegistry_AllModels_SortedByPriority(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterModels("p1", []types.Model{{ID: "gpt-4o-latest", Name: "GPT-4o"}})
	registry.RegisterModels("p2", []types.Model{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4"},
		{ID: "claude-3-5-sonnet", Name: "Claude 3.5 Sonnet"},
	})
	registry.RegisterModels("anthropic", nil)
	registry.RegisterModels("pagespace", nil)
	registry.RegisterModels("openai", nil)
	registry.RegisterModels("google", nil)
	registry.RegisterModels("xai", nil)
	registry.RegisterModels("glm", nil)
	registry.RegisterModels("minimax", nil)
	registry.RegisterModels("ollama", nil)
	registry.RegisterModels("lmstudio", nil)
	registry.RegisterModels("openrouter", nil)
	registry.RegisterModels("openrouter_free", nil)

	models := registry.AllModels()
	require.Len(t, models, 3)
	assert.Equal(t, "claude-sonnet-4-20250514", models[0].ID)
}

func TestRegistry_RegisterModels_Replaces(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterModels("openrouter", []types.Model{{ID: "x/y", ProviderID: "openrouter"}})
	got := registry.Models("openrouter")
	require.Len(t, got, 1)
	assert.Equal(t, "x/y", got[0].ID)
}

func TestParseModelString(t *testing.T) {
	p, m := ParseModelString("anthropic/claude-sonnet-4")
	assert.Equal(t, "anthropic", p)
	assert.Equal(t, "claude-sonnet-4", m)

	p, m = ParseModelString("bare-model")
	assert.Equal(t, "", p)
	assert.Equal(t, "bare-model", m)
}

func TestIsKnownProvider(t *testing.T) {
	assert.True(t, IsKnownProvider("pagespace"))
	assert.True(t, IsKnownProvider("lmstudio"))
	assert.False(t, IsKnownProvider("bedrock"))
}

func TestDefaultModelFor(t *testing.T) {
	assert.NotEmpty(t, DefaultModelFor("pagespace"))
	assert.NotEmpty(t, DefaultModelFor("openai"))
	assert.Empty(t, DefaultModelFor("unknown-provider"))
}

func TestEffectiveSelection(t *testing.T) {
	user := &types.User{CurrentAIProvider: "openai", CurrentAIModel: "gpt-4o"}

	p, m := EffectiveSelection("", "", user)
	assert.Equal(t, "openai", p)
	assert.Equal(t, "gpt-4o", m)

	p, m = EffectiveSelection("anthropic", "claude-sonnet-4-20250514", user)
	assert.Equal(t, "anthropic", p)
	assert.Equal(t, "claude-sonnet-4-20250514", m)

	p, _ = EffectiveSelection("", "", &types.User{})
	assert.Equal(t, "pagespace", p)
}

// fakeKeyStore is an in-memory KeyStore for testing ResolveCredentials.
type fakeKeyStore struct {
	keys map[string]*types.ProviderKey
	puts []*types.ProviderKey
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: make(map[string]*types.ProviderKey)}
}

func (f *fakeKeyStore) Get(ctx context.Context, userID, providerID string) (*types.ProviderKey, error) {
	return f.keys[userID+"/"+providerID], nil
}

func (f *fakeKeyStore) Put(ctx context.Context, key *types.ProviderKey) error {
	f.keys[key.UserID+"/"+key.Provider] = key
	f.puts = append(f.puts, key)
	return nil
}

func TestResolveCredentials_Pagespace_PlatformDefault(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{
		DefaultProviderKeyPointer: "glm",
		Provider: map[string]types.ProviderConfig{
			"glm": {APIKey: "platform-glm-key"},
		},
	}

	creds, err := ResolveCredentials(context.Background(), cfg, store, "u1", "pagespace", "")
	require.NoError(t, err)
	assert.Equal(t, "platform-glm-key", creds.APIKey)
}

func TestResolveCredentials_Pagespace_FallsBackToUserGoogleKey(t *testing.T) {
	store := newFakeKeyStore()
	store.keys["u1/google"] = &types.ProviderKey{UserID: "u1", Provider: "google", APIKey: "user-google-key"}
	cfg := &types.AppConfig{}

	creds, err := ResolveCredentials(context.Background(), cfg, store, "u1", "pagespace", "")
	require.NoError(t, err)
	assert.Equal(t, "user-google-key", creds.APIKey)
}

func TestResolveCredentials_Pagespace_NoKey(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{}

	_, err := ResolveCredentials(context.Background(), cfg, store, "u1", "pagespace", "")
	assert.ErrorIs(t, err, ErrNoDefaultKey)
}

func TestResolveCredentials_OpenRouter_SharesKeyAcrossFreeTier(t *testing.T) {
	store := newFakeKeyStore()
	store.keys["u1/openrouter"] = &types.ProviderKey{UserID: "u1", Provider: "openrouter", APIKey: "or-key"}
	cfg := &types.AppConfig{}

	creds, err := ResolveCredentials(context.Background(), cfg, store, "u1", "openrouter_free", "")
	require.NoError(t, err)
	assert.Equal(t, "or-key", creds.APIKey)
}

func TestResolveCredentials_OpenRouter_MissingKey(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{}

	_, err := ResolveCredentials(context.Background(), cfg, store, "u1", "openrouter", "")
	assert.Error(t, err)
}

func TestResolveCredentials_Ollama_RequiresBaseURL(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{}

	_, err := ResolveCredentials(context.Background(), cfg, store, "u1", "ollama", "")
	assert.Error(t, err)

	creds, err := ResolveCredentials(context.Background(), cfg, store, "u1", "ollama", "http://localhost:11434")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434", creds.BaseURL)
}

func TestResolveCredentials_RequestKeyIsPersisted(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{}

	_, err := ResolveCredentials(context.Background(), cfg, store, "u1", "anthropic", "sk-fresh")
	require.NoError(t, err)
	require.Len(t, store.puts, 1)
	assert.Equal(t, "sk-fresh", store.puts[0].APIKey)
}

func TestResolveCredentials_UnknownProvider(t *testing.T) {
	store := newFakeKeyStore()
	cfg := &types.AppConfig{}

	_, err := ResolveCredentials(context.Background(), cfg, store, "u1", "bedrock", "")
	assert.Error(t, err)
}
