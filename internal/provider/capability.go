package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// nonVisionDenyList matches model ids that look vision-capable by name but
// are explicitly text-only.
var nonVisionDenyList = []string{"o1-mini", "o3-mini", "o4-mini"}

// visionNamePatterns matches substrings that indicate multimodal input
// support when no per-model table entry exists.
var visionNamePatterns = []string{
	"vision", "-v-", "gpt-5", "gpt-4o", "claude-3", "claude-4", "gemini", "grok",
}

// toolCapabilityDenyList lists model families known not to support tool
// calling regardless of provider.
var toolCapabilityDenyList = []string{"gemma"}

// HasVisionCapability reports whether model supports image input, using a
// name-pattern heuristic with an explicit deny-list for reasoning-only
// variants whose names would otherwise match.
func HasVisionCapability(modelID string) bool {
	lower := strings.ToLower(modelID)
	for _, deny := range nonVisionDenyList {
		if strings.Contains(lower, deny) {
			return false
		}
	}
	for _, pattern := range visionNamePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// CapabilityOracle answers tool-calling capability questions, backed by a
// static deny-list plus a live OpenRouter capability map refreshed at most
// once an hour and memoized per (provider, model) for the process
// lifetime.
type CapabilityOracle struct {
	httpClient *http.Client

	memo sync.Map // key: provider+"/"+model -> bool

	refreshOnce  sync.Once
	refreshMu    sync.Mutex
	lastRefresh  time.Time
	openRouterNo map[string]bool // model ids known NOT to support tools
}

// NewCapabilityOracle constructs an oracle ready for use.
func NewCapabilityOracle() *CapabilityOracle {
	return &CapabilityOracle{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		openRouterNo: make(map[string]bool),
	}
}

// HasToolCapability reports whether (provider, model) supports tool
// calling. For OpenRouter/OpenRouter-free it consults a live capability
// map, refreshed lazily and throttled to once per hour.
func (c *CapabilityOracle) HasToolCapability(ctx context.Context, providerID, modelID string) bool {
	key := providerID + "/" + modelID
	if v, ok := c.memo.Load(key); ok {
		return v.(bool)
	}

	result := c.computeToolCapability(ctx, providerID, modelID)
	c.memo.Store(key, result)
	return result
}

func (c *CapabilityOracle) computeToolCapability(ctx context.Context, providerID, modelID string) bool {
	lower := strings.ToLower(modelID)
	for _, deny := range toolCapabilityDenyList {
		if strings.Contains(lower, deny) {
			return false
		}
	}

	if providerID == "openrouter" || providerID == "openrouter_free" {
		c.maybeRefreshOpenRouter(ctx)
		c.refreshMu.Lock()
		denied := c.openRouterNo[modelID]
		c.refreshMu.Unlock()
		return !denied
	}

	return true
}

// maybeRefreshOpenRouter refreshes the OpenRouter capability map if the
// last refresh is more than an hour old. Started lazily; guarded so only
// one goroutine performs the HTTP round trip at a time.
func (c *CapabilityOracle) maybeRefreshOpenRouter(ctx context.Context) {
	c.refreshMu.Lock()
	stale := time.Since(c.lastRefresh) > time.Hour
	c.refreshMu.Unlock()
	if !stale {
		return
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if time.Since(c.lastRefresh) <= time.Hour {
		return // another goroutine already refreshed while we waited
	}

	noTools, err := c.fetchOpenRouterModels(ctx)
	if err != nil {
		// Leave the previous map in place; try again on the next call.
		return
	}
	c.openRouterNo = noTools
	c.lastRefresh = time.Now()
}

type openRouterModelsResponse struct {
	Data []struct {
		ID                   string   `json:"id"`
		SupportedParameters  []string `json:"supported_parameters"`
	} `json:"data"`
}

// fetchOpenRouterModels retrieves OpenRouter's public model list and
// returns the set of model ids that do NOT advertise "tools" support,
// retrying transient failures with exponential backoff.
func (c *CapabilityOracle) fetchOpenRouterModels(ctx context.Context) (map[string]bool, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://openrouter.ai/api/v1/models", nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &httpStatusError{resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&httpStatusError{resp.StatusCode})
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	var parsed openRouterModelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	noTools := make(map[string]bool)
	for _, m := range parsed.Data {
		supportsTools := false
		for _, p := range m.SupportedParameters {
			if p == "tools" {
				supportsTools = true
				break
			}
		}
		if !supportsTools {
			noTools[m.ID] = true
		}
	}
	return noTools, nil
}

type httpStatusError struct{ code int }

func (e *httpStatusError) Error() string {
	return "openrouter models endpoint returned unexpected status"
}
