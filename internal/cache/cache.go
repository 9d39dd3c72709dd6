// Package cache holds the two process-local, driveId-keyed caches spec
// §4.11 describes: the page-tree cache and the agent-awareness cache.
// Grounded on the teacher's internal/agent.Registry (RWMutex-guarded map,
// get/register/unregister), generalized with a populate-on-miss callback
// and a TTL so a stale entry is treated the same as a missing one.
package cache

import (
	"sync"
	"time"

	"github.com/pagespace/gateway/pkg/types"
)

// DefaultTTL bounds how long a populated entry is served before the next
// read triggers a fresh populate. Explicit Invalidate calls (on page
// create/rename/trash/restore/move, or agent config changes) bypass this
// and evict immediately.
const DefaultTTL = 2 * time.Minute

type entry[T any] struct {
	value     T
	createdAt time.Time
}

// driveCache is the shared get/set/invalidate machinery behind both the
// page-tree and agent-awareness caches.
type driveCache[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
}

func newDriveCache[T any](ttl time.Duration) *driveCache[T] {
	return &driveCache[T]{ttl: ttl, entries: make(map[string]entry[T])}
}

// Get returns (value, true) if driveId has an unexpired entry.
func (c *driveCache[T]) Get(driveID string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[driveID]
	if !ok || time.Since(e.createdAt) > c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores value for driveId, stamped with the current time.
func (c *driveCache[T]) Set(driveID string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[driveID] = entry[T]{value: value, createdAt: time.Now()}
}

// Invalidate explicitly evicts driveId, regardless of TTL.
func (c *driveCache[T]) Invalidate(driveID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, driveID)
}

// PageTreeLoader fetches a drive's page tree on a cache miss, via a single
// ordered query (spec §4.11).
type PageTreeLoader interface {
	LoadPageTree(driveID string) ([]types.TreeNode, error)
}

// AgentAwarenessLoader fetches a drive's globally-visible AI_CHAT pages on a
// cache miss.
type AgentAwarenessLoader interface {
	LoadAgentAwareness(driveID string) ([]types.AgentSummary, error)
}

// PageTreeCache is the driveId -> ordered page-tree cache.
type PageTreeCache struct {
	cache  *driveCache[[]types.TreeNode]
	loader PageTreeLoader
}

// NewPageTreeCache constructs a PageTreeCache backed by loader.
func NewPageTreeCache(loader PageTreeLoader) *PageTreeCache {
	return &PageTreeCache{cache: newDriveCache[[]types.TreeNode](DefaultTTL), loader: loader}
}

// Get returns driveId's page tree, populating it from the loader on a miss
// or expiry.
func (c *PageTreeCache) Get(driveID string) ([]types.TreeNode, error) {
	if nodes, ok := c.cache.Get(driveID); ok {
		return nodes, nil
	}
	nodes, err := c.loader.LoadPageTree(driveID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(driveID, nodes)
	return nodes, nil
}

// Invalidate evicts driveId's cached tree. Callers must invoke this on
// every page create/rename/trash/restore/move (spec §4.11).
func (c *PageTreeCache) Invalidate(driveID string) {
	c.cache.Invalidate(driveID)
}

// AgentAwarenessCache is the driveId -> globally-visible-agent-summary
// cache.
type AgentAwarenessCache struct {
	cache  *driveCache[[]types.AgentSummary]
	loader AgentAwarenessLoader
}

// NewAgentAwarenessCache constructs an AgentAwarenessCache backed by loader.
func NewAgentAwarenessCache(loader AgentAwarenessLoader) *AgentAwarenessCache {
	return &AgentAwarenessCache{cache: newDriveCache[[]types.AgentSummary](DefaultTTL), loader: loader}
}

// Get returns driveId's agent summaries, populating on a miss or expiry.
func (c *AgentAwarenessCache) Get(driveID string) ([]types.AgentSummary, error) {
	if agents, ok := c.cache.Get(driveID); ok {
		return agents, nil
	}
	agents, err := c.loader.LoadAgentAwareness(driveID)
	if err != nil {
		return nil, err
	}
	c.cache.Set(driveID, agents)
	return agents, nil
}

// Invalidate evicts driveId's cached agent summaries. Callers must invoke
// this on agent config changes (spec §4.11).
func (c *AgentAwarenessCache) Invalidate(driveID string) {
	c.cache.Invalidate(driveID)
}
