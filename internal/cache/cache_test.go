package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagespace/gateway/pkg/types"
)

func TestDriveCache_SetThenGet(t *testing.T) {
	c := newDriveCache[string](time.Minute)
	_, ok := c.Get("d1")
	assert.False(t, ok)

	c.Set("d1", "value")
	v, ok := c.Get("d1")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestDriveCache_ExpiresAfterTTL(t *testing.T) {
	c := newDriveCache[string](time.Millisecond)
	c.Set("d1", "value")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("d1")
	assert.False(t, ok)
}

func TestDriveCache_Invalidate(t *testing.T) {
	c := newDriveCache[string](time.Minute)
	c.Set("d1", "value")
	c.Invalidate("d1")

	_, ok := c.Get("d1")
	assert.False(t, ok)
}

type fakePageTreeLoader struct {
	nodes []types.TreeNode
	err   error
	calls int
}

func (l *fakePageTreeLoader) LoadPageTree(driveID string) ([]types.TreeNode, error) {
	l.calls++
	return l.nodes, l.err
}

func TestPageTreeCache_PopulatesOnMiss(t *testing.T) {
	loader := &fakePageTreeLoader{nodes: []types.TreeNode{{ID: "p1"}}}
	c := NewPageTreeCache(loader)

	nodes, err := c.Get("d1")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
	assert.Equal(t, 1, loader.calls)

	_, err = c.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls, "second Get within TTL should not reload")
}

func TestPageTreeCache_InvalidateForcesReload(t *testing.T) {
	loader := &fakePageTreeLoader{nodes: []types.TreeNode{{ID: "p1"}}}
	c := NewPageTreeCache(loader)

	_, err := c.Get("d1")
	require.NoError(t, err)

	c.Invalidate("d1")
	_, err = c.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestPageTreeCache_LoaderErrorNotCached(t *testing.T) {
	loader := &fakePageTreeLoader{err: errors.New("db down")}
	c := NewPageTreeCache(loader)

	_, err := c.Get("d1")
	assert.Error(t, err)

	loader.err = nil
	loader.nodes = []types.TreeNode{{ID: "p1"}}
	nodes, err := c.Get("d1")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

type fakeAgentAwarenessLoader struct {
	agents []types.AgentSummary
	calls  int
}

func (l *fakeAgentAwarenessLoader) LoadAgentAwareness(driveID string) ([]types.AgentSummary, error) {
	l.calls++
	return l.agents, nil
}

func TestAgentAwarenessCache_PopulatesOnMissAndInvalidates(t *testing.T) {
	loader := &fakeAgentAwarenessLoader{agents: []types.AgentSummary{{ID: "a1"}}}
	c := NewAgentAwarenessCache(loader)

	agents, err := c.Get("d1")
	require.NoError(t, err)
	assert.Len(t, agents, 1)
	assert.Equal(t, 1, loader.calls)

	_, err = c.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	c.Invalidate("d1")
	_, err = c.Get("d1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}
