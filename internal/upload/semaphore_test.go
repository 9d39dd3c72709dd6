package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestTierSemaphores_AcquireUpToCapacity(t *testing.T) {
	ts := NewTierSemaphores(map[string]TierConfig{
		"free": {MaxConcurrent: 2, StartsPerSecond: rate.Inf, Burst: 10},
	})

	s1, ok1 := ts.TryAcquire("free")
	s2, ok2 := ts.TryAcquire("free")
	_, ok3 := ts.TryAcquire("free")

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.False(t, ok3)

	ts.Release("free", s1)
	_, ok4 := ts.TryAcquire("free")
	assert.True(t, ok4)

	ts.Release("free", s2)
}

func TestTierSemaphores_RateLimited(t *testing.T) {
	ts := NewTierSemaphores(map[string]TierConfig{
		"free": {MaxConcurrent: 10, StartsPerSecond: 0, Burst: 1},
	})

	_, ok1 := ts.TryAcquire("free")
	_, ok2 := ts.TryAcquire("free")

	assert.True(t, ok1)
	assert.False(t, ok2)
}

func TestTierSemaphores_UnconfiguredTierAlwaysAdmits(t *testing.T) {
	ts := NewTierSemaphores(nil)
	slot, ok := ts.TryAcquire("unknown")
	assert.True(t, ok)
	assert.NotPanics(t, func() { ts.Release("unknown", slot) })
}

func TestTierSemaphores_ReleaseNilSlotIsNoOp(t *testing.T) {
	ts := NewTierSemaphores(map[string]TierConfig{"free": {MaxConcurrent: 1, StartsPerSecond: rate.Inf, Burst: 1}})
	assert.NotPanics(t, func() { ts.Release("free", nil) })
}
