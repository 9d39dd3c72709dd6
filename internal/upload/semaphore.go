package upload

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TierConfig bounds one subscription tier's concurrent uploads and the
// rate at which new ones may start, grounded on goadesign-goa-ai's
// AdaptiveRateLimiter (features/model/middleware/ratelimit.go): a
// token-bucket rate.Limiter in front of a bounded concurrency slot pool,
// simplified here to fixed (non-adaptive) limits since spec §5 only asks
// for a bounded counter with a non-blocking acquire.
type TierConfig struct {
	MaxConcurrent   int
	StartsPerSecond rate.Limit
	Burst           int
}

// TierSemaphores is the per-tier upload-concurrency gate (spec §4.10 step 4,
// §5 "Upload semaphore"). Acquisition is non-blocking: it returns an opaque
// slot handle, or ok=false if the tier has no free slot or is rate-limited.
type TierSemaphores struct {
	mu     sync.Mutex
	slots  map[string]chan struct{}
	limits map[string]*rate.Limiter
}

// NewTierSemaphores builds the gate from a tier -> config map.
func NewTierSemaphores(tiers map[string]TierConfig) *TierSemaphores {
	ts := &TierSemaphores{
		slots:  make(map[string]chan struct{}),
		limits: make(map[string]*rate.Limiter),
	}
	for tier, cfg := range tiers {
		ts.slots[tier] = make(chan struct{}, cfg.MaxConcurrent)
		ts.limits[tier] = rate.NewLimiter(cfg.StartsPerSecond, cfg.Burst)
	}
	return ts
}

// Slot is the opaque handle TryAcquire returns. Release does not track
// which handles were already released: each call with a non-nil handle
// frees one slot of the tier.
type Slot struct{}

// TryAcquire attempts to claim a concurrency slot and a rate-limiter token
// for tier, both non-blocking. An unrecognized tier is treated as having a
// single always-available slot with no rate limit, so an unconfigured tier
// never wedges admission shut.
func (ts *TierSemaphores) TryAcquire(tier string) (*Slot, bool) {
	ts.mu.Lock()
	ch, ok := ts.slots[tier]
	limiter, hasLimiter := ts.limits[tier]
	ts.mu.Unlock()

	if !ok {
		return &Slot{}, true
	}
	if hasLimiter && !limiter.AllowN(time.Now(), 1) {
		return nil, false
	}

	select {
	case ch <- struct{}{}:
		return &Slot{}, true
	default:
		return nil, false
	}
}

// Release returns slot to tier's pool. A nil slot (a failed acquisition)
// and any slot of an unconfigured tier are no-ops, so a single deferred
// Release after TryAcquire is always safe.
func (ts *TierSemaphores) Release(tier string, slot *Slot) {
	if slot == nil {
		return
	}
	ts.mu.Lock()
	ch, ok := ts.slots[tier]
	ts.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-ch:
	default:
	}
}
