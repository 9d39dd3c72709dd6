package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/pagespace/gateway/pkg/types"
)

type fakeMemory struct{ ok bool; reason string }

func (m fakeMemory) Admit() (bool, string) { return m.ok, m.reason }

type fakeQuota struct {
	user    *types.User
	ok      bool
	incErr  error
	incCall int64
}

func (q *fakeQuota) CheckQuota(_ context.Context, _ string, _ int64) (*types.User, bool, error) {
	return q.user, q.ok, nil
}
func (q *fakeQuota) IncrementUsage(_ context.Context, _ string, delta int64) error {
	q.incCall += delta
	return q.incErr
}

type fakeTokens struct{}

func (fakeTokens) IssueUploadToken(_ context.Context, _ string) (string, error) { return "tok", nil }

type fakeProcessor struct {
	result *ProcessorResult
	err    error
}

func (p *fakeProcessor) Process(_ context.Context, _, _, _ string, _ io.Reader) (*ProcessorResult, error) {
	return p.result, p.err
}

type fakePages struct {
	siblings []types.Page
	created  []*types.Page
}

func (p *fakePages) Siblings(_ context.Context, _ string, _ *string) ([]types.Page, error) {
	return p.siblings, nil
}
func (p *fakePages) FindPage(_ context.Context, _, id string) (*types.Page, bool, error) {
	for _, pg := range p.siblings {
		if pg.ID == id {
			return &pg, true, nil
		}
	}
	return nil, false, nil
}
func (p *fakePages) CreatePage(_ context.Context, page *types.Page) (*types.Page, error) {
	p.created = append(p.created, page)
	return page, nil
}

type fakeActive struct{ incremented, decremented int }

func (a *fakeActive) Increment(_ string) { a.incremented++ }
func (a *fakeActive) Decrement(_ string) { a.decremented++ }

func newTestPipeline(quota *fakeQuota, processor *fakeProcessor, pages *fakePages, active *fakeActive) *Pipeline {
	return &Pipeline{
		Memory:     fakeMemory{ok: true},
		Quota:      quota,
		Semaphores: NewTierSemaphores(map[string]TierConfig{"free": {MaxConcurrent: 1, StartsPerSecond: rate.Inf, Burst: 1}}),
		Processor:  processor,
		Tokens:     fakeTokens{},
		Pages:      pages,
		Active:     active,
	}
}

func TestUpload_MemoryRefusalReturns503(t *testing.T) {
	p := newTestPipeline(&fakeQuota{ok: true, user: &types.User{}}, &fakeProcessor{}, &fakePages{}, &fakeActive{})
	p.Memory = fakeMemory{ok: false, reason: "low memory"}

	out := p.Upload(context.Background(), Request{Tier: "free"})
	assert.Equal(t, 503, out.StatusCode)
	assert.Equal(t, "low memory", out.Reason)
}

func TestUpload_QuotaRefusalReturns413(t *testing.T) {
	quota := &fakeQuota{ok: false, user: &types.User{UsedBytes: 990, QuotaBytes: 1000}}
	p := newTestPipeline(quota, &fakeProcessor{}, &fakePages{}, &fakeActive{})

	out := p.Upload(context.Background(), Request{Tier: "free", Size: 20})
	assert.Equal(t, 413, out.StatusCode)
	assert.Contains(t, out.Reason, "exceed quota")
}

func TestUpload_SemaphoreExhaustedReturns429(t *testing.T) {
	quota := &fakeQuota{ok: true, user: &types.User{}}
	p := newTestPipeline(quota, &fakeProcessor{result: &ProcessorResult{ContentHash: "h", Size: 1}}, &fakePages{}, &fakeActive{})

	slot, ok := p.Semaphores.TryAcquire("free")
	require.True(t, ok)
	defer p.Semaphores.Release("free", slot)

	out := p.Upload(context.Background(), Request{Tier: "free"})
	assert.Equal(t, 429, out.StatusCode)
}

func TestUpload_ProcessorFailureRecordsFailedPageAndReturns500(t *testing.T) {
	quota := &fakeQuota{ok: true, user: &types.User{}}
	pages := &fakePages{}
	active := &fakeActive{}
	p := newTestPipeline(quota, &fakeProcessor{err: errors.New("processor down")}, pages, active)

	out := p.Upload(context.Background(), Request{Tier: "free", Title: "doc", DriveID: "d1", Content: bytes.NewReader(nil)})
	assert.Equal(t, 500, out.StatusCode)
	require.Len(t, pages.created, 1)
	assert.Equal(t, types.ProcessingStatusFailed, pages.created[0].ProcessingStatus)
	assert.Equal(t, 1, active.incremented)
	assert.Equal(t, 1, active.decremented)
}

func TestUpload_SuccessReturns200WhenDeduplicated(t *testing.T) {
	quota := &fakeQuota{ok: true, user: &types.User{}}
	pages := &fakePages{}
	active := &fakeActive{}
	p := newTestPipeline(quota, &fakeProcessor{result: &ProcessorResult{ContentHash: "hash1", Deduplicated: true, Size: 42}}, pages, active)

	out := p.Upload(context.Background(), Request{
		Tier: "free", DriveID: "d1", Title: "invoice.pdf", MimeType: "application/pdf", Size: 42,
		Content: bytes.NewReader([]byte("data")),
	})

	require.Equal(t, 200, out.StatusCode)
	require.Len(t, pages.created, 1)
	assert.Equal(t, types.ProcessingStatusCompleted, pages.created[0].ProcessingStatus)
	assert.Equal(t, int64(42), quota.incCall)
	assert.Equal(t, 1, active.incremented)
	assert.Equal(t, 1, active.decremented)
}

func TestUpload_SuccessReturns202WhenJobsPending(t *testing.T) {
	quota := &fakeQuota{ok: true, user: &types.User{}}
	pages := &fakePages{}
	active := &fakeActive{}
	p := newTestPipeline(quota, &fakeProcessor{result: &ProcessorResult{ContentHash: "hash2", Size: 10, Jobs: []string{"thumbnail"}}}, pages, active)

	out := p.Upload(context.Background(), Request{
		Tier: "free", DriveID: "d1", Title: "photo.png", MimeType: "image/png", Size: 10,
		Content: bytes.NewReader([]byte("data")),
	})

	require.Equal(t, 202, out.StatusCode)
	assert.Equal(t, types.ProcessingStatusVisual, pages.created[0].ProcessingStatus)
}
