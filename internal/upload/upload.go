// Package upload implements the admission pipeline a single file upload
// passes through: memory pressure check, storage-quota check, a per-tier
// concurrency semaphore, filename sanitization, processor dispatch, and
// fractional sibling-position placement. Grounded on the teacher's
// internal/tool/write.go (input-validate-then-execute shape) and
// internal/storage/lock.go's guaranteed-release discipline, generalized
// from a single file lock to a semaphore-slot/counter pair that must be
// released on every exit path.
package upload

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/pagespace/gateway/pkg/types"
)

// MemoryMonitor reports whether the process has headroom to accept another
// upload. A real implementation samples runtime.MemStats or a cgroup limit.
type MemoryMonitor interface {
	Admit() (ok bool, reason string)
}

// QuotaService answers whether a user has room for fileSize more bytes and
// records usage once an upload completes.
type QuotaService interface {
	CheckQuota(ctx context.Context, userID string, fileSize int64) (*types.User, bool, error)
	IncrementUsage(ctx context.Context, userID string, delta int64) error
}

// ProcessorResult is what the out-of-process file processor reports after
// ingesting an upload.
type ProcessorResult struct {
	ContentHash  string
	Deduplicated bool
	Size         int64
	Jobs         []string
}

// Processor dispatches the raw bytes to the out-of-process file processor
// using a short-lived service token scoped to files:write.
type Processor interface {
	Process(ctx context.Context, serviceToken, filename, mimeType string, content io.Reader) (*ProcessorResult, error)
}

// ServiceTokens mints the short-lived token Processor.Process presents.
type ServiceTokens interface {
	IssueUploadToken(ctx context.Context, userID string) (string, error)
}

// Pages is the subset of page persistence the upload pipeline needs: sibling
// lookups for position computation and inserting the resulting FILE page.
type Pages interface {
	Siblings(ctx context.Context, driveID string, parentID *string) ([]types.Page, error)
	FindPage(ctx context.Context, driveID, pageID string) (*types.Page, bool, error)
	CreatePage(ctx context.Context, page *types.Page) (*types.Page, error)
}

// ActiveUploads tracks each user's in-flight upload count, incremented and
// decremented in matched pairs around the processor call.
type ActiveUploads interface {
	Increment(userID string)
	Decrement(userID string)
}

// Request is one upload admission request; Auth (C1) has already run.
type Request struct {
	UserID      string
	Tier        string
	DriveID     string
	ParentID    *string
	Title       string
	Position    string // "before", "after", or "" (append)
	AfterNodeID string
	Filename    string
	MimeType    string
	Size        int64
	Content     io.Reader
}

// Outcome is the HTTP-shaped result of one admission attempt.
type Outcome struct {
	StatusCode int
	Reason     string
	Page       *types.Page
}

// Pipeline wires the admission stages together.
type Pipeline struct {
	Memory     MemoryMonitor
	Quota      QuotaService
	Semaphores *TierSemaphores
	Processor  Processor
	Tokens     ServiceTokens
	Pages      Pages
	Active     ActiveUploads
}

// Upload runs the full admission pipeline for req (spec §4.10).
func (p *Pipeline) Upload(ctx context.Context, req Request) Outcome {
	if ok, reason := p.Memory.Admit(); !ok {
		return Outcome{StatusCode: 503, Reason: reason}
	}

	user, ok, err := p.Quota.CheckQuota(ctx, req.UserID, req.Size)
	if err != nil {
		return Outcome{StatusCode: 500, Reason: "quota check failed"}
	}
	if !ok {
		return Outcome{StatusCode: 413, Reason: fmt.Sprintf(
			"upload would exceed quota: %s used of %s",
			humanize.Bytes(uint64(user.UsedBytes+req.Size)), humanize.Bytes(uint64(user.QuotaBytes)))}
	}

	slot, acquired := p.Semaphores.TryAcquire(req.Tier)
	if !acquired {
		return Outcome{StatusCode: 429, Reason: "too many concurrent uploads for this tier"}
	}
	defer p.Semaphores.Release(req.Tier, slot)

	p.Active.Increment(req.UserID)
	defer p.Active.Decrement(req.UserID)

	filename := SanitizeFilename(req.Filename)

	token, err := p.Tokens.IssueUploadToken(ctx, req.UserID)
	if err != nil {
		return Outcome{StatusCode: 500, Reason: "could not issue processor token"}
	}

	result, err := p.Processor.Process(ctx, token, filename, req.MimeType, req.Content)
	if err != nil {
		log.Error().Err(err).Str("userId", req.UserID).Str("filename", filename).Msg("file processor rejected upload")
		failed := &types.Page{
			DriveID:          req.DriveID,
			ParentID:         req.ParentID,
			Title:            req.Title,
			Type:             types.PageTypeFile,
			OriginalFileName: filename,
			MimeType:         req.MimeType,
			ProcessingStatus: types.ProcessingStatusFailed,
		}
		if _, createErr := p.Pages.CreatePage(ctx, failed); createErr != nil {
			log.Error().Err(createErr).Msg("failed to record failed-upload page")
		}
		return Outcome{StatusCode: 500, Reason: "processor failed to ingest file", Page: failed}
	}

	position, posErr := p.computePosition(ctx, req)
	if posErr != nil {
		return Outcome{StatusCode: 500, Reason: posErr.Error()}
	}

	status := types.ProcessingStatusPending
	switch {
	case result.Deduplicated:
		status = types.ProcessingStatusCompleted
	case isImageMIME(req.MimeType):
		status = types.ProcessingStatusVisual
	}

	page := &types.Page{
		DriveID:          req.DriveID,
		ParentID:         req.ParentID,
		Title:            titleOrFilename(req.Title, filename),
		Type:             types.PageTypeFile,
		Position:         position,
		FileSize:         result.Size,
		MimeType:         req.MimeType,
		OriginalFileName: filename,
		FilePath:         result.ContentHash,
		ProcessingStatus: status,
	}

	created, err := p.Pages.CreatePage(ctx, page)
	if err != nil {
		return Outcome{StatusCode: 500, Reason: "failed to record uploaded file"}
	}

	if err := p.Quota.IncrementUsage(ctx, req.UserID, result.Size); err != nil {
		log.Error().Err(err).Str("userId", req.UserID).Msg("failed to update storage usage after upload")
	}

	status204 := 200
	if len(result.Jobs) > 0 {
		status204 = 202
	}
	return Outcome{StatusCode: status204, Page: created}
}

func isImageMIME(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

func titleOrFilename(title, filename string) string {
	if title != "" {
		return title
	}
	return filename
}
