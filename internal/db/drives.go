package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pagespace/gateway/internal/catalog"
	"github.com/pagespace/gateway/pkg/types"
)

// DriveStore implements catalog.DriveStore and catalog.AgentStore.
type DriveStore struct{ db *sql.DB }

func NewDriveStore(db *sql.DB) *DriveStore { return &DriveStore{db: db} }

func (s *DriveStore) Describe(ctx context.Context, driveID string) (catalog.DriveInfo, error) {
	var info catalog.DriveInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug FROM drives WHERE id = $1 AND NOT is_trashed`, driveID,
	).Scan(&info.ID, &info.Name, &info.Slug)
	if err != nil {
		return catalog.DriveInfo{}, fmt.Errorf("describe drive: %w", err)
	}
	return info, nil
}

// VisibleAgents returns every globally-visible AI_CHAT page in driveID.
// userID is accepted for interface parity with a future per-drive ACL;
// the gateway's current schema has no drive-membership table, so
// visibility is governed solely by Page.VisibleToGlobalAssistant.
func (s *DriveStore) VisibleAgents(ctx context.Context, driveID, userID string) ([]catalog.AgentInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(definition, '')
		FROM pages
		WHERE drive_id = $1 AND type = $2 AND visible_to_global_assistant AND NOT is_trashed
		ORDER BY position ASC`, driveID, types.PageTypeAIChat)
	if err != nil {
		return nil, fmt.Errorf("list visible agents: %w", err)
	}
	defer rows.Close()

	var agents []catalog.AgentInfo
	for rows.Next() {
		var a catalog.AgentInfo
		if err := rows.Scan(&a.ID, &a.Title, &a.Definition); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
