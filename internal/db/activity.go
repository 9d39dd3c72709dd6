package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pagespace/gateway/internal/catalog"
	"github.com/pagespace/gateway/pkg/types"
)

// ActivityStore implements catalog.ActivityStore, backs the paginated
// GET /api/activities surface (C15), and exposes an append-only Record call.
type ActivityStore struct{ db *sql.DB }

func NewActivityStore(db *sql.DB) *ActivityStore { return &ActivityStore{db: db} }

func (s *ActivityStore) RecentActivity(ctx context.Context, driveID string, limit int) ([]catalog.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, COALESCE(page_id::text, ''), timestamp
		FROM activity_log
		WHERE drive_id = $1 AND NOT is_archived
		ORDER BY timestamp DESC
		LIMIT $2`, driveID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent activity: %w", err)
	}
	defer rows.Close()

	var entries []catalog.ActivityEntry
	for rows.Next() {
		var e catalog.ActivityEntry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.PageID, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts).UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListActivities answers the paginated GET /api/activities surface (C15).
// context selects the WHERE clause: "user" scopes to the caller's own
// actions, "drive" to every row against driveID, "page" to a single page.
// It returns the page of rows plus the total matching count for the
// {pagination:{total,...}} envelope.
func (s *ActivityStore) ListActivities(ctx context.Context, scopeKind, userID, driveID, pageID string, limit, offset int) ([]types.ActivityLog, int, error) {
	var where string
	var arg any
	switch scopeKind {
	case "user":
		where, arg = "user_id = $1", userID
	case "page":
		where, arg = "page_id = $1", pageID
	default:
		where, arg = "drive_id = $1", driveID
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM activity_log WHERE %s AND NOT is_archived`, where), arg,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, user_id, drive_id, COALESCE(page_id::text, ''), action, timestamp, is_archived
		FROM activity_log WHERE %s AND NOT is_archived
		ORDER BY timestamp DESC LIMIT $2 OFFSET $3`, where), arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []types.ActivityLog
	for rows.Next() {
		var e types.ActivityLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.DriveID, &e.PageID, &e.Action, &e.Timestamp, &e.IsArchived); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Record appends one activity-log row. No handler, tool or pipeline in the
// gateway calls it.
func (s *ActivityStore) Record(ctx context.Context, userID, driveID, pageID, action string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, drive_id, page_id, action, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), userID, driveID, nullIfEmpty(pageID), action, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}
