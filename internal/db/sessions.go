package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/pagespace/gateway/internal/auth"
	"github.com/pagespace/gateway/pkg/types"
)

// SessionStore implements auth.SessionStore. Lookup hashes the raw token
// the same way C1's issuer does before querying, so the database never
// stores a bearer value that would be usable on its own from a leaked row.
type SessionStore struct {
	db     *sql.DB
	secret string
}

func NewSessionStore(db *sql.DB, secret string) *SessionStore {
	return &SessionStore{db: db, secret: secret}
}

func (s *SessionStore) Lookup(ctx context.Context, rawToken string) (*types.Session, error) {
	hash := auth.HashToken(s.secret, rawToken)

	var sess types.Session
	var scopes []string
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, user_id, user_role, token_version, admin_role_version,
		       session_type, scopes, expires_at
		FROM sessions WHERE token_hash = $1 AND expires_at > now()`, hash,
	).Scan(&sess.SessionID, &sess.UserID, &sess.UserRole, &sess.TokenVersion,
		&sess.AdminRoleVersion, &sess.Type, pq.Array(&scopes), &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Scopes = scopes
	return &sess, nil
}

// MCPStore implements auth.MCPStore.
type MCPStore struct{ db *sql.DB }

func NewMCPStore(db *sql.DB) *MCPStore { return &MCPStore{db: db} }

func (s *MCPStore) LookupByHash(ctx context.Context, tokenHash string) (*auth.MCPTokenRecord, error) {
	var rec auth.MCPTokenRecord
	var driveScopes []string
	var revokedAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT token_id, user_id, token_version, is_scoped, drive_scopes, revoked_at
		FROM mcp_tokens WHERE token_hash = $1`, tokenHash,
	).Scan(&rec.TokenID, &rec.UserID, &rec.TokenVersion, &rec.IsScoped,
		pq.Array(&driveScopes), &revokedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.DriveScopes = driveScopes
	if revokedAt.Valid {
		t := revokedAt.Time
		rec.RevokedAt = &t
	}
	if rec.RevokedAt != nil {
		return nil, nil
	}
	return &rec, nil
}

func (s *MCPStore) TouchLastUsed(ctx context.Context, tokenID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE mcp_tokens SET last_used_at = $1 WHERE token_id = $2`, time.Now(), tokenID)
	return err
}
