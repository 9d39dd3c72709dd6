package auth

import (
	"context"
	"time"

	"github.com/pagespace/gateway/pkg/types"
)

// SessionStore resolves a session bearer token (or cookie value) to its
// claims. Backed by internal/db in production.
type SessionStore interface {
	// Lookup returns the session claims for a raw (unhashed) token, or nil
	// if no matching, non-expired session exists.
	Lookup(ctx context.Context, rawToken string) (*types.Session, error)
}

// MCPTokenRecord is the persisted record a MCPStore resolves a token hash
// to.
type MCPTokenRecord struct {
	TokenID      string
	UserID       string
	TokenVersion int // snapshotted at issuance; must match the user's current value
	IsScoped     bool
	DriveScopes  []string
	RevokedAt    *time.Time
}

// UserStore resolves a user id to its current version counters and role,
// used to validate tokenVersion/adminRoleVersion on every request.
type UserStore interface {
	Get(ctx context.Context, userID string) (*types.User, error)
}

// MCPStore resolves and updates MCP machine tokens.
type MCPStore interface {
	// LookupByHash returns the token record for tokenHash, or nil if none
	// exists or it has been revoked.
	LookupByHash(ctx context.Context, tokenHash string) (*MCPTokenRecord, error)
	// TouchLastUsed records that tokenID was just used successfully.
	TouchLastUsed(ctx context.Context, tokenID string) error
}
