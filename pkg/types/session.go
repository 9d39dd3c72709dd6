package types

import "time"

// SessionType distinguishes interactive user sessions from service
// (machine-to-machine) sessions.
type SessionType string

const (
	SessionTypeUser    SessionType = "user"
	SessionTypeService SessionType = "service"
)

// SessionTokenPrefix is the opaque-bearer prefix for session credentials.
const SessionTokenPrefix = "ps_sess_"

// MCPTokenPrefix is the opaque-bearer prefix for MCP machine credentials.
const MCPTokenPrefix = "mcp_"

// Session is the claims a session token resolves to. Raw tokens are never
// stored; only TokenHash (see internal/auth) is persisted.
type Session struct {
	SessionID        string      `json:"sessionId"`
	UserID           string      `json:"userId"`
	UserRole         Role        `json:"userRole"`
	TokenVersion     int         `json:"tokenVersion"`
	AdminRoleVersion int         `json:"adminRoleVersion"`
	Type             SessionType `json:"type"`
	Scopes           []string    `json:"scopes"`
	ExpiresAt        time.Time   `json:"expiresAt"`
}

// DefaultScopes is the scope set assigned to a session unless overridden.
func DefaultScopes() []string { return []string{"*"} }

// MCPToken is the claims a scoped or unscoped MCP credential resolves to.
type MCPToken struct {
	TokenID     string    `json:"tokenId"`
	UserID      string    `json:"userId"`
	IsScoped    bool      `json:"isScoped"`
	DriveScopes []string  `json:"driveScopes"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	LastUsed    time.Time `json:"lastUsed"`
}
