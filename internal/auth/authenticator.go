package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pagespace/gateway/pkg/types"
)

// AllowedTypes declares which credential kinds a route accepts. A route
// with neither flag set is misconfigured.
type AllowedTypes struct {
	Session bool
	MCP     bool
}

// Authenticator classifies and validates inbound credentials into a
// Principal, per spec §4.1.
type Authenticator struct {
	secret   string
	sessions SessionStore
	users    UserStore
	mcp      MCPStore
	cookie   string // cookie name carrying the session token for browsers
}

// New constructs an Authenticator. cookieName is the session cookie name
// (e.g. "ps_session").
func New(secret string, sessions SessionStore, users UserStore, mcp MCPStore, cookieName string) *Authenticator {
	return &Authenticator{secret: secret, sessions: sessions, users: users, mcp: mcp, cookie: cookieName}
}

// Authenticate inspects r's Authorization header and session cookie,
// classifies the credential, validates it, and returns the resulting
// Principal. allowed declares which credential kinds the calling route
// accepts.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request, allowed AllowedTypes) (*Principal, error) {
	if !allowed.Session && !allowed.MCP {
		return nil, ErrNoMethodsAllowed
	}

	if bearer, ok := bearerToken(r); ok {
		switch {
		case strings.HasPrefix(bearer, types.MCPTokenPrefix):
			if !allowed.MCP {
				return nil, ErrMCPNotPermitted
			}
			return a.authenticateMCP(ctx, bearer)
		case strings.HasPrefix(bearer, types.SessionTokenPrefix):
			if !allowed.Session {
				return nil, ErrSessionNotAllowed
			}
			return a.authenticateSession(ctx, bearer, SourceHeader)
		default:
			return nil, ErrInvalidTokenFmt
		}
	}

	if !allowed.Session {
		return nil, ErrAuthRequired
	}

	cookie, err := r.Cookie(a.cookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrAuthRequired
	}
	return a.authenticateSession(ctx, cookie.Value, SourceCookie)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return token, token != ""
}

func (a *Authenticator) authenticateSession(ctx context.Context, rawToken string, source SessionSource) (*Principal, error) {
	sess, err := a.sessions.Lookup(ctx, rawToken)
	if err != nil || sess == nil {
		return nil, ErrInvalidSession
	}
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return nil, ErrInvalidSession
	}

	user, err := a.users.Get(ctx, sess.UserID)
	if err != nil || user == nil {
		return nil, ErrInvalidSession
	}
	if user.TokenVersion != sess.TokenVersion {
		return nil, ErrInvalidSession
	}
	if user.Role == types.RoleAdmin && user.AdminRoleVersion != sess.AdminRoleVersion {
		return nil, ErrInvalidSession
	}

	return &Principal{
		UserID:           user.ID,
		Role:             string(user.Role),
		TokenVersion:     user.TokenVersion,
		AdminRoleVersion: user.AdminRoleVersion,
		SessionID:        sess.SessionID,
		Source:           source,
	}, nil
}

func (a *Authenticator) authenticateMCP(ctx context.Context, rawToken string) (*Principal, error) {
	tokenHash := HashToken(a.secret, rawToken)

	rec, err := a.mcp.LookupByHash(ctx, tokenHash)
	if err != nil || rec == nil {
		return nil, ErrInvalidSession
	}
	if rec.RevokedAt != nil {
		return nil, ErrInvalidSession
	}
	if rec.IsScoped && len(rec.DriveScopes) == 0 {
		return nil, ErrInvalidSession
	}

	user, err := a.users.Get(ctx, rec.UserID)
	if err != nil || user == nil {
		return nil, ErrInvalidSession
	}
	if user.TokenVersion != rec.TokenVersion {
		return nil, ErrInvalidSession
	}

	_ = a.mcp.TouchLastUsed(ctx, rec.TokenID)

	return &Principal{
		UserID:           user.ID,
		Role:             string(user.Role),
		TokenVersion:     user.TokenVersion,
		AdminRoleVersion: user.AdminRoleVersion,
		TokenID:          rec.TokenID,
		IsScoped:         rec.IsScoped,
		AllowedDriveIDs:  rec.DriveScopes,
	}, nil
}
