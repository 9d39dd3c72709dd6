// Package scope enforces MCP machine-token drive scoping: an isScoped
// token can only reach the drives its allowedDriveIds names. Session
// principals and unscoped MCP tokens are unrestricted.
package scope

import (
	"context"
	"errors"

	"github.com/pagespace/gateway/internal/auth"
)

var (
	// ErrPageNotFound is returned when the page a scope check targets does
	// not exist.
	ErrPageNotFound = errors.New("page not found")
	// ErrOutOfScope is returned when a scoped MCP principal attempts to
	// reach a drive/page outside its allowedDriveIds.
	ErrOutOfScope = errors.New("drive is out of scope for this token")
)

// PageDriveResolver resolves a pageId to the driveId that owns it.
type PageDriveResolver interface {
	DriveIDForPage(ctx context.Context, pageID string) (string, error)
}

// isRestricted reports whether p is a scoped MCP principal. Session
// principals and unscoped MCP tokens are never restricted.
func isRestricted(p *auth.Principal) bool {
	return p.IsMCP() && p.IsScoped
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// CheckDriveScope reports whether p may access driveID.
func CheckDriveScope(p *auth.Principal, driveID string) error {
	if !isRestricted(p) {
		return nil
	}
	if !contains(p.AllowedDriveIDs, driveID) {
		return ErrOutOfScope
	}
	return nil
}

// CheckPageScope resolves pageID's owning drive via resolver and delegates
// to CheckDriveScope.
func CheckPageScope(ctx context.Context, p *auth.Principal, resolver PageDriveResolver, pageID string) error {
	if !isRestricted(p) {
		return nil
	}
	driveID, err := resolver.DriveIDForPage(ctx, pageID)
	if err != nil {
		return ErrPageNotFound
	}
	return CheckDriveScope(p, driveID)
}

// CheckCreateScope validates a creation request. Scoped tokens can never
// create a new drive (driveID == ""); creating within an existing drive
// requires that drive to be in scope.
func CheckCreateScope(p *auth.Principal, driveID string) error {
	if !isRestricted(p) {
		return nil
	}
	if driveID == "" {
		return ErrOutOfScope
	}
	return CheckDriveScope(p, driveID)
}

// FilterDrivesByScope intersects ids with p's allowed drives. Unrestricted
// principals see the full set unchanged.
func FilterDrivesByScope(p *auth.Principal, ids []string) []string {
	if !isRestricted(p) {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if contains(p.AllowedDriveIDs, id) {
			out = append(out, id)
		}
	}
	return out
}
