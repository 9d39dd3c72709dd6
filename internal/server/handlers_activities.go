package server

import (
	"net/http"
	"strconv"

	"github.com/pagespace/gateway/internal/scope"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// handleListActivities serves GET /api/activities?context=user|drive|page
// &driveId=&pageId=&limit=&offset=, per spec §6.1.
func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	q := r.URL.Query()

	scopeKind := q.Get("context")
	if scopeKind == "" {
		scopeKind = "user"
	}
	driveID := q.Get("driveId")
	pageID := q.Get("pageId")

	switch scopeKind {
	case "user":
		// Always scoped to the caller; no drive/page membership check needed.
	case "drive":
		if driveID == "" {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "driveId is required for context=drive")
			return
		}
		if err := scope.CheckDriveScope(p, driveID); err != nil {
			writeError(w, http.StatusForbidden, ErrCodeScopeDenied, err.Error())
			return
		}
	case "page":
		if pageID == "" {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "pageId is required for context=page")
			return
		}
		if err := scope.CheckPageScope(r.Context(), p, s.deps.Stores.Pages, pageID); err != nil {
			writeError(w, http.StatusForbidden, ErrCodeScopeDenied, err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "context must be one of user, drive, page")
		return
	}

	limit := parseIntOrDefault(q.Get("limit"), defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	offset := parseIntOrDefault(q.Get("offset"), 0)
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.deps.Stores.Activity.ListActivities(r.Context(), scopeKind, p.UserID, driveID, pageID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to load activities")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activities": entries,
		"pagination": map[string]any{
			"total":   total,
			"limit":   limit,
			"offset":  offset,
			"hasMore": offset+len(entries) < total,
		},
	})
}

func parseIntOrDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
