package server

import (
	"net/http"

	"github.com/pagespace/gateway/internal/scope"
	"github.com/pagespace/gateway/internal/upload"
)

const maxUploadMemory = 32 << 20 // buffer threshold before multipart spills to temp files

// handleUpload serves POST /api/upload (spec §4.10/§6.2): a multipart form
// carrying one file plus placement metadata, admitted through
// upload.Pipeline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "could not parse multipart form")
		return
	}

	driveID := r.FormValue("driveId")
	if err := scope.CheckCreateScope(p, driveID); err != nil {
		writeError(w, http.StatusForbidden, ErrCodeScopeDenied, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "file is required")
		return
	}
	defer file.Close()

	user, err := s.deps.Stores.Users.Get(r.Context(), p.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "failed to resolve caller")
		return
	}

	var parentID *string
	if v := r.FormValue("parentId"); v != "" {
		parentID = &v
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	outcome := s.deps.Upload.Upload(r.Context(), upload.Request{
		UserID:      p.UserID,
		Tier:        user.Tier,
		DriveID:     driveID,
		ParentID:    parentID,
		Title:       r.FormValue("title"),
		Position:    r.FormValue("position"),
		AfterNodeID: r.FormValue("afterNodeId"),
		Filename:    header.Filename,
		MimeType:    mimeType,
		Size:        header.Size,
		Content:     file,
	})

	if outcome.StatusCode >= 400 {
		writeError(w, outcome.StatusCode, uploadErrCode(outcome.StatusCode), outcome.Reason)
		return
	}
	writeJSON(w, outcome.StatusCode, map[string]any{"page": outcome.Page})
}

func uploadErrCode(status int) string {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return ErrCodeQuotaExceeded
	case http.StatusTooManyRequests:
		return ErrCodeTooManyUploads
	case http.StatusServiceUnavailable:
		return ErrCodeMemoryPressure
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	default:
		return ErrCodeProcessorFailure
	}
}
