package server

import (
	"encoding/json"
	"net/http"
)

type abortRequest struct {
	StreamID string `json:"streamId"`
}

// handleAbort serves POST /api/ai/abort (spec §4.8/§6.4). It always
// responds 200: whether a stream exists or belongs to the caller is never
// revealed through the status code, only through the reason text.
func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())

	var req abortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StreamID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "streamId is required")
		return
	}

	result := s.deps.Aborts.Abort(req.StreamID, p.UserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"aborted": result.Aborted,
		"reason":  result.Reason,
	})
}
