package server

import "net/http"

// handleListModels serves GET /api/ai/models?provider=, returning the
// gateway's static model catalog so a client can populate provider/model
// pickers before issuing a chat request. With no provider query param it
// returns every known model across every provider, most capable first.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	providerID := r.URL.Query().Get("provider")

	if providerID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"models": s.deps.Models.AllModels()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"models": s.deps.Models.Models(providerID)})
}
