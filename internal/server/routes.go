package server

import (
	"github.com/pagespace/gateway/internal/auth"
)

// setupRoutes registers the gateway's five routes (spec §6), each guarded
// by the auth/origin/CSRF chain appropriate to its method.
func (s *Server) setupRoutes() {
	allowBoth := auth.AllowedTypes{Session: true, MCP: true}

	s.router.Get("/api/activities", s.withAuth(allowBoth, s.handleListActivities))
	s.router.Get("/api/ai/models", s.withAuth(allowBoth, s.handleListModels))
	s.router.Post("/api/upload", s.withAuth(allowBoth, s.handleUpload))
	s.router.Post("/api/ai/chat", s.withAuth(allowBoth, s.handleChat))
	s.router.Post("/api/ai/abort", s.withAuth(allowBoth, s.handleAbort))
}
