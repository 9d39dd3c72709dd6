// Package server provides the gateway's HTTP surface: activity listing,
// model listing, file upload admission, streaming AI chat, and stream
// abort, fronted by
// the auth/origin/CSRF/scope middleware chain built in internal/auth and
// internal/scope. Grounded on the teacher's internal/server package (chi
// router, the same middleware stack, the same JSON error envelope) with
// the opencode-specific session/file/MCP/LSP/TUI endpoint groups replaced
// by PageSpace's five routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/pagespace/gateway/internal/abort"
	"github.com/pagespace/gateway/internal/auth"
	"github.com/pagespace/gateway/internal/cache"
	"github.com/pagespace/gateway/internal/catalog"
	"github.com/pagespace/gateway/internal/db"
	"github.com/pagespace/gateway/internal/orchestrator"
	"github.com/pagespace/gateway/internal/promptbuilder"
	"github.com/pagespace/gateway/internal/provider"
	"github.com/pagespace/gateway/internal/upload"
	"github.com/pagespace/gateway/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration. WriteTimeout is zero:
// streaming /api/ai/chat responses must not be cut off by a fixed deadline.
func DefaultConfig() *Config {
	return &Config{Port: 8080, ReadTimeout: 30 * time.Second, WriteTimeout: 0}
}

// Deps are every collaborator the gateway's handlers call into, one per
// component already built (C1-C14).
type Deps struct {
	Config *types.AppConfig
	Stores *db.Stores

	Authenticator *auth.Authenticator
	Origin        *auth.OriginGuard
	CSRF          *auth.CSRFGuard

	Aborts       *abort.Registry
	Orchestrator *orchestrator.Orchestrator
	Upload       *upload.Pipeline

	Catalog         *catalog.Catalog
	PromptAssembler *promptbuilder.Assembler
	PageTree        *cache.PageTreeCache
	AgentAwareness  *cache.AgentAwarenessCache

	ProviderFactory *provider.Factory
	Capabilities    *provider.CapabilityOracle
	Models          *provider.Registry
}

// Server is the gateway's HTTP server.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	deps    Deps
}

// New constructs a Server wired to deps, with routes and middleware
// already attached.
func New(cfg *Config, deps Deps) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{config: cfg, router: chi.NewRouter(), deps: deps}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for the server, matching the
// teacher's RequestID/Logger/Recoverer/RealIP/CORS stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	allowedOrigins := append([]string{s.deps.Config.WebAppURL}, s.deps.Config.AdditionalAllowedOrigins...)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", auth.CSRFHeader},
		ExposedHeaders:   []string{"X-Request-ID", "X-Stream-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// requestLogger adapts middleware.Logger to zerolog, matching the rest of
// the gateway's structured-logging convention (internal/orchestrator,
// internal/upload) instead of the teacher's stdlib-log-backed default.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("requestId", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
