// Command gateway is the entry point for the PageSpace AI orchestration
// and request-gateway service: it loads configuration, opens the
// database, wires every component (auth, upload admission, the streaming
// orchestrator, the tool catalog, prompt assembler, caches, provider
// factory) and serves the HTTP surface, grounded on the teacher's
// cmd/opencode-server/main.go (flag-based config, signal-driven graceful
// shutdown).
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pagespace/gateway/internal/abort"
	"github.com/pagespace/gateway/internal/auth"
	"github.com/pagespace/gateway/internal/cache"
	"github.com/pagespace/gateway/internal/catalog"
	"github.com/pagespace/gateway/internal/config"
	"github.com/pagespace/gateway/internal/db"
	"github.com/pagespace/gateway/internal/logging"
	"github.com/pagespace/gateway/internal/mcp"
	"github.com/pagespace/gateway/internal/mcpconv"
	"github.com/pagespace/gateway/internal/orchestrator"
	"github.com/pagespace/gateway/internal/promptbuilder"
	"github.com/pagespace/gateway/internal/provider"
	"github.com/pagespace/gateway/internal/server"
	"github.com/pagespace/gateway/internal/upload"
	"github.com/pagespace/gateway/pkg/types"

	"github.com/rs/zerolog/log"
)

const sessionCookieName = "session"

var (
	port          = flag.Int("port", 8080, "server port")
	directory     = flag.String("directory", "", "config directory (defaults to the working directory)")
	migrationsDir = flag.String("migrations", "migrations", "path to the golang-migrate migration scripts")
	maxHeapMB     = flag.Uint64("max-heap-mb", 0, "heap ceiling in MiB for upload admission (0 disables the check)")
	logLevel      = flag.String("log-level", "info", "minimum log level: debug, info, warn, error")
	logPretty     = flag.Bool("log-pretty", false, "use human-readable console logging instead of JSON")
	version       = flag.Bool("version", false, "print version and exit")
)

const (
	buildVersion = "0.1.0"
)

func main() {
	flag.Parse()
	logging.Init(logging.Config{
		Level:  logging.ParseLevel(*logLevel),
		Pretty: *logPretty,
	})
	log.Logger = logging.Logger

	if *version {
		fmt.Printf("pagespace-gateway %s\n", buildVersion)
		os.Exit(0)
	}

	workDir := *directory
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get working directory")
		}
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	conn, err := db.Open(appConfig.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	if err := db.Migrate(appConfig.DatabaseURL, *migrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	stores := db.NewStores(conn, appConfig.AuthSecret, appConfig.FileStoragePath)

	authenticator := auth.New(appConfig.AuthSecret, stores.Sessions, stores.Users, stores.MCP, sessionCookieName)
	originGuard := auth.NewOriginGuard(appConfig.WebAppURL, appConfig.AdditionalAllowedOrigins, auth.OriginMode(appConfig.OriginValidationMode))
	csrfGuard := auth.NewCSRFGuard(appConfig.AuthSecret)

	abortRegistry := abort.NewRegistry()
	orch := orchestrator.New(abortRegistry, stores.Messages)

	uploadPipeline := &upload.Pipeline{
		Memory:     upload.NewRuntimeMemoryMonitor(*maxHeapMB * 1024 * 1024),
		Quota:      stores.Users,
		Semaphores: uploadTierSemaphores(),
		Processor:  upload.NewHTTPProcessor(appConfig.ProcessorURL),
		Tokens:     upload.NewHMACServiceTokens(appConfig.AuthSecret, 5*time.Minute),
		Pages:      stores.Pages,
		Active:     upload.NewInMemoryActiveUploads(),
	}

	cat := catalog.New(stores.CatalogDependencies())
	mcpClient := connectMCPServers(appConfig.MCP)
	wireMCPTools(cat, mcpClient)
	assembler := promptbuilder.New()
	pageTreeCache := cache.NewPageTreeCache(stores.PageTree)
	agentCache := cache.NewAgentAwarenessCache(stores.PageTree)

	deps := server.Deps{
		Config:          appConfig,
		Stores:          stores,
		Authenticator:   authenticator,
		Origin:          originGuard,
		CSRF:            csrfGuard,
		Aborts:          abortRegistry,
		Orchestrator:    orch,
		Upload:          uploadPipeline,
		Catalog:         cat,
		PromptAssembler: assembler,
		PageTree:        pageTreeCache,
		AgentAwareness:  agentCache,
		ProviderFactory: &provider.Factory{},
		Capabilities:    provider.NewCapabilityOracle(),
		Models:          provider.NewRegistry(),
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Port = *port
	srv := server.New(serverConfig, deps)

	go func() {
		log.Info().Int("port", *port).Msg("gateway listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	if err := mcpClient.Close(); err != nil {
		log.Error().Err(err).Msg("mcp client shutdown error")
	}
	log.Info().Msg("gateway stopped")
}

// connectMCPServers dials every enabled server in AppConfig.MCP. A server
// that fails to connect is recorded as failed rather than aborting
// startup: the gateway still serves its builtin tool catalog either way.
func connectMCPServers(servers map[string]types.MCPConfig) *mcp.Client {
	client := mcp.NewClient()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for name, cfg := range servers {
		enabled := cfg.Enabled == nil || *cfg.Enabled
		client.AddServer(ctx, name, mcp.Config{
			Enabled:     enabled,
			Type:        mcp.TransportType(cfg.Type),
			URL:         cfg.URL,
			Headers:     cfg.Headers,
			Command:     cfg.Command,
			Environment: cfg.Environment,
			Timeout:     cfg.Timeout,
		})
	}
	for _, status := range client.Status() {
		if status.Status == mcp.StatusFailed {
			log.Warn().Str("server", status.Name).Str("error", status.Error).Msg("mcp server connect failed")
		} else {
			log.Info().Str("server", status.Name).Str("status", string(status.Status)).Int("tools", status.ToolCount).Msg("mcp server")
		}
	}
	return client
}

// wireMCPTools converts every connected server's tools into namespaced
// catalog entries via mcpconv, so they're available to the orchestrator
// alongside the builtin page/search/activity groups.
func wireMCPTools(cat *catalog.Catalog, client *mcp.Client) {
	for server, tools := range client.ToolsByServer() {
		for _, t := range tools {
			wrapper, warnings, err := mcpconv.NewWrapper(server, t.Name, t.Description, t.InputSchema, client)
			if err != nil {
				log.Warn().Str("server", server).Str("tool", t.Name).Err(err).Msg("skipping mcp tool: schema translation failed")
				continue
			}
			for _, w := range warnings {
				log.Debug().Str("server", server).Str("tool", t.Name).Str("warning", w).Msg("mcp schema translation")
			}
			cat.AddExternal(wrapper)
		}
	}
}

// uploadTierSemaphores declares the per-tier upload concurrency gate (spec
// §4.10 step 4). Limits are conservative defaults; they are not exposed
// through AppConfig since the spec treats them as fixed policy.
func uploadTierSemaphores() *upload.TierSemaphores {
	return upload.NewTierSemaphores(map[string]upload.TierConfig{
		"free": {MaxConcurrent: 2, StartsPerSecond: 1, Burst: 2},
		"pro":  {MaxConcurrent: 5, StartsPerSecond: 3, Burst: 5},
		"team": {MaxConcurrent: 10, StartsPerSecond: 5, Burst: 10},
	})
}
