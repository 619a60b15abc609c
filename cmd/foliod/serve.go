package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mlapp/folio/config"
	"github.com/mlapp/folio/history"
	"github.com/mlapp/folio/llm"
	"github.com/mlapp/folio/mcp"
	"github.com/mlapp/folio/metrics"
	"github.com/mlapp/folio/portfolio"
	"github.com/mlapp/folio/runtime"
	"github.com/mlapp/folio/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck // No remedy for log close errors

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// ---------------------------
	// 1. Prompt history
	// ---------------------------

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := history.Open(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // No remedy for db close errors

	// ---------------------------
	// 2. MCP session
	// ---------------------------

	mcpClient := connectMCP(ctx, cfg, logger, mcp.WithCallObserver(m.ObserveToolCall))
	defer mcpClient.Close() //nolint:errcheck // Session teardown errors are not actionable

	logDiscovery(ctx, mcpClient, logger)

	// ---------------------------
	// 3. LLM router
	// ---------------------------

	router, err := config.NewRouter(cfg, logger,
		llm.WithMiddleware(llm.NewLoggingMiddleware(logger), m.LLMMiddleware()))
	if err != nil {
		return fmt.Errorf("failed to create LLM router: %w", err)
	}
	logger.Info().Stringer("router", router).Msg("LLM router ready")

	service := portfolio.NewService(mcpClient, logger)

	// ---------------------------
	// 4. Scheduled price refresh
	// ---------------------------

	if cfg.Schedule.RefreshPrices != "" {
		scheduler, err := runtime.NewScheduler(service, cfg.Schedule.RefreshPrices, 15*time.Second, logger)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		go scheduler.Start(ctx)
	}

	// ---------------------------
	// 5. HTTP server
	// ---------------------------

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout(),
		Logger:         logger,
	}, server.Deps{
		Portfolio: service,
		LLM:       router,
		History:   store,
		Discovery: mcpClient,
		Metrics:   m,
	})

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info().Msg("foliod shutdown complete")
	return nil
}

// connectMCP opens the session to the primary MCP server. A missing or
// unreachable server leaves the client without a session so the API still
// starts and reports configuration errors per request.
func connectMCP(ctx context.Context, cfg *config.ServerConfig, logger zerolog.Logger, opts ...mcp.ClientOption) *mcp.Client {
	serverCfg, ok := cfg.PrimaryMCPServer()
	if !ok {
		logger.Warn().Msg("No MCP server configured")
		return mcp.NewClient(nil, logger, opts...)
	}

	session, err := mcp.Connect(ctx, logger, mcp.ServerSpec{
		Name:    serverCfg.Name,
		Command: serverCfg.Command,
		URL:     serverCfg.URL,
		Args:    serverCfg.Args,
		Env:     serverCfg.Env,
	}, mcp.DefaultConnectOptions())
	if err != nil {
		logger.Error().Err(err).Str("server", serverCfg.Name).Msg("Failed to connect to MCP server")
		return mcp.NewClient(nil, logger, opts...)
	}
	if len(cfg.MCPServers) > 1 {
		logger.Warn().
			Int("configured", len(cfg.MCPServers)).
			Str("using", serverCfg.Name).
			Msg("Multiple MCP servers configured; only the first is used")
	}
	return mcp.NewClient(session, logger, opts...)
}

func logDiscovery(ctx context.Context, client *mcp.Client, logger zerolog.Logger) {
	health := client.Health(ctx)
	if !health.Healthy() {
		logger.Warn().Str("message", health.Message).Msg("MCP discovery failed")
		return
	}
	logger.Info().
		Int("tools", health.ToolsCount).
		Int("prompts", health.PromptsCount).
		Int("resources", health.ResourcesCount).
		Msg("MCP server discovered")
}
