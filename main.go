package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource/factory"
	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/config"
	"github.com/sightline-data/sightline-engine/pkg/handlers"
	"github.com/sightline-data/sightline-engine/pkg/logging"
	"github.com/sightline-data/sightline-engine/pkg/mcp"
	"github.com/sightline-data/sightline-engine/pkg/mcp/tools"
	"github.com/sightline-data/sightline-engine/pkg/middleware"
)

// Version is stamped at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("dialect", cfg.Datasource.Dialect),
		zap.String("datasource", cfg.Datasource.Host),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_dir", cfg.Cache.Dir))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stmtLog := datasource.NewStatementLog()
	client, err := factory.New(ctx, &cfg.Datasource, stmtLog, logger)
	if err != nil {
		logger.Fatal("failed to connect to datasource",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer func() { _ = client.Close() }()

	store := cache.New(cfg.Cache.Dir, cfg.Cache.Enabled, cfg.Cache.MaxPayloadBytes, logger)

	mcpServer := mcp.NewServer("sightline-engine", cfg.Version, logger)
	tools.RegisterAll(mcpServer.MCP(), &tools.Deps{
		Client:  client,
		Cache:   store,
		Config:  cfg,
		StmtLog: stmtLog,
		Logger:  logger,
	})

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	mcpHTTP := mcpServer.NewStreamableHTTPServer()
	mux.Handle("/mcp", middleware.MCPRequestLogger(logger)(mcpHTTP))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting sightline-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
