// Package tools registers the MCP tools that expose database introspection
// and analytics discovery to LLM agents.
package tools

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/config"
)

// Deps contains the shared dependencies for all database tools.
type Deps struct {
	Client  datasource.Client
	Cache   *cache.Store
	Config  *config.Config
	StmtLog *datasource.StatementLog
	Logger  *zap.Logger
}

// RegisterAll registers every tool on the server.
func RegisterAll(s *server.MCPServer, deps *Deps) {
	registerRunQueryTool(s, deps)
	registerGetSchemaTool(s, deps)
	registerAnalyzeTablesTool(s, deps)
	registerDiscoverAnalyticsTool(s, deps)
}
