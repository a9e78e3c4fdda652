package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/discovery"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// discoverDocument wraps the discovery report with cache provenance.
type discoverDocument struct {
	*models.DiscoveryReport

	CacheProvenance *cache.Provenance `json:"cache_provenance,omitempty"`
}

// registerDiscoverAnalyticsTool - runs the paginated multi-database discovery
// analysis.
func registerDiscoverAnalyticsTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"discover_analytics",
		mcp.WithDescription(
			"Discover the analytic structure of one or many databases: classify "+
				"tables (user/event/fact/dimension/lookup), map foreign-key "+
				"relationships, detect cross-database patterns and suggest analytic "+
				"queries. Results are paginated across databases and cached.",
		),
		mcp.WithArray(
			"databases",
			mcp.Description("Databases to analyze. Defaults to all non-system databases on the server."),
		),
		mcp.WithString(
			"focus_area",
			mcp.Description("Optional focus hint carried into recommendations (e.g. 'user_behavior')."),
		),
		mcp.WithString(
			"detail_level",
			mcp.Description("summary, detailed, or full. Default detailed."),
		),
		mcp.WithNumber(
			"max_tables_per_db",
			mcp.Description("Cap on tables analyzed per database, largest first."),
		),
		mcp.WithNumber(
			"sample_data_limit",
			mcp.Description("Sample rows fetched per table at detail_level=full."),
		),
		mcp.WithNumber(
			"page",
			mcp.Description("1-based page over the database list. Default 1."),
		),
		mcp.WithNumber(
			"page_size",
			mcp.Description("Databases analyzed per call."),
		),
		mcp.WithBoolean(
			"cross_database_analysis",
			mcp.Description("Detect patterns recurring across databases. Default true."),
		),
		mcp.WithBoolean(
			"include_recommendations",
			mcp.Description("Generate analytic recommendations and example SQL. Default true."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)

		detailLevel := stringArg(args, "detail_level", discovery.DetailDetailed)
		switch detailLevel {
		case discovery.DetailSummary, discovery.DetailDetailed, discovery.DetailFull:
		default:
			return NewErrorResultWithDetails("invalid_detail_level",
				fmt.Sprintf("unknown detail level %q", detailLevel),
				map[string]any{"valid_levels": []string{
					discovery.DetailSummary,
					discovery.DetailDetailed,
					discovery.DetailFull,
				}}), nil
		}

		request := discovery.Request{
			Databases:              stringSliceArg(args, "databases"),
			FocusArea:              stringArg(args, "focus_area", ""),
			DetailLevel:            detailLevel,
			MaxTablesPerDB:         intArg(args, "max_tables_per_db", deps.Config.Discovery.MaxTablesPerDB),
			SampleDataLimit:        intArg(args, "sample_data_limit", deps.Config.Discovery.SampleDataLimit),
			Page:                   intArg(args, "page", 1),
			PageSize:               intArg(args, "page_size", deps.Config.Discovery.PageSize),
			CrossDatabaseAnalysis:  boolArg(args, "cross_database_analysis", true),
			IncludeRecommendations: boolArg(args, "include_recommendations", true),
		}

		if request.PageSize <= 0 {
			return NewErrorResult("invalid_page_size", "page_size must be positive"), nil
		}

		orchestrator := discovery.NewOrchestrator(
			deps.Client,
			deps.Cache,
			deps.StmtLog,
			deps.Config.Cache.DiscoveryTTL(),
			deps.Config.Discovery.TokenThreshold,
			deps.Logger,
		)

		report, provenance, err := orchestrator.Discover(ctx, request)
		if err != nil {
			deps.Logger.Error("discovery failed", zap.Error(err))
			return nil, fmt.Errorf("discovery failed: %w", err)
		}

		return jsonResult(discoverDocument{
			DiscoveryReport: report,
			CacheProvenance: provenance,
		})
	})
}
