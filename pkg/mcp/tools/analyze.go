package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sightline-data/sightline-engine/pkg/discovery"
)

// registerAnalyzeTablesTool - runs relationship, user-behavior or data-flow
// analysis over a set of tables.
func registerAnalyzeTablesTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"analyze_tables",
		mcp.WithDescription(
			"Analyze a set of tables. analysis_type 'relationships' suggests join "+
				"conditions from foreign keys and shared column names; 'user_behavior' "+
				"classifies tables by analytic role and surfaces user/time/behavior "+
				"columns; 'data_flow' traces foreign keys to show how data moves "+
				"between the tables.",
		),
		mcp.WithArray(
			"tables",
			mcp.Required(),
			mcp.Description("Table names to analyze. At least one is required."),
		),
		mcp.WithString(
			"analysis_type",
			mcp.Description("One of: relationships, user_behavior, data_flow. Default relationships."),
		),
		mcp.WithString(
			"database",
			mcp.Description("Database holding the tables. Defaults to the connection's database."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		tables := stringSliceArg(args, "tables")
		analysisType := stringArg(args, "analysis_type", discovery.AnalysisRelationships)
		database := stringArg(args, "database", deps.Config.Datasource.Database)

		if len(tables) == 0 {
			return NewErrorResult("empty_table_list", "at least one table is required"), nil
		}
		switch analysisType {
		case discovery.AnalysisRelationships, discovery.AnalysisUserBehavior, discovery.AnalysisDataFlow:
		default:
			return NewErrorResultWithDetails("invalid_analysis_type",
				fmt.Sprintf("unknown analysis type %q", analysisType),
				map[string]any{"valid_types": []string{
					discovery.AnalysisRelationships,
					discovery.AnalysisUserBehavior,
					discovery.AnalysisDataFlow,
				}}), nil
		}
		if database == "" {
			return NewErrorResult("missing_database",
				"no database specified and the connection has no default database"), nil
		}

		analyzer := discovery.NewAnalyzer(deps.Client, deps.Logger)
		result, err := analyzer.AnalyzeTables(ctx, database, tables, analysisType)
		if err != nil {
			return nil, fmt.Errorf("table analysis failed: %w", err)
		}

		return jsonResult(result)
	})
}
