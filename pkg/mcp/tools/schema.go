package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/discovery"
)

// maxSampleSize caps the sample rows returned for a table.
const maxSampleSize = 1000

// schemaDocument wraps either scope's schema payload with cache provenance.
type schemaDocument struct {
	Database *discovery.DatabaseOverview `json:"database_overview,omitempty"`
	Table    *discovery.TableDetail      `json:"table_detail,omitempty"`

	CacheProvenance *cache.Provenance `json:"cache_provenance,omitempty"`
}

// registerGetSchemaTool - returns a database overview or a table detail document.
func registerGetSchemaTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"get_schema",
		mcp.WithDescription(
			"Get schema information. Without a table argument, returns a database "+
				"overview (tables, sizes, foreign keys). With a table argument, returns "+
				"column detail with optional sample rows. Results are cached.",
		),
		mcp.WithString(
			"database",
			mcp.Description("Database to inspect. Defaults to the connection's database."),
		),
		mcp.WithString(
			"table",
			mcp.Description("Optional table name for table-scoped detail."),
		),
		mcp.WithBoolean(
			"include_relationships",
			mcp.Description("Include the relationship graph in a database overview. Default true."),
		),
		mcp.WithBoolean(
			"include_sample_data",
			mcp.Description("Include sample rows in a table detail. Default false."),
		),
		mcp.WithNumber(
			"sample_size",
			mcp.Description("Sample row limit, capped at 1000. Default 10."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		database := stringArg(args, "database", deps.Config.Datasource.Database)
		table := stringArg(args, "table", "")
		includeRelationships := boolArg(args, "include_relationships", true)
		includeSampleData := boolArg(args, "include_sample_data", false)
		sampleSize := intArg(args, "sample_size", 10)

		if database == "" {
			return NewErrorResult("missing_database",
				"no database specified and the connection has no default database"), nil
		}
		if sampleSize > maxSampleSize {
			sampleSize = maxSampleSize
		}

		analyzer := discovery.NewAnalyzer(deps.Client, deps.Logger)

		scope := database
		ttl := deps.Config.Cache.DatabaseSchemaTTL()
		if table != "" {
			scope = database + "." + table
			ttl = deps.Config.Cache.TableSchemaTTL()
		}
		fingerprint := cache.FingerprintArgs(map[string]any{
			"relationships": includeRelationships,
			"sample_data":   includeSampleData,
			"sample_size":   sampleSize,
		})

		if payload, prov := deps.Cache.Read(cache.OpSchema, scope, fingerprint, ttl); payload != nil {
			var cached schemaDocument
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.CacheProvenance = prov
				return jsonResult(cached)
			}
		}

		var doc schemaDocument
		if table != "" {
			detail, err := analyzer.TableSchema(ctx, database, table, includeSampleData, sampleSize)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch table schema: %w", err)
			}
			doc.Table = detail
		} else {
			overview, err := analyzer.DatabaseSchema(ctx, database, includeRelationships)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch database schema: %w", err)
			}
			doc.Database = overview
		}

		deps.Cache.Write(doc, cache.OpSchema, scope, fingerprint)

		return jsonResult(doc)
	})
}
