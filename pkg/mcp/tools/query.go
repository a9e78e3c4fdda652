package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/logging"
	sqlutil "github.com/sightline-data/sightline-engine/pkg/sql"
)

// runQueryResult is the document returned by run_query.
type runQueryResult struct {
	SQL             string            `json:"sql"`
	Params          []any             `json:"params,omitempty"`
	Database        string            `json:"database,omitempty"`
	RowCount        int               `json:"row_count"`
	ExecutionTimeMs int64             `json:"execution_time_ms"`
	Rows            []map[string]any  `json:"rows"`
	CacheProvenance *cache.Provenance `json:"cache_provenance,omitempty"`
}

// registerRunQueryTool - executes a single read-only SQL statement.
func registerRunQueryTool(s *server.MCPServer, deps *Deps) {
	tool := mcp.NewTool(
		"run_query",
		mcp.WithDescription(
			"Execute a read-only SQL query (SELECT, SHOW, DESCRIBE, EXPLAIN, DESC) "+
				"against the connected database server. Supports positional parameters. "+
				"Results are cached briefly; identical queries may be served from cache.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("The SQL statement to execute. Must be a single read-only statement."),
		),
		mcp.WithArray(
			"params",
			mcp.Description("Optional positional parameters for placeholders in the SQL."),
		),
		mcp.WithString(
			"database",
			mcp.Description("Optional database scope used for cache keying. Qualify table names in the SQL itself."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		sqlQuery := stringArg(args, "sql", "")
		params := anySliceArg(args, "params")
		database := stringArg(args, "database", "")

		// Validation happens before any I/O.
		if sqlQuery == "" {
			return NewErrorResult("empty_query", "sql is required"), nil
		}
		if len(sqlQuery) > deps.Config.Datasource.MaxQueryLength {
			return NewErrorResultWithDetails("query_too_long",
				"query exceeds the maximum allowed length",
				map[string]any{"length": len(sqlQuery), "max": deps.Config.Datasource.MaxQueryLength}), nil
		}
		if !sqlutil.IsReadOnly(sqlQuery) {
			return NewErrorResult("not_read_only",
				"only SELECT, SHOW, DESCRIBE, EXPLAIN and DESC statements are allowed"), nil
		}

		validation := sqlutil.ValidateAndNormalize(sqlQuery)
		if validation.Error != nil {
			return NewErrorResult("multiple_statements", validation.Error.Error()), nil
		}
		normalized := validation.NormalizedSQL

		if findings := sqlutil.CheckAllParameters(params); len(findings) > 0 {
			return NewErrorResultWithDetails("injection_detected",
				"a parameter value contains a SQL injection pattern",
				map[string]any{"parameter_index": findings[0].ParamIndex, "fingerprint": findings[0].Fingerprint}), nil
		}

		fingerprint := fmt.Sprintf("%s|%v", normalized, params)
		if payload, prov := deps.Cache.Read(cache.OpQuery, database, fingerprint, deps.Config.Cache.QueryTTL()); payload != nil {
			var cached runQueryResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				cached.CacheProvenance = prov
				return jsonResult(cached)
			}
		}

		start := time.Now()
		queryResult, err := deps.Client.Execute(ctx, normalized, params)
		if err != nil {
			deps.Logger.Error("query execution failed",
				zap.String("sql", logging.SanitizeQuery(normalized)),
				zap.Error(err))
			return nil, fmt.Errorf("query execution failed: %w", err)
		}
		elapsed := time.Since(start)

		doc := runQueryResult{
			SQL:             normalized,
			Params:          params,
			Database:        database,
			RowCount:        len(queryResult.Rows),
			ExecutionTimeMs: elapsed.Milliseconds(),
			Rows:            queryResult.Rows,
		}

		deps.Cache.Write(doc, cache.OpQuery, database, fingerprint)

		return jsonResult(doc)
	})
}
