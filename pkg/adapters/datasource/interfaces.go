package datasource

import "context"

// QueryExecutor executes read-only SQL against a datasource.
// Each implementation owns its connection and must be closed when done.
type QueryExecutor interface {
	// Execute runs a parameterized query and returns ordered rows keyed by
	// column name. Placeholder syntax is dialect-specific (`?` for MySQL,
	// `$1` for PostgreSQL, `@p1` for SQL Server).
	Execute(ctx context.Context, sqlQuery string, params []any) (*QueryResult, error)

	// Ping verifies the datasource is reachable with valid credentials.
	Ping(ctx context.Context) error

	// Close tears down the underlying connection pool.
	Close() error
}

// CatalogReader reads catalog (information-schema) metadata for discovery.
// Implementations must exclude nothing themselves; system-schema filtering is
// the orchestrator's concern.
type CatalogReader interface {
	// ListDatabases returns the names of all databases visible to the connection.
	ListDatabases(ctx context.Context) ([]string, error)

	// ListTableStats returns table-level stats for a database, ordered by
	// on-disk size descending.
	ListTableStats(ctx context.Context, database string) ([]TableStatsRow, error)

	// ListColumns returns the column catalog for one table in ordinal order.
	ListColumns(ctx context.Context, database, table string) ([]ColumnRow, error)

	// ListForeignKeys returns every foreign key edge declared in a database.
	ListForeignKeys(ctx context.Context, database string) ([]ForeignKeyRow, error)

	// SampleRows returns up to limit rows from a table.
	SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error)
}

// Client is what the tool layer needs from a datasource: execution plus
// catalog access over the same connection.
type Client interface {
	QueryExecutor
	CatalogReader
}

// QueryResult holds the rows and metadata returned by a query.
type QueryResult struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
