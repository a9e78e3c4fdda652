package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/logging"
)

// Client provides MySQL query execution and catalog discovery over a single
// *sql.DB handle.
type Client struct {
	db     *sql.DB
	log    *datasource.StatementLog
	logger *zap.Logger
}

// New opens a MySQL connection and verifies it with a ping.
// If logger is nil, a no-op logger is used.
func New(ctx context.Context, cfg *Config, stmtLog *datasource.StatementLog, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("connected to mysql",
		zap.String("dsn", logging.SanitizeConnectionString(cfg.DSN())))

	return &Client{db: db, log: stmtLog, logger: logger}, nil
}

// NewFromDB wraps an existing handle (for tests with sqlmock).
func NewFromDB(db *sql.DB, stmtLog *datasource.StatementLog, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{db: db, log: stmtLog, logger: logger}
}

// Ping verifies the connection is still alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close tears down the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Execute runs a parameterized query and returns rows keyed by column name.
func (c *Client) Execute(ctx context.Context, sqlQuery string, params []any) (*datasource.QueryResult, error) {
	c.log.Record(sqlQuery)

	rows, err := c.db.QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// collectRows scans every row into a map keyed by column name. []byte values
// are converted to string since the MySQL driver returns text columns as
// byte slices.
func collectRows(rows *sql.Rows) (*datasource.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read column names: %w", err)
	}

	result := &datasource.QueryResult{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rowMap[col] = string(b)
			} else {
				rowMap[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}
