package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/logging"
)

// Config holds SQL Server connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ConnString builds the sqlserver URL connection string.
func (c *Config) ConnString() string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
	}
	q := url.Values{}
	if c.Database != "" {
		q.Set("database", c.Database)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Client provides SQL Server query execution and catalog discovery.
type Client struct {
	db     *sql.DB
	log    *datasource.StatementLog
	logger *zap.Logger
}

// New opens a SQL Server connection and verifies it with a ping.
// If logger is nil, a no-op logger is used.
func New(ctx context.Context, cfg *Config, stmtLog *datasource.StatementLog, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlserver", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlserver at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("connected to sqlserver",
		zap.String("conn", logging.SanitizeConnectionString(cfg.ConnString())))

	return &Client{db: db, log: stmtLog, logger: logger}, nil
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
