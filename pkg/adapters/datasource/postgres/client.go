package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/logging"
)

// Config holds PostgreSQL connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ConnString builds the pgx connection string.
func (c *Config) ConnString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode)
}

// Client provides PostgreSQL query execution and catalog discovery.
// Schemas within the connected database play the role of databases; pgx does
// not allow cross-database queries on one connection.
type Client struct {
	pool   *pgxpool.Pool
	log    *datasource.StatementLog
	logger *zap.Logger
}

// New opens a PostgreSQL pool and verifies it with a ping.
// If logger is nil, a no-op logger is used.
func New(ctx context.Context, cfg *Config, stmtLog *datasource.StatementLog, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("connected to postgres",
		zap.String("conn", logging.SanitizeConnectionString(cfg.ConnString())))

	return &Client{pool: pool, log: stmtLog, logger: logger}, nil
}

// Ping verifies the pool is still alive.
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close releases the pool.
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// Execute runs a parameterized query ($1, $2, ...) and returns rows keyed by
// column name.
func (c *Client) Execute(ctx context.Context, sqlQuery string, params []any) (*datasource.QueryResult, error) {
	c.log.Record(sqlQuery)

	rows, err := c.pool.Query(ctx, sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	result := &datasource.QueryResult{
		Columns: columns,
		Rows:    make([]map[string]any, 0),
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		rowMap := make(map[string]any, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		result.Rows = append(result.Rows, rowMap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}
