// Package factory constructs the datasource client for the configured dialect.
// It lives outside pkg/adapters/datasource so the driver subpackages can
// depend on the interface package without a cycle.
package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource/mssql"
	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource/mysql"
	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource/postgres"
	"github.com/sightline-data/sightline-engine/pkg/apperrors"
	"github.com/sightline-data/sightline-engine/pkg/config"
)

// New opens a datasource client for the configured dialect.
func New(ctx context.Context, cfg *config.DatasourceConfig, stmtLog *datasource.StatementLog, logger *zap.Logger) (datasource.Client, error) {
	switch cfg.Dialect {
	case "mysql":
		return mysql.New(ctx, &mysql.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		}, stmtLog, logger)

	case "postgres":
		return postgres.New(ctx, &postgres.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		}, stmtLog, logger)

	case "mssql":
		return mssql.New(ctx, &mssql.Config{
			Host:     cfg.Host,
			Port:     cfg.Port,
			User:     cfg.User,
			Password: cfg.Password,
			Database: cfg.Database,
		}, stmtLog, logger)

	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownDialect, cfg.Dialect)
	}
}
