package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
)

const (
	listSchemataQuery = `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT LIKE 'pg_%'
		ORDER BY schema_name`

	tableStatsQuery = `
		SELECT
			c.relname AS table_name,
			COALESCE(c.reltuples::bigint, 0) AS table_rows,
			COALESCE(pg_table_size(c.oid), 0) AS data_length,
			COALESCE(pg_indexes_size(c.oid), 0) AS index_length
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1
		AND c.relkind = 'r'
		ORDER BY pg_table_size(c.oid) + pg_indexes_size(c.oid) DESC`

	columnsQuery = `
		SELECT
			col.column_name,
			col.data_type,
			col.character_maximum_length,
			col.numeric_precision,
			col.is_nullable,
			col.column_default,
			col.ordinal_position,
			col.is_identity,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON kcu.constraint_name = tc.constraint_name
					AND kcu.table_schema = tc.table_schema
				WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = col.table_schema
				AND tc.table_name = col.table_name
				AND kcu.column_name = col.column_name
			) AS is_primary
		FROM information_schema.columns col
		WHERE col.table_schema = $1
		AND col.table_name = $2
		ORDER BY col.ordinal_position`

	foreignKeysQuery = `
		SELECT
			tc.constraint_name,
			tc.table_name AS source_table,
			kcu.column_name AS source_column,
			ccu.table_name AS target_table,
			ccu.column_name AS target_column,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_name = tc.constraint_name
			AND kcu.table_schema = tc.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1
		ORDER BY tc.table_name, kcu.ordinal_position`
)

// ListDatabases returns the non-catalog schemas of the connected database.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := c.Execute(ctx, listSchemataQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		if s, ok := row["schema_name"].(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

// ListTableStats returns table-level stats ordered by on-disk size descending.
// Row counts come from pg_class.reltuples, an estimate maintained by ANALYZE.
func (c *Client) ListTableStats(ctx context.Context, database string) ([]datasource.TableStatsRow, error) {
	result, err := c.Execute(ctx, tableStatsQuery, []any{database})
	if err != nil {
		return nil, fmt.Errorf("list table stats for %s: %w", database, err)
	}

	stats := make([]datasource.TableStatsRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		stats = append(stats, datasource.TableStatsRow{
			TableName:   toString(row["table_name"]),
			RowCount:    toInt64(row["table_rows"]),
			DataBytes:   toInt64(row["data_length"]),
			IndexBytes:  toInt64(row["index_length"]),
			TableType:   "BASE TABLE",
			TableSchema: database,
		})
	}
	return stats, nil
}

// ListColumns returns the column catalog for one table in ordinal order.
func (c *Client) ListColumns(ctx context.Context, database, table string) ([]datasource.ColumnRow, error) {
	result, err := c.Execute(ctx, columnsQuery, []any{database, table})
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", database, table, err)
	}

	cols := make([]datasource.ColumnRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		col := datasource.ColumnRow{
			ColumnName:      toString(row["column_name"]),
			DataType:        toString(row["data_type"]),
			IsNullable:      toString(row["is_nullable"]) == "YES",
			IsPrimaryKey:    row["is_primary"] == true,
			OrdinalPosition: int(toInt64(row["ordinal_position"])),
		}
		if toString(row["is_identity"]) == "YES" {
			col.Extra = "identity"
		}
		if row["column_default"] != nil {
			def := toString(row["column_default"])
			col.DefaultValue = &def
		}
		if row["character_maximum_length"] != nil {
			l := toInt64(row["character_maximum_length"])
			col.MaxLength = &l
		}
		if row["numeric_precision"] != nil {
			p := toInt64(row["numeric_precision"])
			col.NumericPrecision = &p
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ListForeignKeys returns every foreign key edge declared in a schema.
func (c *Client) ListForeignKeys(ctx context.Context, database string) ([]datasource.ForeignKeyRow, error) {
	result, err := c.Execute(ctx, foreignKeysQuery, []any{database})
	if err != nil {
		return nil, fmt.Errorf("list foreign keys for %s: %w", database, err)
	}

	edges := make([]datasource.ForeignKeyRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		edges = append(edges, datasource.ForeignKeyRow{
			ConstraintName: toString(row["constraint_name"]),
			SourceTable:    toString(row["source_table"]),
			SourceColumn:   toString(row["source_column"]),
			TargetTable:    toString(row["target_table"]),
			TargetColumn:   toString(row["target_column"]),
			UpdateRule:     toString(row["update_rule"]),
			DeleteRule:     toString(row["delete_rule"]),
		})
	}
	return edges, nil
}

// SampleRows returns up to limit rows from a table.
func (c *Client) SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d",
		pgx.Identifier{database}.Sanitize(), pgx.Identifier{table}.Sanitize(), limit)
	result, err := c.Execute(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("sample rows from %s.%s: %w", database, table, err)
	}
	return result.Rows, nil
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
