package mysql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
)

const (
	listDatabasesQuery = `SELECT schema_name FROM information_schema.schemata ORDER BY schema_name`

	tableStatsQuery = `
		SELECT
			table_name,
			COALESCE(engine, '') AS engine,
			COALESCE(table_rows, 0) AS table_rows,
			COALESCE(data_length, 0) AS data_length,
			COALESCE(index_length, 0) AS index_length,
			table_type,
			auto_increment
		FROM information_schema.tables
		WHERE table_schema = ?
		AND table_type = 'BASE TABLE'
		ORDER BY data_length + index_length DESC`

	columnsQuery = `
		SELECT
			column_name,
			data_type,
			column_type,
			character_maximum_length,
			numeric_precision,
			is_nullable,
			column_key,
			extra,
			column_default,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = ?
		AND table_name = ?
		ORDER BY ordinal_position`

	foreignKeysQuery = `
		SELECT
			kcu.constraint_name,
			kcu.table_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = kcu.constraint_schema
			AND rc.constraint_name = kcu.constraint_name
		WHERE kcu.table_schema = ?
		AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.ordinal_position`
)

// ListDatabases returns the names of all schemata visible to the connection,
// including system schemas; filtering is the caller's concern.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := c.Execute(ctx, listDatabasesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		names = append(names, asString(row["schema_name"]))
	}
	return names, nil
}

// ListTableStats returns table-level stats ordered by on-disk size descending.
func (c *Client) ListTableStats(ctx context.Context, database string) ([]datasource.TableStatsRow, error) {
	result, err := c.Execute(ctx, tableStatsQuery, []any{database})
	if err != nil {
		return nil, fmt.Errorf("list table stats for %s: %w", database, err)
	}

	stats := make([]datasource.TableStatsRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		stat := datasource.TableStatsRow{
			TableName:   asString(row["table_name"]),
			Engine:      asString(row["engine"]),
			RowCount:    asInt64(row["table_rows"]),
			DataBytes:   asInt64(row["data_length"]),
			IndexBytes:  asInt64(row["index_length"]),
			TableType:   asString(row["table_type"]),
			TableSchema: database,
		}
		if row["auto_increment"] != nil {
			ai := asInt64(row["auto_increment"])
			stat.AutoIncr = &ai
		}
		stats = append(stats, stat)
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
			ColumnName:      asString(row["column_name"]),
			DataType:        asString(row["data_type"]),
			ColumnType:      asString(row["column_type"]),
			IsNullable:      asString(row["is_nullable"]) == "YES",
			IsPrimaryKey:    asString(row["column_key"]) == "PRI",
			Extra:           asString(row["extra"]),
			OrdinalPosition: int(asInt64(row["ordinal_position"])),
		}
		if row["column_default"] != nil {
			def := asString(row["column_default"])
			col.DefaultValue = &def
		}
		if row["character_maximum_length"] != nil {
			l := asInt64(row["character_maximum_length"])
			col.MaxLength = &l
		}
		if row["numeric_precision"] != nil {
			p := asInt64(row["numeric_precision"])
			col.NumericPrecision = &p
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ListForeignKeys returns every foreign key edge declared in a database.
func (c *Client) ListForeignKeys(ctx context.Context, database string) ([]datasource.ForeignKeyRow, error) {
	result, err := c.Execute(ctx, foreignKeysQuery, []any{database})
	if err != nil {
		return nil, fmt.Errorf("list foreign keys for %s: %w", database, err)
	}

	edges := make([]datasource.ForeignKeyRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		edges = append(edges, datasource.ForeignKeyRow{
			ConstraintName: asString(row["constraint_name"]),
			SourceTable:    asString(row["table_name"]),
			SourceColumn:   asString(row["column_name"]),
			TargetTable:    asString(row["referenced_table_name"]),
			TargetColumn:   asString(row["referenced_column_name"]),
			UpdateRule:     asString(row["update_rule"]),
			DeleteRule:     asString(row["delete_rule"]),
		})
	}
	return edges, nil
}

// SampleRows returns up to limit rows from a table. Identifiers are quoted
// with backticks since LIMIT placeholders and identifier parameters are not
// supported by the protocol.
func (c *Client) SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT * FROM %s.%s LIMIT %d", quoteIdent(database), quoteIdent(table), limit)
	result, err := c.Execute(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("sample rows from %s.%s: %w", database, table, err)
	}
	return result.Rows, nil
}

// quoteIdent backtick-quotes a MySQL identifier, doubling any embedded
// backticks so a crafted name cannot terminate the quoting.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int64:
		return n
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		parsed, _ := strconv.ParseInt(string(n), 10, 64)
		return parsed
	case string:
		parsed, _ := strconv.ParseInt(n, 10, 64)
		return parsed
	default:
		return 0
	}
}
