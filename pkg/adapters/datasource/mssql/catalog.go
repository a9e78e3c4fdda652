package mssql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
)

const (
	listDatabasesQuery = `SELECT name FROM sys.databases ORDER BY name`

	tableStatsQuery = `
		SELECT
			t.name AS table_name,
			COALESCE(SUM(p.rows), 0) AS table_rows,
			COALESCE(SUM(a.used_pages), 0) * 8192 AS data_length
		FROM sys.tables t
		JOIN sys.partitions p ON p.object_id = t.object_id AND p.index_id IN (0, 1)
		JOIN sys.allocation_units a ON a.container_id = p.partition_id
		GROUP BY t.name
		ORDER BY data_length DESC`

	columnsQuery = `
		SELECT
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.CHARACTER_MAXIMUM_LENGTH,
			c.NUMERIC_PRECISION,
			c.IS_NULLABLE,
			c.COLUMN_DEFAULT,
			c.ORDINAL_POSITION,
			COLUMNPROPERTY(OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') AS is_identity,
			CASE WHEN pk.COLUMN_NAME IS NULL THEN 0 ELSE 1 END AS is_primary
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
		) pk ON pk.TABLE_NAME = c.TABLE_NAME AND pk.COLUMN_NAME = c.COLUMN_NAME
		WHERE c.TABLE_NAME = @p1
		ORDER BY c.ORDINAL_POSITION`

	foreignKeysQuery = `
		SELECT
			fk.name AS constraint_name,
			OBJECT_NAME(fkc.parent_object_id) AS source_table,
			pc.name AS source_column,
			OBJECT_NAME(fkc.referenced_object_id) AS target_table,
			rc.name AS target_column,
			fk.update_referential_action_desc AS update_rule,
			fk.delete_referential_action_desc AS delete_rule
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		ORDER BY source_table`
)

// ListDatabases returns the names of all databases on the server.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	result, err := c.Execute(ctx, listDatabasesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	names := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		names = append(names, str(row["name"]))
	}
	return names, nil
}

// ListTableStats returns table stats for the connected database, ordered by
// size descending. The database argument must match the connected database;
// go-mssqldb scopes sys.tables to the current database.
func (c *Client) ListTableStats(ctx context.Context, database string) ([]datasource.TableStatsRow, error) {
	result, err := c.Execute(ctx, tableStatsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list table stats for %s: %w", database, err)
	}

	stats := make([]datasource.TableStatsRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		stats = append(stats, datasource.TableStatsRow{
			TableName:   str(row["table_name"]),
			RowCount:    i64(row["table_rows"]),
			DataBytes:   i64(row["data_length"]),
			TableType:   "BASE TABLE",
			TableSchema: database,
		})
	}
	return stats, nil
}

// ListColumns returns the column catalog for one table in ordinal order.
func (c *Client) ListColumns(ctx context.Context, database, table string) ([]datasource.ColumnRow, error) {
	result, err := c.Execute(ctx, columnsQuery, []any{table})
	if err != nil {
		return nil, fmt.Errorf("list columns for %s.%s: %w", database, table, err)
	}

	cols := make([]datasource.ColumnRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		col := datasource.ColumnRow{
			ColumnName:      str(row["COLUMN_NAME"]),
			DataType:        str(row["DATA_TYPE"]),
			IsNullable:      str(row["IS_NULLABLE"]) == "YES",
			IsPrimaryKey:    i64(row["is_primary"]) == 1,
			OrdinalPosition: int(i64(row["ORDINAL_POSITION"])),
		}
		if i64(row["is_identity"]) == 1 {
			col.Extra = "identity"
		}
		if row["COLUMN_DEFAULT"] != nil {
			def := str(row["COLUMN_DEFAULT"])
			col.DefaultValue = &def
		}
		if row["CHARACTER_MAXIMUM_LENGTH"] != nil {
			l := i64(row["CHARACTER_MAXIMUM_LENGTH"])
			col.MaxLength = &l
		}
		if row["NUMERIC_PRECISION"] != nil {
			p := i64(row["NUMERIC_PRECISION"])
			col.NumericPrecision = &p
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ListForeignKeys returns every foreign key edge in the connected database.
func (c *Client) ListForeignKeys(ctx context.Context, database string) ([]datasource.ForeignKeyRow, error) {
	result, err := c.Execute(ctx, foreignKeysQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("list foreign keys for %s: %w", database, err)
	}

	edges := make([]datasource.ForeignKeyRow, 0, len(result.Rows))
	for _, row := range result.Rows {
		edges = append(edges, datasource.ForeignKeyRow{
			ConstraintName: str(row["constraint_name"]),
			SourceTable:    str(row["source_table"]),
			SourceColumn:   str(row["source_column"]),
			TargetTable:    str(row["target_table"]),
			TargetColumn:   str(row["target_column"]),
			UpdateRule:     str(row["update_rule"]),
			DeleteRule:     str(row["delete_rule"]),
		})
	}
	return edges, nil
}

// SampleRows returns up to limit rows from a table.
func (c *Client) SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT TOP (%d) * FROM [%s]", limit, strings.ReplaceAll(table, "]", "]]"))
	result, err := c.Execute(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("sample rows from %s.%s: %w", database, table, err)
	}
	return result.Rows, nil
}

func str(v any) string {
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

func i64(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int64:
		return n
	case int:
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
