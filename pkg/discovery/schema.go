package discovery

import (
	"context"
	"fmt"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// DatabaseOverview is the database-scoped document returned by get_schema.
type DatabaseOverview struct {
	Database      string                     `json:"database"`
	TableCount    int                        `json:"table_count"`
	Tables        []datasource.TableStatsRow `json:"tables"`
	ForeignKeys   []datasource.ForeignKeyRow `json:"foreign_keys"`
	Relationships models.RelationshipGraph   `json:"relationships,omitempty"`
}

// TableDetail is the table-scoped document returned by get_schema.
type TableDetail struct {
	Database    string                     `json:"database"`
	Table       string                     `json:"table"`
	Columns     []datasource.ColumnRow     `json:"columns"`
	PrimaryKeys []string                   `json:"primary_keys"`
	ForeignKeys []datasource.ForeignKeyRow `json:"foreign_keys,omitempty"`
	SampleRows  []map[string]any           `json:"sample_rows,omitempty"`
}

// DatabaseSchema builds a database overview from the catalog.
func (a *Analyzer) DatabaseSchema(ctx context.Context, database string, includeRelationships bool) (*DatabaseOverview, error) {
	stats, err := a.catalog.ListTableStats(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", database, err)
	}

	edges, err := a.catalog.ListForeignKeys(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", database, err)
	}

	overview := &DatabaseOverview{
		Database:    database,
		TableCount:  len(stats),
		Tables:      stats,
		ForeignKeys: edges,
	}
	if includeRelationships {
		overview.Relationships = BuildRelationshipGraph(edges)
	}
	return overview, nil
}

// TableSchema builds a table detail document, optionally with sample rows.
func (a *Analyzer) TableSchema(ctx context.Context, database, table string, includeSampleData bool, sampleSize int) (*TableDetail, error) {
	columns, err := a.catalog.ListColumns(ctx, database, table)
	if err != nil {
		return nil, fmt.Errorf("schema for %s.%s: %w", database, table, err)
	}

	detail := &TableDetail{
		Database:    database,
		Table:       table,
		Columns:     columns,
		PrimaryKeys: []string{},
	}
	for _, col := range columns {
		if col.IsPrimaryKey {
			detail.PrimaryKeys = append(detail.PrimaryKeys, col.ColumnName)
		}
	}

	edges, err := a.catalog.ListForeignKeys(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("schema for %s.%s: %w", database, table, err)
	}
	for _, edge := range edges {
		if edge.SourceTable == table || edge.TargetTable == table {
			detail.ForeignKeys = append(detail.ForeignKeys, edge)
		}
	}

	if includeSampleData && sampleSize > 0 {
		samples, err := a.catalog.SampleRows(ctx, database, table, sampleSize)
		if err != nil {
			return nil, fmt.Errorf("schema for %s.%s: %w", database, table, err)
		}
		detail.SampleRows = samples
	}

	return detail, nil
}
