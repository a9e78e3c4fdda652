package discovery

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// Detail levels trade analysis completeness for cost on large servers.
const (
	DetailSummary  = "summary"  // table stats and FK edges only
	DetailDetailed = "detailed" // plus per-table column catalogs
	DetailFull     = "full"     // plus bounded sample rows and derived insights
)

// Insight thresholds for the full detail level.
const (
	largeTableRowThreshold   = 1_000_000
	centralTableIncomingFKs  = 5
	highlyConnectedOutgoing  = 3
	nullableRatioWarnPercent = 0.7
)

// Analyzer produces a DatabaseAnalysis for one database. The catalog reader
// is an injected collaborator so tests can substitute a fake.
type Analyzer struct {
	catalog datasource.CatalogReader
	logger  *zap.Logger
}

// NewAnalyzer creates a single-database analyzer.
// If logger is nil, a no-op logger is used.
func NewAnalyzer(catalog datasource.CatalogReader, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{catalog: catalog, logger: logger}
}

// Analyze fetches catalog data for one database at the requested detail level
// and classifies its tables. Tables are capped at maxTables after ordering by
// on-disk size descending, so the most significant tables are always
// included. Catalog I/O runs sequentially to bound load on the backing
// connection; a failure on any fetch aborts the whole analysis.
func (a *Analyzer) Analyze(ctx context.Context, database, detailLevel string, maxTables, sampleLimit int) (*models.DatabaseAnalysis, error) {
	stats, err := a.catalog.ListTableStats(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", database, err)
	}

	// Catalog queries order by size already; re-sort defensively since the
	// cap depends on it.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalBytes() > stats[j].TotalBytes()
	})
	if maxTables > 0 && len(stats) > maxTables {
		stats = stats[:maxTables]
	}

	edges, err := a.catalog.ListForeignKeys(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", database, err)
	}

	analysis := &models.DatabaseAnalysis{
		Database:      database,
		DetailLevel:   detailLevel,
		Tables:        make(map[string]*models.TableAnalysis, len(stats)),
		Relationships: BuildRelationshipGraph(edges),
	}

	for _, stat := range stats {
		table := &models.TableAnalysis{Stats: stat}

		var columns []datasource.ColumnRow
		var samples []map[string]any

		if detailLevel == DetailDetailed || detailLevel == DetailFull {
			columns, err = a.catalog.ListColumns(ctx, database, stat.TableName)
			if err != nil {
				return nil, fmt.Errorf("analyze %s: %w", database, err)
			}
			table.Columns = columns
		}

		if detailLevel == DetailFull {
			samples, err = a.catalog.SampleRows(ctx, database, stat.TableName, sampleLimit)
			if err != nil {
				return nil, fmt.Errorf("analyze %s: %w", database, err)
			}
			table.SampleRows = samples
		}

		table.Classification = ClassifyTable(stat.TableName, columns, samples)

		if detailLevel == DetailFull {
			table.Insights = tableInsights(stat, columns, analysis.Relationships[stat.TableName])
		}

		analysis.Tables[stat.TableName] = table
	}

	analysis.Summary = summarize(analysis)

	a.logger.Debug("analyzed database",
		zap.String("database", database),
		zap.String("detail_level", detailLevel),
		zap.Int("tables", len(analysis.Tables)))

	return analysis, nil
}

// tableInsights derives warnings for one table at the full detail level.
func tableInsights(stat datasource.TableStatsRow, columns []datasource.ColumnRow, rel *models.TableRelationships) []string {
	var insights []string

	if stat.RowCount > largeTableRowThreshold {
		insights = append(insights, fmt.Sprintf(
			"large table: ~%d rows; prefer filtered or aggregated queries", stat.RowCount))
	}

	if rel != nil {
		if len(rel.ReferencedBy) > centralTableIncomingFKs {
			insights = append(insights, fmt.Sprintf(
				"central table: referenced by %d tables", len(rel.ReferencedBy)))
		}
		if len(rel.References) > highlyConnectedOutgoing {
			insights = append(insights, fmt.Sprintf(
				"highly connected: references %d tables", len(rel.References)))
		}
	}

	if len(columns) > 0 {
		nullable := 0
		for _, col := range columns {
			if col.IsNullable {
				nullable++
			}
		}
		if ratio := float64(nullable) / float64(len(columns)); ratio > nullableRatioWarnPercent {
			insights = append(insights, fmt.Sprintf(
				"high nullable ratio: %.0f%% of columns are nullable", ratio*100))
		}
	}

	return insights
}

// summarize computes the role counts, top tables and architecture tag.
func summarize(analysis *models.DatabaseAnalysis) models.AnalysisSummary {
	summary := models.AnalysisSummary{
		TableCount: len(analysis.Tables),
		RoleCounts: make(map[models.RoleType]int),
	}

	type tableRows struct {
		name string
		rows int64
	}
	byRows := make([]tableRows, 0, len(analysis.Tables))

	for name, table := range analysis.Tables {
		summary.RoleCounts[table.Classification.RoleType]++
		summary.TotalRowEstimate += table.Stats.RowCount
		byRows = append(byRows, tableRows{name: name, rows: table.Stats.RowCount})
	}

	sort.Slice(byRows, func(i, j int) bool {
		if byRows[i].rows != byRows[j].rows {
			return byRows[i].rows > byRows[j].rows
		}
		return byRows[i].name < byRows[j].name
	})
	for i := 0; i < len(byRows) && i < 5; i++ {
		summary.TopTablesByRows = append(summary.TopTablesByRows, byRows[i].name)
	}

	if summary.RoleCounts[models.RoleFactTable] > 0 {
		summary.Architecture = "star_schema"
	} else {
		summary.Architecture = "normalized"
	}

	return summary
}
