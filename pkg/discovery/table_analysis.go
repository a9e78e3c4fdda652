package discovery

import (
	"context"
	"fmt"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/apperrors"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// Analysis types for AnalyzeTables.
const (
	AnalysisRelationships = "relationships"
	AnalysisUserBehavior  = "user_behavior"
	AnalysisDataFlow      = "data_flow"
)

// TableAnalysisResult is the document returned by analyze_tables.
type TableAnalysisResult struct {
	AnalysisType    string                                `json:"analysis_type"`
	Database        string                                `json:"database"`
	Tables          []string                              `json:"tables"`
	JoinSuggestions []models.JoinSuggestion               `json:"join_suggestions,omitempty"`
	Classifications map[string]models.TableClassification `json:"classifications,omitempty"`
	Relationships   models.RelationshipGraph              `json:"relationships,omitempty"`
	DataFlows       []DataFlow                            `json:"data_flows,omitempty"`
}

// DataFlow describes how data moves into and out of one table along declared
// foreign keys.
type DataFlow struct {
	Table      string   `json:"table"`
	FeedsInto  []string `json:"feeds_into"`  // tables this table references
	FedBy      []string `json:"fed_by"`      // tables referencing this table
	IsTerminal bool     `json:"is_terminal"` // no outgoing references
	IsSource   bool     `json:"is_source"`   // no incoming references
}

// AnalyzeTables runs one of the three table-set analyses. Column catalogs are
// fetched for every requested table; FK edges once per call.
func (a *Analyzer) AnalyzeTables(ctx context.Context, database string, tables []string, analysisType string) (*TableAnalysisResult, error) {
	if len(tables) == 0 {
		return nil, apperrors.ErrEmptyTableList
	}

	edges, err := a.catalog.ListForeignKeys(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("analyze tables in %s: %w", database, err)
	}

	columns := make(map[string][]datasource.ColumnRow, len(tables))
	for _, table := range tables {
		cols, err := a.catalog.ListColumns(ctx, database, table)
		if err != nil {
			return nil, fmt.Errorf("analyze tables in %s: %w", database, err)
		}
		columns[table] = cols
	}

	result := &TableAnalysisResult{
		AnalysisType: analysisType,
		Database:     database,
		Tables:       tables,
	}

	switch analysisType {
	case AnalysisRelationships:
		result.JoinSuggestions = SuggestJoins(tables, columns, edges)
		result.Relationships = subgraph(BuildRelationshipGraph(edges), tables)

	case AnalysisUserBehavior:
		result.Classifications = make(map[string]models.TableClassification, len(tables))
		for _, table := range tables {
			result.Classifications[table] = ClassifyTable(table, columns[table], nil)
		}

	case AnalysisDataFlow:
		graph := BuildRelationshipGraph(edges)
		result.DataFlows = traceDataFlows(graph, tables)

	default:
		return nil, fmt.Errorf("unknown analysis type %q", analysisType)
	}

	return result, nil
}

// subgraph restricts a relationship graph to the requested tables, keeping
// edges that touch at least one of them.
func subgraph(graph models.RelationshipGraph, tables []string) models.RelationshipGraph {
	keep := make(map[string]bool, len(tables))
	for _, t := range tables {
		keep[t] = true
	}

	out := make(models.RelationshipGraph)
	for name, rel := range graph {
		if keep[name] {
			out[name] = rel
		}
	}
	return out
}

// traceDataFlows follows FK edges to describe each requested table's position
// in the data flow.
func traceDataFlows(graph models.RelationshipGraph, tables []string) []DataFlow {
	flows := make([]DataFlow, 0, len(tables))

	for _, table := range tables {
		flow := DataFlow{Table: table, FeedsInto: []string{}, FedBy: []string{}}

		if rel, ok := graph[table]; ok {
			seen := make(map[string]bool)
			for _, edge := range rel.References {
				if !seen["out:"+edge.Table] {
					flow.FeedsInto = append(flow.FeedsInto, edge.Table)
					seen["out:"+edge.Table] = true
				}
			}
			for _, edge := range rel.ReferencedBy {
				if !seen["in:"+edge.Table] {
					flow.FedBy = append(flow.FedBy, edge.Table)
					seen["in:"+edge.Table] = true
				}
			}
		}

		flow.IsTerminal = len(flow.FeedsInto) == 0
		flow.IsSource = len(flow.FedBy) == 0
		flows = append(flows, flow)
	}

	return flows
}
