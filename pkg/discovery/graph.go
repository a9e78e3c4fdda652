package discovery

import (
	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// BuildRelationshipGraph turns a flat list of foreign key edges into a
// bidirectional adjacency structure. Every edge A→B produces an entry in A's
// references and a mirrored entry in B's referenced_by; no edge is dropped,
// and a self-referencing edge appears in both lists of its node. Order within
// each list follows input order.
func BuildRelationshipGraph(edges []datasource.ForeignKeyRow) models.RelationshipGraph {
	graph := make(models.RelationshipGraph)

	node := func(table string) *models.TableRelationships {
		if rel, ok := graph[table]; ok {
			return rel
		}
		rel := &models.TableRelationships{
			References:   []models.RelationshipEdge{},
			ReferencedBy: []models.RelationshipEdge{},
		}
		graph[table] = rel
		return rel
	}

	for _, edge := range edges {
		source := node(edge.SourceTable)
		target := node(edge.TargetTable)

		source.References = append(source.References, models.RelationshipEdge{
			Table:        edge.TargetTable,
			ViaColumn:    edge.SourceColumn,
			TargetColumn: edge.TargetColumn,
		})
		target.ReferencedBy = append(target.ReferencedBy, models.RelationshipEdge{
			Table:        edge.SourceTable,
			ViaColumn:    edge.SourceColumn,
			TargetColumn: edge.TargetColumn,
		})
	}

	return graph
}
