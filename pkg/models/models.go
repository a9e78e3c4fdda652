// Package models defines the analysis documents produced by the discovery
// engine and returned by the MCP tools.
package models

import "github.com/sightline-data/sightline-engine/pkg/adapters/datasource"

// RoleType classifies the analytic role a table plays.
type RoleType string

const (
	RoleUserDimension  RoleType = "user_dimension"
	RoleUserEvents     RoleType = "user_events"
	RoleFactTable      RoleType = "fact_table"
	RoleDimensionTable RoleType = "dimension_table"
	RoleLookupTable    RoleType = "lookup_table"
	RoleUnknown        RoleType = "unknown"
)

// TableClassification is the outcome of the role heuristics for one table.
// The column-role sets are independent classifications, not a partition: a
// column may appear in more than one set.
type TableClassification struct {
	TableName  string   `json:"table_name"`
	EntityName string   `json:"entity_name,omitempty"`
	RoleType   RoleType `json:"role_type"`
	Confidence float64  `json:"confidence"`

	IdentifierColumns []string `json:"identifier_columns"`
	UserColumns       []string `json:"user_columns"`
	TimeColumns       []string `json:"time_columns"`
	BehaviorColumns   []string `json:"behavior_columns"`
	MetricColumns     []string `json:"metric_columns"`
	DimensionColumns  []string `json:"dimension_columns"`
}

// RelationshipEdge is one endpoint-to-endpoint link in the relationship graph.
type RelationshipEdge struct {
	Table        string `json:"table"`
	ViaColumn    string `json:"via_column"`
	TargetColumn string `json:"target_column"`
}

// TableRelationships holds both directions of a table's foreign key links.
type TableRelationships struct {
	References   []RelationshipEdge `json:"references"`
	ReferencedBy []RelationshipEdge `json:"referenced_by"`
}

// RelationshipGraph maps table name to its bidirectional adjacency. Built
// once per relationship set and never mutated after construction.
type RelationshipGraph map[string]*TableRelationships

// JoinSuggestion proposes a join between two tables.
type JoinSuggestion struct {
	LeftTable    string `json:"left_table"`
	RightTable   string `json:"right_table"`
	JoinType     string `json:"join_type"`
	Condition    string `json:"condition"`
	Relationship string `json:"relationship"` // "foreign_key" or "inferred"
}

// TableAnalysis is the per-table slice of a DatabaseAnalysis. Columns and
// sample rows are present only at the detail levels that fetch them.
type TableAnalysis struct {
	Stats          datasource.TableStatsRow `json:"stats"`
	Classification TableClassification      `json:"classification"`
	Columns        []datasource.ColumnRow   `json:"columns,omitempty"`
	SampleRows     []map[string]any         `json:"sample_rows,omitempty"`
	Insights       []string                 `json:"insights,omitempty"`
}

// AnalysisSummary aggregates a database's classified structure.
type AnalysisSummary struct {
	TableCount       int              `json:"table_count"`
	RoleCounts       map[RoleType]int `json:"role_counts"`
	TopTablesByRows  []string         `json:"top_tables_by_rows"`
	Architecture     string           `json:"architecture"` // "star_schema" or "normalized"
	TotalRowEstimate int64            `json:"total_row_estimate"`
}

// DatabaseAnalysis is the full analysis document for one database.
type DatabaseAnalysis struct {
	Database      string                    `json:"database"`
	DetailLevel   string                    `json:"detail_level"`
	Tables        map[string]*TableAnalysis `json:"tables"`
	Relationships RelationshipGraph         `json:"relationships"`
	Summary       AnalysisSummary           `json:"summary"`
}

// CrossDatabaseInsight flags a pattern detected across databases.
type CrossDatabaseInsight struct {
	Type        string   `json:"type"` // "duplicate_table_structure" or "distributed_user_data"
	Description string   `json:"description"`
	Databases   []string `json:"databases"`
	Table       string   `json:"table,omitempty"`
}

// Recommendation is an analytic suggestion derived from aggregate role counts.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ExampleSQL  string `json:"example_sql,omitempty"`
}

// Pagination describes the window of databases analyzed in one call.
// The page number is taken from the caller unclamped: out-of-range pages
// yield an empty analyzed set with flags computed from the raw page number.
type Pagination struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"page_size"`
	TotalDatabases  int  `json:"total_databases"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// SizeEstimate reports how large the serialized report is, with guidance when
// it is likely to exceed the caller's context budget.
type SizeEstimate struct {
	Bytes           int      `json:"bytes"`
	EstimatedTokens int      `json:"estimated_tokens"`
	Guidance        []string `json:"guidance,omitempty"`
}

// DiscoveryReport is the top-level document returned by discover_analytics.
type DiscoveryReport struct {
	AllDatabases       []string                     `json:"all_databases"`
	AnalyzedDatabases  []string                     `json:"analyzed_databases"`
	Databases          map[string]*DatabaseAnalysis `json:"databases"`
	CrossDatabase      []CrossDatabaseInsight       `json:"cross_database_insights,omitempty"`
	Recommendations    []Recommendation             `json:"recommendations,omitempty"`
	Pagination         Pagination                   `json:"pagination"`
	FocusArea          string                       `json:"focus_area,omitempty"`
	ExecutedStatements []string                     `json:"executed_statements,omitempty"`
	SizeEstimate       *SizeEstimate                `json:"size_estimate,omitempty"`
}
