// Package discovery implements the classification, relationship and
// cross-database analysis engine behind the analytics tools.
package discovery

import (
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// Keyword tables for column-role detection. Kept as data so the lists are
// independently testable and swappable. Matching is case-insensitive
// substring match on the column name.
var (
	userKeywords      = []string{"user", "customer", "account", "person", "member", "client"}
	timeKeywords      = []string{"created", "updated", "modified", "deleted", "time", "date"}
	behaviorKeywords  = []string{"action", "event", "activity", "status", "type", "category", "state"}
	metricKeywords    = []string{"count", "amount", "total", "sum", "avg", "price", "cost", "revenue", "quantity"}
	dimensionKeywords = []string{"name", "title", "description", "label", "category"}

	temporalTypes = map[string]bool{
		"date":      true,
		"datetime":  true,
		"timestamp": true,
		"time":      true,
		"year":      true,
	}
)

// Classification confidences are fixed per rule; precedence is part of the
// contract, so a table matching an earlier rule is never re-evaluated against
// a later one.
const (
	confidenceUserDimension = 0.9
	confidenceUserEvents    = 0.95
	confidenceFactTable     = 0.8
	confidenceDimension     = 0.7
	confidenceLookup        = 0.6
)

// lookupSampleBound caps the sample-row count under which a narrow table is
// treated as a lookup table.
const lookupSampleBound = 100

// ClassifyTable assigns an analytic role to a table from its column catalog.
// Sample rows are used only to bound lookup-table detection. The function is
// pure: identical input always yields an identical classification.
func ClassifyTable(tableName string, columns []datasource.ColumnRow, sampleRows []map[string]any) models.TableClassification {
	c := models.TableClassification{
		TableName:         tableName,
		EntityName:        inflection.Singular(tableName),
		RoleType:          models.RoleUnknown,
		IdentifierColumns: []string{},
		UserColumns:       []string{},
		TimeColumns:       []string{},
		BehaviorColumns:   []string{},
		MetricColumns:     []string{},
		DimensionColumns:  []string{},
	}

	// Without column data (summary detail level) classification degrades to
	// unknown rather than guessing from the table name alone.
	if len(columns) == 0 {
		return c
	}

	for _, col := range columns {
		name := strings.ToLower(col.ColumnName)

		if col.IsPrimaryKey || col.IsAutoIncrement() {
			c.IdentifierColumns = append(c.IdentifierColumns, col.ColumnName)
		}
		if matchesAny(name, userKeywords) {
			c.UserColumns = append(c.UserColumns, col.ColumnName)
		}
		if temporalTypes[strings.ToLower(col.DataType)] || matchesAny(name, timeKeywords) {
			c.TimeColumns = append(c.TimeColumns, col.ColumnName)
		}
		if matchesAny(name, behaviorKeywords) {
			c.BehaviorColumns = append(c.BehaviorColumns, col.ColumnName)
		}
		if matchesAny(name, metricKeywords) {
			c.MetricColumns = append(c.MetricColumns, col.ColumnName)
		}
		if matchesAny(name, dimensionKeywords) {
			c.DimensionColumns = append(c.DimensionColumns, col.ColumnName)
		}
	}

	// Role rules in precedence order; first match wins.
	switch {
	case len(c.UserColumns) > 0 && len(c.TimeColumns) == 0:
		c.RoleType = models.RoleUserDimension
		c.Confidence = confidenceUserDimension
	case len(c.UserColumns) > 0 && len(c.TimeColumns) > 0 && len(c.BehaviorColumns) > 0:
		c.RoleType = models.RoleUserEvents
		c.Confidence = confidenceUserEvents
	case len(c.MetricColumns) > len(c.DimensionColumns):
		c.RoleType = models.RoleFactTable
		c.Confidence = confidenceFactTable
	case len(c.DimensionColumns) > 0 && len(columns) < 10:
		c.RoleType = models.RoleDimensionTable
		c.Confidence = confidenceDimension
	case len(columns) < 5 && len(sampleRows) < lookupSampleBound:
		c.RoleType = models.RoleLookupTable
		c.Confidence = confidenceLookup
	}

	return c
}

func matchesAny(name string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}
