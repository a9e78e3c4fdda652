package discovery

import (
	"fmt"
	"strings"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// SuggestJoins proposes join conditions for every unordered pair of the
// requested tables. A declared foreign key in either direction wins; failing
// that, a case-insensitive column-name intersection yields an inferred
// suggestion. Pairs with neither produce no suggestion.
func SuggestJoins(tables []string, columns map[string][]datasource.ColumnRow, edges []datasource.ForeignKeyRow) []models.JoinSuggestion {
	suggestions := make([]models.JoinSuggestion, 0)

	for i := 0; i < len(tables); i++ {
		for j := i + 1; j < len(tables); j++ {
			if s := suggestPair(tables[i], tables[j], columns, edges); s != nil {
				suggestions = append(suggestions, *s)
			}
		}
	}

	return suggestions
}

func suggestPair(left, right string, columns map[string][]datasource.ColumnRow, edges []datasource.ForeignKeyRow) *models.JoinSuggestion {
	// Forward-declared foreign keys win by iteration order.
	for _, e := range edges {
		if e.SourceTable == left && e.TargetTable == right {
			return &models.JoinSuggestion{
				LeftTable:    left,
				RightTable:   right,
				JoinType:     "INNER JOIN",
				Condition:    fmt.Sprintf("%s.%s = %s.%s", left, e.SourceColumn, right, e.TargetColumn),
				Relationship: "foreign_key",
			}
		}
		if e.SourceTable == right && e.TargetTable == left {
			return &models.JoinSuggestion{
				LeftTable:    left,
				RightTable:   right,
				JoinType:     "INNER JOIN",
				Condition:    fmt.Sprintf("%s.%s = %s.%s", right, e.SourceColumn, left, e.TargetColumn),
				Relationship: "foreign_key",
			}
		}
	}

	common := commonColumns(columns[left], columns[right])
	if len(common) == 0 {
		return nil
	}

	conditions := make([]string, len(common))
	for i, col := range common {
		conditions[i] = fmt.Sprintf("%s.%s = %s.%s", left, col, right, col)
	}

	return &models.JoinSuggestion{
		LeftTable:    left,
		RightTable:   right,
		JoinType:     "INNER JOIN",
		Condition:    strings.Join(conditions, " AND "),
		Relationship: "inferred",
	}
}

// commonColumns returns the left table's column names whose lower-cased form
// also appears in the right table, preserving the left table's column order.
func commonColumns(left, right []datasource.ColumnRow) []string {
	rightNames := make(map[string]bool, len(right))
	for _, col := range right {
		rightNames[strings.ToLower(col.ColumnName)] = true
	}

	var common []string
	for _, col := range left {
		if rightNames[strings.ToLower(col.ColumnName)] {
			common = append(common, col.ColumnName)
		}
	}
	return common
}
