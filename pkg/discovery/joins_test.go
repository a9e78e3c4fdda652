package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
)

func TestSuggestJoins_ForeignKey(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"orders":    {col("id", "int"), col("customer_id", "int")},
		"customers": {col("id", "int"), col("email", "varchar")},
	}
	edges := []datasource.ForeignKeyRow{
		fk("orders", "customer_id", "customers", "id"),
	}

	suggestions := SuggestJoins([]string{"orders", "customers"}, columns, edges)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, "INNER JOIN", s.JoinType)
	assert.Equal(t, "orders.customer_id = customers.id", s.Condition)
	assert.Equal(t, "foreign_key", s.Relationship)
}

func TestSuggestJoins_BackwardForeignKey(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"customers": {col("id", "int")},
		"orders":    {col("id", "int"), col("customer_id", "int")},
	}
	edges := []datasource.ForeignKeyRow{
		fk("orders", "customer_id", "customers", "id"),
	}

	// Requested order has the FK target first; the condition still names the
	// declaring table on the left side.
	suggestions := SuggestJoins([]string{"customers", "orders"}, columns, edges)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "orders.customer_id = customers.id", suggestions[0].Condition)
	assert.Equal(t, "foreign_key", suggestions[0].Relationship)
}

func TestSuggestJoins_InferredFromCommonColumns(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"page_views": {col("Session_ID", "varchar"), col("url", "varchar")},
		"clicks":     {col("session_id", "varchar"), col("target", "varchar")},
	}

	suggestions := SuggestJoins([]string{"page_views", "clicks"}, columns, nil)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, "inferred", s.Relationship)
	// Case-insensitive intersection, left table's spelling in the condition.
	assert.Equal(t, "page_views.Session_ID = clicks.Session_ID", s.Condition)
}

func TestSuggestJoins_MultipleCommonColumnsANDJoined(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"a": {col("tenant_id", "int"), col("user_id", "int"), col("x", "int")},
		"b": {col("tenant_id", "int"), col("user_id", "int"), col("y", "int")},
	}

	suggestions := SuggestJoins([]string{"a", "b"}, columns, nil)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "a.tenant_id = b.tenant_id AND a.user_id = b.user_id", suggestions[0].Condition)
}

func TestSuggestJoins_NoRelationshipNoSuggestion(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"apples":  {col("id", "int")},
		"oranges": {col("oid", "int")},
	}

	suggestions := SuggestJoins([]string{"apples", "oranges"}, columns, nil)

	assert.Empty(t, suggestions)
}

func TestSuggestJoins_ThreeTables(t *testing.T) {
	columns := map[string][]datasource.ColumnRow{
		"orders":    {col("id", "int"), col("customer_id", "int")},
		"customers": {col("id", "int")},
		"products":  {col("id", "int")},
	}
	edges := []datasource.ForeignKeyRow{
		fk("orders", "customer_id", "customers", "id"),
	}

	suggestions := SuggestJoins([]string{"orders", "customers", "products"}, columns, edges)

	// orders-customers via FK; orders-products and customers-products share
	// only "id", which infers a (weak) join on id.
	require.Len(t, suggestions, 3)
	assert.Equal(t, "foreign_key", suggestions[0].Relationship)
	assert.Equal(t, "inferred", suggestions[1].Relationship)
	assert.Equal(t, "inferred", suggestions[2].Relationship)
}
