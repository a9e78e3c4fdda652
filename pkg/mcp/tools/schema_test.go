package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSchema_RequiresADatabase(t *testing.T) {
	cfg := testConfig()
	cfg.Datasource.Database = ""
	s := newToolServer(t, newFakeClient(), cfg)

	reply := callTool(t, s, "get_schema", map[string]any{})

	resp := decodeError(t, reply)
	assert.Equal(t, "missing_database", resp.Code)
}

func TestGetSchema_DatabaseOverview(t *testing.T) {
	s := newToolServer(t, seedShopClient(), testConfig())

	reply := callTool(t, s, "get_schema", map[string]any{})
	require.False(t, reply.IsError, reply.Text)

	var doc schemaDocument
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &doc))

	require.NotNil(t, doc.Database)
	assert.Nil(t, doc.Table)
	assert.Equal(t, "shop", doc.Database.Database)
	assert.Equal(t, 2, doc.Database.TableCount)
	require.Len(t, doc.Database.ForeignKeys, 1)
	assert.Contains(t, doc.Database.Relationships, "orders")
	assert.Contains(t, doc.Database.Relationships, "customers")
}

func TestGetSchema_OverviewWithoutRelationships(t *testing.T) {
	s := newToolServer(t, seedShopClient(), testConfig())

	reply := callTool(t, s, "get_schema", map[string]any{
		"include_relationships": false,
	})
	require.False(t, reply.IsError, reply.Text)

	var doc schemaDocument
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &doc))
	require.NotNil(t, doc.Database)
	assert.Empty(t, doc.Database.Relationships)
}

func TestGetSchema_TableDetail(t *testing.T) {
	client := seedShopClient()
	client.samples["shop"] = map[string][]map[string]any{
		"customers": {{"id": float64(1), "customer_name": "alice"}},
	}
	s := newToolServer(t, client, testConfig())

	reply := callTool(t, s, "get_schema", map[string]any{
		"table":               "customers",
		"include_sample_data": true,
		"sample_size":         float64(5),
	})
	require.False(t, reply.IsError, reply.Text)

	var doc schemaDocument
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &doc))

	require.NotNil(t, doc.Table)
	assert.Nil(t, doc.Database)
	assert.Equal(t, "customers", doc.Table.Table)
	assert.Equal(t, []string{"id"}, doc.Table.PrimaryKeys)
	require.Len(t, doc.Table.ForeignKeys, 1, "FK edges touching the table are included")
	require.Len(t, doc.Table.SampleRows, 1)
	assert.Equal(t, "alice", doc.Table.SampleRows[0]["customer_name"])
}

func TestGetSchema_SecondCallServedFromCache(t *testing.T) {
	s := newToolServer(t, seedShopClient(), testConfig())

	first := callTool(t, s, "get_schema", map[string]any{})
	require.False(t, first.IsError, first.Text)

	second := callTool(t, s, "get_schema", map[string]any{})
	require.False(t, second.IsError, second.Text)

	var doc schemaDocument
	require.NoError(t, json.Unmarshal([]byte(second.Text), &doc))
	require.NotNil(t, doc.CacheProvenance)
	assert.True(t, doc.CacheProvenance.Hit)
}

func TestGetSchema_DifferentOptionsAreSeparateEntries(t *testing.T) {
	s := newToolServer(t, seedShopClient(), testConfig())

	withRels := callTool(t, s, "get_schema", map[string]any{"include_relationships": true})
	withoutRels := callTool(t, s, "get_schema", map[string]any{"include_relationships": false})

	var a, b schemaDocument
	require.NoError(t, json.Unmarshal([]byte(withRels.Text), &a))
	require.NoError(t, json.Unmarshal([]byte(withoutRels.Text), &b))

	assert.NotEmpty(t, a.Database.Relationships)
	assert.Empty(t, b.Database.Relationships)
	assert.Nil(t, b.CacheProvenance, "different options must not share a cache entry")
}
