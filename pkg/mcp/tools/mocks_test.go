package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/config"
)

// fakeClient is an in-memory datasource.Client for tool handler tests.
type fakeClient struct {
	mu sync.Mutex

	executeCalls int
	lastSQL      string
	lastParams   []any

	result    *datasource.QueryResult
	databases []string
	stats     map[string][]datasource.TableStatsRow
	columns   map[string]map[string][]datasource.ColumnRow
	fks       map[string][]datasource.ForeignKeyRow
	samples   map[string]map[string][]map[string]any
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		result:  &datasource.QueryResult{Columns: []string{}, Rows: []map[string]any{}},
		stats:   make(map[string][]datasource.TableStatsRow),
		columns: make(map[string]map[string][]datasource.ColumnRow),
		fks:     make(map[string][]datasource.ForeignKeyRow),
		samples: make(map[string]map[string][]map[string]any),
	}
}

func (f *fakeClient) addTable(db string, stat datasource.TableStatsRow, cols []datasource.ColumnRow) {
	f.stats[db] = append(f.stats[db], stat)
	if f.columns[db] == nil {
		f.columns[db] = make(map[string][]datasource.ColumnRow)
	}
	f.columns[db][stat.TableName] = cols
}

func (f *fakeClient) Execute(ctx context.Context, sqlQuery string, params []any) (*datasource.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executeCalls++
	f.lastSQL = sqlQuery
	f.lastParams = params
	return f.result, nil
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Close() error                   { return nil }

func (f *fakeClient) ListDatabases(ctx context.Context) ([]string, error) {
	return f.databases, nil
}

func (f *fakeClient) ListTableStats(ctx context.Context, database string) ([]datasource.TableStatsRow, error) {
	return f.stats[database], nil
}

func (f *fakeClient) ListColumns(ctx context.Context, database, table string) ([]datasource.ColumnRow, error) {
	return f.columns[database][table], nil
}

func (f *fakeClient) ListForeignKeys(ctx context.Context, database string) ([]datasource.ForeignKeyRow, error) {
	return f.fks[database], nil
}

func (f *fakeClient) SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	rows := f.samples[database][table]
	if limit < len(rows) {
		return rows[:limit], nil
	}
	return rows, nil
}

func (f *fakeClient) executeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.executeCalls
}

func testConfig() *config.Config {
	return &config.Config{
		Datasource: config.DatasourceConfig{
			Dialect:        "mysql",
			Database:       "shop",
			MaxQueryLength: 10000,
		},
		Cache: config.CacheConfig{
			Enabled:                  true,
			MaxPayloadBytes:          8 << 20,
			QueryTTLMinutes:          30,
			TableSchemaTTLMinutes:    60,
			DatabaseSchemaTTLMinutes: 120,
			DiscoveryTTLMinutes:      240,
		},
		Discovery: config.DiscoveryConfig{
			PageSize:        5,
			MaxTablesPerDB:  20,
			SampleDataLimit: 5,
			TokenThreshold:  20000,
		},
	}
}

// newToolServer wires the tools onto a bare MCP server backed by the fake.
func newToolServer(t *testing.T, client *fakeClient, cfg *config.Config) *server.MCPServer {
	t.Helper()

	s := server.NewMCPServer("sightline-engine-test", "0.0.0",
		server.WithToolCapabilities(true))

	RegisterAll(s, &Deps{
		Client:  client,
		Cache:   cache.New(t.TempDir(), cfg.Cache.Enabled, cfg.Cache.MaxPayloadBytes, nil),
		Config:  cfg,
		StmtLog: datasource.NewStatementLog(),
		Logger:  zap.NewNop(),
	})

	return s
}

// toolReply is the decoded tools/call response payload.
type toolReply struct {
	IsError bool
	Text    string
}

// callTool drives a tool through the full JSON-RPC message path.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolReply {
	t.Helper()

	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	}
	requestBytes, err := json.Marshal(request)
	require.NoError(t, err)

	response := s.HandleMessage(context.Background(), requestBytes)
	responseBytes, err := json.Marshal(response)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(responseBytes, &decoded))
	require.Nil(t, decoded.Error, "unexpected protocol error: %+v", decoded.Error)
	require.NotEmpty(t, decoded.Result.Content)

	return toolReply{
		IsError: decoded.Result.IsError,
		Text:    decoded.Result.Content[0].Text,
	}
}

// decodeError decodes a structured error payload out of a tool reply.
func decodeError(t *testing.T, reply toolReply) ErrorResponse {
	t.Helper()
	require.True(t, reply.IsError, "expected an error result, got: %s", reply.Text)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(reply.Text), &resp),
		fmt.Sprintf("error payload is not structured JSON: %s", reply.Text))
	return resp
}
