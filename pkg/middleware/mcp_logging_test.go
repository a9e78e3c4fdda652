package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sightline-data/sightline-engine/pkg/logging"
)

func TestSanitizeArguments(t *testing.T) {
	args := map[string]any{
		"sql":          "SELECT * FROM t WHERE password=abc123",
		"api_token":    "tok-secret",
		"database":     "shop",
		"page":         float64(2),
		"long_comment": strings.Repeat("x", 300),
	}

	got := sanitizeArguments(args)

	assert.Equal(t, logging.RedactedText, got["api_token"])
	assert.Equal(t, "shop", got["database"])
	assert.Equal(t, float64(2), got["page"])
	assert.NotContains(t, got["sql"], "abc123")
	assert.Len(t, got["long_comment"], maxLoggedValueLength+3)
}

func TestSanitizeArguments_Nil(t *testing.T) {
	assert.Nil(t, sanitizeArguments(nil))
}

func TestMCPRequestLogger_PassesRequestThrough(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	var seenBody string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seenBody = string(body)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	})

	handler := MCPRequestLogger(logger)(next)

	reqBody := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"run_query","arguments":{"sql":"SELECT 1"}}}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(reqBody)))

	// The downstream handler must see the original body despite interception.
	assert.Equal(t, reqBody, seenBody)

	entries := logs.FilterMessage("mcp request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "run_query", entries[0].ContextMap()["tool"])

	assert.Len(t, logs.FilterMessage("mcp response").All(), 1)
}

func TestMCPRequestLogger_LogsErrorResponses(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`))
	})

	handler := MCPRequestLogger(logger)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`)))

	entries := logs.FilterMessage("mcp response error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-32601), entries[0].ContextMap()["error_code"])
}

func TestMCPRequestLogger_NilLoggerIsANoOp(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	handler := MCPRequestLogger(nil)(next)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}")))

	assert.True(t, called)
}
