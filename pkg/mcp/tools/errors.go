package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorResponse is the structured error payload returned inside tool
// results. Embedding the error in the result body keeps the code and
// message visible to the calling agent instead of being swallowed by
// the MCP client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult builds a tool result carrying a structured error. Reserve
// it for recoverable input problems the agent can fix and retry, such as a
// write statement or an empty table list. System failures (connection loss,
// query execution errors) should surface as Go errors instead.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails is NewErrorResult with extra context attached,
// for errors where the agent needs more than the message to respond.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	payload, _ := json.Marshal(ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	})
	result := mcp.NewToolResultText(string(payload))
	result.IsError = true
	return result
}
