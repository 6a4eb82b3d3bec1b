package mcpserver

import "encoding/json"

// JSONRPCRequest is an incoming JSON-RPC 2.0 message. Notifications carry
// no ID.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse carries either Result or Error.
type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InitializeResult answers "initialize" and opens a session.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
	SessionID string `json:"sessionId,omitempty"`
}

// ToolsListResult answers "tools/list".
type ToolsListResult struct {
	Tools []ToolDef `json:"tools"`
}

type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolCallResult answers "tools/call". Tool failures are reported in-band
// with IsError rather than as JSON-RPC errors.
type ToolCallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult wraps text as a single content block.
func TextResult(text string) *ToolCallResult {
	return &ToolCallResult{Content: []Content{{Type: "text", Text: text}}}
}

// JSONResult renders data as indented JSON text.
func JSONResult(data any) *ToolCallResult {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return ErrorResult(err)
	}
	return TextResult(string(b))
}

func ErrorResult(err error) *ToolCallResult {
	r := TextResult(err.Error())
	r.IsError = true
	return r
}
