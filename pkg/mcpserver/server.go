// Package mcpserver exposes site diagnostics as MCP (Model Context Protocol)
// tools over JSON-RPC 2.0, either on stdio or mounted as an http.Handler.
package mcpserver

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const (
	protocolVersion = "2024-11-05"
	sessionTTL      = 24 * time.Hour
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// Server manages tools and handles JSON-RPC requests.
type Server struct {
	name       string
	version    string
	tools      map[string]ToolHandler
	sessions   map[string]time.Time
	sessionMu  sync.RWMutex
	middleware []Middleware
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a new MCP server with the given name and version.
func New(name, version string) *Server {
	return &Server{
		name:     name,
		version:  version,
		tools:    make(map[string]ToolHandler),
		sessions: make(map[string]time.Time),
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// RegisterTools adds tools to the server.
func (s *Server) RegisterTools(tools ...ToolHandler) {
	for _, tool := range tools {
		s.tools[tool.Name()] = tool
		s.logger.Debug("registered tool", "name", tool.Name())
	}
}

// Use adds middleware to the server's processing chain.
func (s *Server) Use(mw Middleware) {
	s.middleware = append(s.middleware, mw)
}

// RunStdio serves newline-delimited JSON-RPC requests from r and writes the
// responses to w until r is exhausted or ctx is cancelled.
func (s *Server) RunStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.Info("starting MCP server (stdio)", "name", s.name, "version", s.version, "tools", len(s.tools))

	decoder := json.NewDecoder(bufio.NewReader(r))
	encoder := json.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req JSONRPCRequest
		if err := decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode request: %w", err)
		}

		resp := s.HandleRequest(ctx, &req)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}
}

// HandleRequest processes a single JSON-RPC request. Notifications return nil.
func (s *Server) HandleRequest(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	handler := s.coreHandler
	for i := len(s.middleware) - 1; i >= 0; i-- {
		handler = s.middleware[i](handler)
	}
	return handler(ctx, req)
}

func (s *Server) coreHandler(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	resp := &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = s.handleInitialize()
	case "notifications/initialized":
		return nil
	case "ping":
		resp.Result = struct{}{}
	case "tools/list":
		resp.Result = s.handleToolsList()
	case "tools/call":
		resp.Result = s.handleToolCall(ctx, req.Params)
	default:
		resp.Error = &RPCError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}
	return resp
}

func (s *Server) handleInitialize() *InitializeResult {
	result := &InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    map[string]any{"tools": map[string]bool{"listChanged": false}},
		SessionID:       s.createSession(),
	}
	result.ServerInfo.Name = s.name
	result.ServerInfo.Version = s.version
	return result
}

func (s *Server) handleToolsList() *ToolsListResult {
	tools := make([]ToolDef, 0, len(s.tools))
	for _, h := range s.tools {
		tools = append(tools, ToolDef{
			Name:        h.Name(),
			Description: h.Description(),
			InputSchema: h.InputSchema(),
		})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return &ToolsListResult{Tools: tools}
}

func (s *Server) handleToolCall(ctx context.Context, params json.RawMessage) *ToolCallResult {
	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return ErrorResult(fmt.Errorf("unmarshal params: %w", err))
	}

	tool, ok := s.tools[call.Name]
	if !ok {
		return ErrorResult(fmt.Errorf("tool not found: %s", call.Name))
	}
	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return ErrorResult(err)
	}
	return result
}

func (s *Server) createSession() string {
	id := generateSessionID()
	now := s.now()

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	for sid, created := range s.sessions {
		if now.Sub(created) > sessionTTL {
			delete(s.sessions, sid)
		}
	}
	s.sessions[id] = now
	return id
}

// CheckSession reports whether id names a live session.
func (s *Server) CheckSession(id string) bool {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	created, ok := s.sessions[id]
	return ok && s.now().Sub(created) <= sessionTTL
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
