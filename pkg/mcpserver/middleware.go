package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// LoggingMiddleware logs each request with its duration at Debug, and
// JSON-RPC errors and failed tool calls at Warn.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
			start := time.Now()
			resp := next(ctx, req)

			attrs := []any{"method", req.Method, "id", req.ID, "duration", time.Since(start)}
			if req.Method == "tools/call" {
				attrs = append(attrs, "tool", toolName(req.Params))
			}
			switch {
			case resp == nil:
				logger.Debug("mcp notification", attrs...)
			case resp.Error != nil:
				logger.Warn("mcp error", append(attrs, "code", resp.Error.Code, "message", resp.Error.Message)...)
			case isToolError(resp):
				logger.Warn("mcp tool failed", attrs...)
			default:
				logger.Debug("mcp request", attrs...)
			}
			return resp
		}
	}
}

// RecoveryMiddleware turns a panicking handler into a JSON-RPC internal error.
func RecoveryMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *JSONRPCRequest) (resp *JSONRPCResponse) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("mcp handler panic", "method", req.Method, "panic", r)
					resp = &JSONRPCResponse{
						JSONRPC: "2.0",
						ID:      req.ID,
						Error:   &RPCError{Code: codeInternalError, Message: "Internal error"},
					}
				}
			}()
			return next(ctx, req)
		}
	}
}

func toolName(params json.RawMessage) string {
	var p struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(params, &p)
	return p.Name
}

func isToolError(resp *JSONRPCResponse) bool {
	r, ok := resp.Result.(*ToolCallResult)
	return ok && r.IsError
}
