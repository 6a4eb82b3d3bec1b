package mcpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Handler returns an http.Handler serving the MCP endpoint. Requests other
// than initialize must carry a valid Mcp-Session-Id header. Authentication is
// left to the surrounding router.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, &JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &RPCError{Code: codeParseError, Message: "Parse error"},
		})
		return
	}

	if req.Method != "initialize" {
		sessionID := r.Header.Get("Mcp-Session-Id")
		if sessionID == "" || !s.CheckSession(sessionID) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
	}

	resp := s.HandleRequest(r.Context(), &req)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if result, ok := resp.Result.(*InitializeResult); ok && result.SessionID != "" {
		w.Header().Set("Mcp-Session-Id", result.SessionID)
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		writeSSE(w, resp)
		return
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, resp *JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeSSE(w http.ResponseWriter, resp *JSONRPCResponse) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, resp)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	b, _ := json.Marshal(resp)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", b)
	flusher.Flush()
}
