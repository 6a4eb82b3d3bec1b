package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is where the reload WebSocket is mounted, relative to the base.
const ReloadPath = "_site/reload"

// MessageType represents the type of reload message.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageCSS    MessageType = "css"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type MessageType `json:"type"`
	File string      `json:"file,omitempty"`
}

// ReloadServer manages WebSocket connections for live reload.
type ReloadServer struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewReloadServer creates a new reload server.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev only
			},
		},
		logger: slog.Default(),
	}
}

// ServeHTTP upgrades the connection and holds it until the client leaves.
func (s *ReloadServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		s.logger.Debug("reload upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// HandleChanges maps a batch of file changes to one browser message.
func (s *ReloadServer) HandleChanges(changes []Change) {
	cssOnly := true
	for _, c := range changes {
		if c.Type != ChangeCSS {
			cssOnly = false
		}
		if c.New && c.Type == ChangePage && strings.HasSuffix(c.Path, ".html") {
			s.logger.Warn("new page detected; restart the server to route it", "path", c.Path)
		}
	}
	if cssOnly && len(changes) > 0 {
		s.broadcast(Message{Type: MessageCSS, File: changes[0].Path})
		return
	}
	s.broadcast(Message{Type: MessageReload})
}

func (s *ReloadServer) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, c)
			s.mu.Unlock()
			c.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *ReloadServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *ReloadServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
}

const clientScript = `<script>
(function() {
    var delay = 1000;
    function connect() {
        var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(proto + '//' + location.host + '%s');
        ws.onopen = function() { delay = 1000; };
        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type === 'css') {
                document.querySelectorAll('link[rel="stylesheet"]').forEach(function(link) {
                    var url = new URL(link.href);
                    url.searchParams.set('_reload', Date.now());
                    link.href = url.toString();
                });
                return;
            }
            location.reload();
        };
        ws.onclose = function() {
            setTimeout(function() { delay = Math.min(delay * 2, 30000); connect(); }, delay);
        };
    }
    connect();
})();
</script>`

// InjectClient inserts the reload client before </body>, or appends it when
// the document has no body end tag.
func InjectClient(doc, basePath string) string {
	if basePath == "" {
		basePath = "/"
	}
	script := strings.Replace(clientScript, "%s", basePath+ReloadPath, 1)
	lower := strings.ToLower(doc)
	if i := strings.LastIndex(lower, "</body>"); i >= 0 {
		return doc[:i] + script + doc[i:]
	}
	return doc + script
}
