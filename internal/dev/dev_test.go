package dev

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWatcher_Scan(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "merge-pdf.html")
	if err := os.WriteFile(page, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(WatcherConfig{Paths: []string{dir}})
	if changes := w.Scan(); len(changes) != 0 {
		t.Fatalf("first scan must only record timestamps, got %v", changes)
	}

	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(page, later, later); err != nil {
		t.Fatal(err)
	}
	css := filepath.Join(dir, "style.css")
	if err := os.WriteFile(css, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "node_modules", "x.js"), []byte("c"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := w.Scan()
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %v", changes)
	}
	byPath := map[string]Change{}
	for _, c := range changes {
		byPath[c.Path] = c
	}
	if c := byPath[page]; c.Type != ChangePage || c.New {
		t.Fatalf("unexpected page change %+v", c)
	}
	if c := byPath[css]; c.Type != ChangeCSS || !c.New {
		t.Fatalf("unexpected css change %+v", c)
	}

	if changes := w.Scan(); len(changes) != 0 {
		t.Fatalf("expected no changes on rescan, got %v", changes)
	}
}

func TestInjectClient(t *testing.T) {
	out := InjectClient("<html><body><p>x</p></BODY></html>", "/pdf/")
	if !strings.Contains(out, "/pdf/_site/reload") {
		t.Fatalf("expected reload endpoint in script: %s", out)
	}
	if !strings.HasSuffix(out, "</script></BODY></html>") {
		t.Fatalf("expected script before body end: %s", out)
	}

	out = InjectClient("<p>fragment</p>", "")
	if !strings.HasPrefix(out, "<p>fragment</p><script>") {
		t.Fatalf("expected script appended: %s", out)
	}
}

func TestReloadServer_Broadcast(t *testing.T) {
	rs := NewReloadServer()
	srv := httptest.NewServer(rs)
	defer srv.Close()
	defer rs.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for rs.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if rs.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", rs.ClientCount())
	}

	rs.HandleChanges([]Change{{Path: "a.css", Type: ChangeCSS}})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MessageCSS || msg.File != "a.css" {
		t.Fatalf("unexpected message %+v", msg)
	}

	rs.HandleChanges([]Change{{Path: "a.css", Type: ChangeCSS}, {Path: "x.html", Type: ChangePage}})
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MessageReload {
		t.Fatalf("expected full reload, got %+v", msg)
	}
}
