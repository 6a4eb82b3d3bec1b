package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RobinCoderZhao/pdfsite/pkg/retry"
)

func TestWebhookNotifier_Send(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer purge" {
			t.Errorf("missing header, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer purge"}})
	msg := Message{Event: "publish", Title: "published", Paths: []string{"/de/merge-pdf.html"}}
	if err := n.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Event != "publish" || len(got.Paths) != 1 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Retry: retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}})
	if err := n.Send(context.Background(), Message{Event: "publish"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestWebhookNotifier_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(WebhookConfig{URL: srv.URL, Retry: retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}})
	if err := n.Send(context.Background(), Message{Event: "publish"}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single call, got %d", calls.Load())
	}
}

type failing struct{}

func (failing) Channel() Channel                       { return ChannelWebhook }
func (failing) Send(context.Context, Message) error { return context.DeadlineExceeded }

func TestDispatcher_SendAll(t *testing.T) {
	d := NewDispatcher(LogNotifier{}, failing{})
	if d.Len() != 2 {
		t.Fatalf("expected 2 notifiers, got %d", d.Len())
	}
	if err := d.SendAll(context.Background(), Message{Event: "publish"}); err == nil {
		t.Fatal("expected joined error from failing notifier")
	}
}
