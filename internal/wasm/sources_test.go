package wasm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
)

func TestSources(t *testing.T) {
	mods := []siteconfig.WASMModule{
		{Name: "cpdf", RemoteURL: "https://cdn.example/cpdf/", LocalPath: "/wasm/cpdf/"},
		{Name: "local-only", LocalPath: "wasm/x/"},
	}

	remote := Sources(siteconfig.WASMConfig{Remote: true, Modules: mods}, "/pdf/")
	want := []Source{
		{Name: "cpdf", Candidates: []string{"https://cdn.example/cpdf/", "/pdf/wasm/cpdf/"}},
		{Name: "local-only", Candidates: []string{"/pdf/wasm/x/"}},
	}
	if !reflect.DeepEqual(remote, want) {
		t.Fatalf("remote sources = %+v, want %+v", remote, want)
	}

	local := Sources(siteconfig.WASMConfig{Remote: false, Modules: mods}, "/")
	if got := local[0].Candidates; !reflect.DeepEqual(got, []string{"/wasm/cpdf/"}) {
		t.Fatalf("local candidates = %v", got)
	}
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		if r.URL.Path == "/missing/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	results := Probe(context.Background(), srv.Client(), []siteconfig.WASMModule{
		{Name: "ok", RemoteURL: srv.URL + "/ok/"},
		{Name: "missing", RemoteURL: srv.URL + "/missing/"},
		{Name: "none"},
	})
	if !results[0].OK() {
		t.Fatalf("expected ok result, got %+v", results[0])
	}
	if results[1].OK() || results[1].Status != http.StatusNotFound {
		t.Fatalf("expected 404 result, got %+v", results[1])
	}
	if results[2].OK() || results[2].Err == "" {
		t.Fatalf("expected error for module without url, got %+v", results[2])
	}
}
