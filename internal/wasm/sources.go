// Package wasm resolves where the browser loads the PDF engines from and
// checks that those locations are reachable.
package wasm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
)

// Source lists the candidate URLs for one module, in the order the client
// should try them.
type Source struct {
	Name       string   `json:"name"`
	Candidates []string `json:"candidates"`
}

// Sources returns the ordered candidates per module. With remote enabled the
// CDN comes first and the bundled copy is the fallback; otherwise only the
// bundled copy is offered. Local paths are resolved against base.
func Sources(cfg siteconfig.WASMConfig, base string) []Source {
	out := make([]Source, 0, len(cfg.Modules))
	for _, m := range cfg.Modules {
		var c []string
		if cfg.Remote && m.RemoteURL != "" {
			c = append(c, m.RemoteURL)
		}
		if m.LocalPath != "" {
			c = append(c, localURL(base, m.LocalPath))
		}
		out = append(out, Source{Name: m.Name, Candidates: c})
	}
	return out
}

func localURL(base, p string) string {
	if base == "" {
		base = "/"
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

// Result is the outcome of probing one remote URL.
type Result struct {
	Module string        `json:"module"`
	URL    string        `json:"url"`
	Status int           `json:"status"`
	Took   time.Duration `json:"took"`
	Err    string        `json:"error,omitempty"`
}

// OK reports whether the URL answered with a success status.
func (r Result) OK() bool { return r.Err == "" && r.Status >= 200 && r.Status < 400 }

// Probe sends a HEAD request to every remote module URL concurrently.
func Probe(ctx context.Context, client *http.Client, modules []siteconfig.WASMModule) []Result {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	results := make([]Result, len(modules))
	var wg sync.WaitGroup
	for i, m := range modules {
		results[i] = Result{Module: m.Name, URL: m.RemoteURL}
		if m.RemoteURL == "" {
			results[i].Err = "no remote url"
			continue
		}
		wg.Add(1)
		go func(res *Result) {
			defer wg.Done()
			start := time.Now()
			status, err := head(ctx, client, res.URL)
			res.Took = time.Since(start)
			res.Status = status
			if err != nil {
				res.Err = err.Error()
			}
		}(&results[i])
	}
	wg.Wait()
	return results
}

func head(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
