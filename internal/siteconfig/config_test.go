package siteconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

func TestNormalizeBase(t *testing.T) {
	tests := map[string]string{
		"":      "/",
		"/":     "/",
		"pdf":   "/pdf/",
		"/pdf":  "/pdf/",
		"/pdf/": "/pdf/",
		" /a/b": "/a/b/",
	}
	for in, want := range tests {
		if got := NormalizeBase(in); got != want {
			t.Errorf("NormalizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "/" {
		t.Fatalf("expected base '/', got %q", cfg.BaseURL)
	}
	if cfg.Server.Mode != ModeDev {
		t.Fatalf("expected dev mode, got %q", cfg.Server.Mode)
	}
	if cfg.DefaultLanguage != i18n.LangEN {
		t.Fatalf("expected en default, got %q", cfg.DefaultLanguage)
	}
	if len(cfg.WASM.Modules) == 0 {
		t.Fatal("expected default wasm modules")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdfsite.yaml")
	content := `
base_url: pdf
languages: [en, de, fr]
server:
  mode: prod
wasm:
  remote: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WASM_REMOTE", "false")
	t.Setenv("SIMPLE_MODE", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "/pdf/" {
		t.Fatalf("expected normalised base, got %q", cfg.BaseURL)
	}
	if len(cfg.Languages) != 3 || cfg.Languages[2] != i18n.LangFR {
		t.Fatalf("unexpected languages %v", cfg.Languages)
	}
	if cfg.Server.Mode != ModeProd {
		t.Fatalf("expected prod mode, got %q", cfg.Server.Mode)
	}
	if cfg.WASM.Remote {
		t.Fatal("expected WASM_REMOTE env to win")
	}
	if !cfg.SimpleMode {
		t.Fatal("expected SIMPLE_MODE env to be applied")
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteConfig)
		want   error
	}{
		{"empty languages", func(c *SiteConfig) { c.Languages = nil }, ErrInvalidLanguage},
		{"duplicate language", func(c *SiteConfig) { c.Languages = []i18n.Language{"en", "en"} }, ErrInvalidLanguage},
		{"slash in language", func(c *SiteConfig) { c.Languages = []i18n.Language{"en", "de/x"} }, ErrInvalidLanguage},
		{"default not listed", func(c *SiteConfig) { c.DefaultLanguage = "fr"; c.Languages = []i18n.Language{"en"} }, ErrInvalidLanguage},
		{"bad mode", func(c *SiteConfig) { c.Server.Mode = "staging" }, ErrInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Normalize(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
