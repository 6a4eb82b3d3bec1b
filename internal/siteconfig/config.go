// Package siteconfig provides pdfsite configuration management.
package siteconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RobinCoderZhao/pdfsite/pkg/config"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// DefaultPath is the project-level config file.
const DefaultPath = "pdfsite.yaml"

// Mode selects the serving strategy.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

var (
	ErrInvalidLanguage = errors.New("invalid language")
	ErrInvalidMode     = errors.New("invalid server mode")
)

// SiteConfig is the main configuration for pdfsite. It is loaded once at
// startup and treated as read-only afterwards.
type SiteConfig struct {
	SiteName             string          `yaml:"site_name"`
	BaseURL              string          `yaml:"base_url" env:"BASE_URL"`
	// SimpleMode serves simple-index.html as the landing page when present.
	SimpleMode           bool            `yaml:"simple_mode" env:"SIMPLE_MODE"`
	Languages            []i18n.Language `yaml:"languages" env:"LANGUAGES"`
	DefaultLanguage      i18n.Language   `yaml:"default_language" env:"DEFAULT_LANGUAGE"`
	DetectAcceptLanguage bool            `yaml:"detect_accept_language" env:"DETECT_ACCEPT_LANGUAGE"`

	SourceRoot string   `yaml:"source_root" env:"PDFSITE_SOURCE_ROOT"`
	PagesDir   string   `yaml:"pages_dir"`  // relative to SourceRoot
	RootPages  []string `yaml:"root_pages"` // pages living at the site root
	DistDir    string   `yaml:"dist_dir" env:"PDFSITE_DIST_DIR"`
	// OGFont is a TrueType font for social preview cards.
	OGFont string `yaml:"og_font"`

	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	AccessLog AccessLogConfig `yaml:"access_log"`
	Admin     AdminConfig     `yaml:"admin"`
	Publish   PublishConfig   `yaml:"publish"`
	WASM      WASMConfig      `yaml:"wasm"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"PDFSITE_ADDR"`
	Mode         Mode          `yaml:"mode" env:"PDFSITE_MODE"`
	CacheProbes  bool          `yaml:"cache_probes"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StorageConfig points at the sqlite database used for access statistics.
type StorageConfig struct {
	DSN string `yaml:"dsn" env:"PDFSITE_DB"`
}

// AccessLogConfig controls request recording.
type AccessLogConfig struct {
	Enabled   bool          `yaml:"enabled" env:"PDFSITE_ACCESS_LOG"`
	Retention time.Duration `yaml:"retention"`
	Buffer    int           `yaml:"buffer"`
}

// AdminConfig protects the /_site/api endpoints.
type AdminConfig struct {
	PasswordHash string        `yaml:"password_hash" env:"PDFSITE_ADMIN_HASH"`
	JWTSecret    string        `yaml:"jwt_secret" env:"PDFSITE_JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// PublishConfig targets an S3-compatible bucket.
type PublishConfig struct {
	Bucket     string `yaml:"bucket" env:"PDFSITE_BUCKET"`
	Prefix     string `yaml:"prefix"`
	Region     string `yaml:"region" env:"AWS_REGION"`
	Endpoint   string `yaml:"endpoint" env:"PDFSITE_S3_ENDPOINT"`
	AccessKey  string `yaml:"access_key" env:"AWS_ACCESS_KEY_ID"`
	SecretKey  string `yaml:"secret_key" env:"AWS_SECRET_ACCESS_KEY"`
	PurgeHook  string `yaml:"purge_webhook" env:"PDFSITE_PURGE_WEBHOOK"`
	MaxRetries int    `yaml:"max_retries"`
}

// WASMConfig selects where the PDF engines are loaded from.
type WASMConfig struct {
	Remote  bool         `yaml:"remote" env:"WASM_REMOTE"`
	Modules []WASMModule `yaml:"modules"`
}

// WASMModule is one WebAssembly engine with a CDN and a bundled copy.
type WASMModule struct {
	Name      string `yaml:"name" json:"name"`
	RemoteURL string `yaml:"remote_url" json:"remote_url"`
	LocalPath string `yaml:"local_path" json:"local_path"`
}

// DefaultConfig returns a SiteConfig with sensible defaults.
func DefaultConfig() SiteConfig {
	return SiteConfig{
		SiteName:        "PDF Tools",
		BaseURL:         "/",
		Languages:       append([]i18n.Language(nil), i18n.AllLanguages...),
		DefaultLanguage: i18n.DefaultLanguage,
		SourceRoot:      ".",
		PagesDir:        "src/pages",
		RootPages: []string{
			"index", "about", "contact", "faq", "privacy", "terms",
			"licensing", "tools", "404",
		},
		DistDir: "dist",
		Server: ServerConfig{
			Addr:         ":5173",
			Mode:         ModeDev,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{DSN: "data/pdfsite.db"},
		AccessLog: AccessLogConfig{
			Retention: 30 * 24 * time.Hour,
			Buffer:    1024,
		},
		Admin: AdminConfig{TokenTTL: 12 * time.Hour},
		Publish: PublishConfig{
			Region:     "us-east-1",
			MaxRetries: 3,
		},
		WASM: WASMConfig{
			Remote: true,
			Modules: []WASMModule{
				{Name: "pymupdf", RemoteURL: "https://cdn.jsdelivr.net/npm/@bentopdf/pymupdf-wasm@0.1.9/", LocalPath: "/wasm/pymupdf/"},
				{Name: "ghostscript", RemoteURL: "https://cdn.jsdelivr.net/npm/@bentopdf/gs-wasm/assets/", LocalPath: "/wasm/gs/"},
				{Name: "cpdf", RemoteURL: "https://cdn.jsdelivr.net/npm/coherentpdf/dist/", LocalPath: "/wasm/cpdf/"},
			},
		},
	}
}

// Load loads configuration from path (missing file means defaults) and
// applies environment overrides, then validates and normalises the result.
func Load(path string) (SiteConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Normalize(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Normalize validates languages and mode and canonicalises the base path.
func (c *SiteConfig) Normalize() error {
	c.BaseURL = NormalizeBase(c.BaseURL)

	if len(c.Languages) == 0 {
		return fmt.Errorf("%w: empty language list", ErrInvalidLanguage)
	}
	seen := make(map[i18n.Language]bool, len(c.Languages))
	for _, l := range c.Languages {
		if strings.TrimSpace(string(l)) == "" || strings.ContainsAny(string(l), "/?#") {
			return fmt.Errorf("%w: %q", ErrInvalidLanguage, l)
		}
		if seen[l] {
			return fmt.Errorf("%w: duplicate %q", ErrInvalidLanguage, l)
		}
		seen[l] = true
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = c.Languages[0]
	}
	if !seen[c.DefaultLanguage] {
		return fmt.Errorf("%w: default %q is not in the language list", ErrInvalidLanguage, c.DefaultLanguage)
	}

	switch c.Server.Mode {
	case ModeDev, ModeProd:
	case "":
		c.Server.Mode = ModeDev
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Server.Mode)
	}

	c.PagesDir = strings.Trim(c.PagesDir, "/")
	if c.AccessLog.Buffer <= 0 {
		c.AccessLog.Buffer = 1024
	}
	return nil
}

// NormalizeBase makes base start and end with "/". Empty means "/".
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

