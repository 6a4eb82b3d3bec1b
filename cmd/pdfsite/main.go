// pdfsite serves and publishes the multi-language PDF tools site.
//
// Usage:
//
//	pdfsite serve            # dev server with live reload, or prod preview
//	pdfsite localize         # write <dist>/<lang>/<page>.html copies
//	pdfsite publish          # upload dist to S3 and purge the CDN
//	pdfsite resolve /de/x    # show how a path is routed
//	pdfsite doctor           # check config, output and WASM CDNs
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
)

var version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
	mode       string
	base       string
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "pdfsite",
		Short:         "Language-aware server and publisher for the PDF tools site",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(opts.logLevel, cmd.Name() == "serve")
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", siteconfig.DefaultPath, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "override server.mode (dev or prod)")
	rootCmd.PersistentFlags().StringVar(&opts.base, "base", "", "override base_url")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(pagesCmd(opts))
	rootCmd.AddCommand(resolveCmd(opts))
	rootCmd.AddCommand(localizeCmd(opts))
	rootCmd.AddCommand(publishCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(mcpCmd(opts))
	rootCmd.AddCommand(doctorCmd(opts))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pdfsite %s\n", version)
		},
	}
}

// setupLogger installs the default logger: JSON for the server, text for
// one-shot commands. Both write to stderr so stdout stays machine readable.
func setupLogger(level string, jsonFormat bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, hopts)
	if jsonFormat {
		h = slog.NewJSONHandler(os.Stderr, hopts)
	}
	slog.SetDefault(slog.New(h))
}

// loadConfig reads the config file and applies command-line overrides.
func (o *rootOptions) loadConfig() (siteconfig.SiteConfig, error) {
	cfg, err := siteconfig.Load(o.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if o.mode == "" && o.base == "" {
		return cfg, nil
	}
	if o.mode != "" {
		cfg.Server.Mode = siteconfig.Mode(o.mode)
	}
	if o.base != "" {
		cfg.BaseURL = o.base
	}
	if err := cfg.Normalize(); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadCatalog scans the page sources. A production deployment may ship
// without sources, in which case the compiled output is scanned instead.
func loadCatalog(cfg siteconfig.SiteConfig) (*pages.Catalog, error) {
	dir := filepath.Join(cfg.SourceRoot, filepath.FromSlash(cfg.PagesDir))
	catalog, err := pages.Scan(dir, cfg.RootPages)
	if err == nil {
		return catalog, nil
	}
	if !errors.Is(err, pages.ErrNoPagesDir) {
		return nil, err
	}
	if cfg.Server.Mode == siteconfig.ModeProd {
		if distCatalog, distErr := pages.Scan(cfg.DistDir, cfg.RootPages); distErr == nil {
			return distCatalog, nil
		}
	}
	slog.Warn("page sources not found, only root pages are known", "dir", dir)
	return catalog, nil
}
