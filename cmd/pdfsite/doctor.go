package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/internal/siteconfig"
	"github.com/RobinCoderZhao/pdfsite/internal/wasm"
)

type check struct {
	name string
	ok   bool
	info string
}

func doctorCmd(opts *rootOptions) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, compiled output and WASM sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			checks := []check{
				{name: "config", ok: true, info: fmt.Sprintf("mode=%s base=%s languages=%d", cfg.Server.Mode, cfg.BaseURL, len(cfg.Languages))},
				checkPages(cfg),
				checkDist(cfg),
				checkAdmin(cfg),
			}
			if !offline && cfg.WASM.Remote {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				for _, r := range wasm.Probe(ctx, nil, cfg.WASM.Modules) {
					info := fmt.Sprintf("%s status=%d took=%s", r.URL, r.Status, r.Took.Round(time.Millisecond))
					if r.Err != "" {
						info = r.URL + " " + r.Err
					}
					checks = append(checks, check{name: "wasm " + r.Module, ok: r.OK(), info: info})
				}
			}

			failed := 0
			for _, c := range checks {
				status := "ok"
				if !c.ok {
					status = "FAIL"
					failed++
				}
				fmt.Printf("%-4s  %-18s %s\n", status, c.name, c.info)
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip remote WASM checks")
	return cmd
}

func checkPages(cfg siteconfig.SiteConfig) check {
	dir := filepath.Join(cfg.SourceRoot, filepath.FromSlash(cfg.PagesDir))
	catalog, err := pages.Scan(dir, cfg.RootPages)
	switch {
	case errors.Is(err, pages.ErrNoPagesDir):
		// Production hosts usually ship without sources.
		return check{name: "pages", ok: cfg.Server.Mode == siteconfig.ModeProd, info: dir + " not found"}
	case err != nil:
		return check{name: "pages", info: err.Error()}
	}
	return check{name: "pages", ok: true, info: fmt.Sprintf("%d pages in %s", catalog.Len(), dir)}
}

func checkDist(cfg siteconfig.SiteConfig) check {
	info, err := os.Stat(filepath.Join(cfg.DistDir, "index.html"))
	if err != nil || !info.Mode().IsRegular() {
		return check{name: "dist", ok: cfg.Server.Mode == siteconfig.ModeDev, info: cfg.DistDir + " has no index.html"}
	}
	var localized []string
	for _, l := range cfg.Languages {
		if l == cfg.DefaultLanguage {
			continue
		}
		if st, err := os.Stat(filepath.Join(cfg.DistDir, string(l))); err == nil && st.IsDir() {
			localized = append(localized, string(l))
		}
	}
	return check{name: "dist", ok: true, info: fmt.Sprintf("%d of %d languages localized %v", len(localized), len(cfg.Languages)-1, localized)}
}

func checkAdmin(cfg siteconfig.SiteConfig) check {
	switch {
	case cfg.Admin.PasswordHash == "" && cfg.Admin.JWTSecret == "":
		return check{name: "admin api", ok: true, info: "disabled"}
	case cfg.Admin.PasswordHash == "" || cfg.Admin.JWTSecret == "":
		return check{name: "admin api", info: "needs both admin.password_hash and admin.jwt_secret"}
	case len(cfg.Admin.JWTSecret) < 32:
		return check{name: "admin api", info: "admin.jwt_secret should be at least 32 bytes"}
	}
	return check{name: "admin api", ok: true, info: "enabled"}
}
