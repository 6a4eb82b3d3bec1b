package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/pdfsite/internal/accesslog"
	"github.com/RobinCoderZhao/pdfsite/internal/localize"
	"github.com/RobinCoderZhao/pdfsite/internal/publish"
	"github.com/RobinCoderZhao/pdfsite/internal/server"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
	"github.com/RobinCoderZhao/pdfsite/pkg/notify"
	"github.com/RobinCoderZhao/pdfsite/pkg/retry"
	"github.com/RobinCoderZhao/pdfsite/pkg/storage"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List known page names",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			for _, name := range catalog.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func resolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Show the routing decision for request paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			res := server.NewResolver(cfg, catalog, i18n.NewMatcher(cfg.Languages))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tKIND\tLANGUAGE\tTARGET")
			for _, raw := range args {
				p, q, _ := strings.Cut(raw, "?")
				d := res.Resolve(p, q)
				target := d.Target
				if d.Location != "" {
					target = d.Location
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", raw, d.Kind, d.Language, target)
			}
			return w.Flush()
		},
	}
}

func localizeCmd(opts *rootOptions) *cobra.Command {
	var force, dryRun, showDiff bool

	cmd := &cobra.Command{
		Use:   "localize",
		Short: "Write per-language copies of compiled pages",
		Long:  "For every page in dist and every non-default language, writes <dist>/<lang>/<page>.html with links and <html lang> localized. Existing files are kept unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			report, err := localize.Run(localize.Options{
				DistDir:   cfg.DistDir,
				BasePath:  cfg.BaseURL,
				Languages: cfg.Languages,
				Default:   cfg.DefaultLanguage,
				Force:     force,
				DryRun:    dryRun,
			})
			if err != nil {
				return err
			}
			for _, c := range report.Overwritten {
				fmt.Printf("overwrite %s (%s)\n", c.Path, c.Diff.Summary())
				if showDiff {
					fmt.Print(c.Diff.Unified(c.Path))
				}
			}
			fmt.Printf("written: %d, kept: %d, unchanged: %d\n",
				len(report.Written), len(report.Skipped), len(report.Unchanged))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing localized files")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print line diffs of overwritten files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report without writing")
	return cmd
}

func publishCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	var concurrency int

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload dist to the configured bucket and fire the purge hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			pc := cfg.Publish

			var client publish.ObjectPutter
			if !dryRun {
				if pc.Bucket == "" {
					return publish.ErrNoBucket
				}
				c, err := publish.NewS3Client(pc)
				if err != nil {
					return err
				}
				client = c
			}

			policy := retry.DefaultPolicy()
			if pc.MaxRetries > 0 {
				policy.MaxAttempts = pc.MaxRetries
			}
			dispatcher := notify.NewDispatcher()
			if pc.PurgeHook != "" {
				dispatcher.Register(notify.NewWebhookNotifier(notify.WebhookConfig{URL: pc.PurgeHook, Retry: policy}))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := publish.NewPublisher(client, dispatcher).Run(ctx, publish.Options{
				DistDir:     cfg.DistDir,
				Bucket:      pc.Bucket,
				Prefix:      pc.Prefix,
				DryRun:      dryRun,
				Concurrency: concurrency,
				Retry:       policy,
			})
			if err != nil {
				return err
			}
			if dryRun {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tTYPE\tCACHE\tSIZE")
				for _, o := range res.Objects {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", o.Key, o.ContentType, o.CacheControl, o.Size)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			fmt.Printf("%d objects, %d bytes\n", len(res.Objects), res.Bytes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list keys without uploading")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "parallel uploads")
	return cmd
}

func statsCmd(opts *rootOptions) *cobra.Command {
	var days, limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show page and language hit counts from the access log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			db, err := storage.Open(storage.Config{DSN: cfg.Storage.DSN})
			if err != nil {
				return err
			}
			defer db.Close()
			store, err := accesslog.NewStore(ctx, db)
			if err != nil {
				return err
			}

			since := time.Now().AddDate(0, 0, -days)
			top, err := store.TopPages(ctx, since, limit)
			if err != nil {
				return err
			}
			langs, err := store.LanguageCounts(ctx, since)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(map[string]any{"since": since.UTC(), "top_pages": top, "languages": langs})
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tLANGUAGE\tHITS")
			for _, pc := range top {
				fmt.Fprintf(w, "%s\t%s\t%d\n", pc.Page, orNone(pc.Language), pc.Hits)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "LANGUAGE\tHITS")
			for _, lc := range langs {
				fmt.Fprintf(w, "%s\t%d\n", orNone(lc.Language), lc.Hits)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "look back this many days")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum page rows")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for admin.password_hash",
		Long:  "Hashes the password given as argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password on stdin")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := server.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func mcpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the routing diagnostics tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(server.Deps{Config: cfg, Pages: catalog, Version: version})
			return srv.MCP().RunStdio(ctx, os.Stdin, os.Stdout)
		},
	}
}
