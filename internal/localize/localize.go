// Package localize generates per-language copies of compiled pages so the
// production locator can find <lang>/<page>.html.
package localize

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/RobinCoderZhao/pdfsite/internal/linkrewrite"
	"github.com/RobinCoderZhao/pdfsite/internal/pages"
	"github.com/RobinCoderZhao/pdfsite/pkg/differ"
	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// Options configures a localize run.
type Options struct {
	DistDir   string
	BasePath  string
	Languages []i18n.Language
	Default   i18n.Language
	// Force overwrites existing localized files. Without it translated
	// output placed by hand is never touched.
	Force  bool
	DryRun bool
}

// Report lists what a run did, as paths relative to DistDir.
type Report struct {
	Written   []string `json:"written"`
	Skipped   []string `json:"skipped"`
	Unchanged []string `json:"unchanged,omitempty"`
	// Overwritten describes existing files replaced under Force.
	Overwritten []Change `json:"overwritten,omitempty"`
}

// Change is an existing localized file that a forced run replaced.
type Change struct {
	Path string        `json:"path"`
	Diff differ.Result `json:"diff"`
}

// Run writes <dist>/<lang>/<page>.html for every top-level page in dist and
// every non-default language.
func Run(opts Options) (*Report, error) {
	catalog, err := pages.Scan(opts.DistDir, nil)
	if err != nil {
		if errors.Is(err, pages.ErrNoPagesDir) {
			return nil, fmt.Errorf("localize: dist directory %s not found, build the site first", opts.DistDir)
		}
		return nil, fmt.Errorf("localize: %w", err)
	}

	matcher := i18n.NewMatcher(opts.Languages)
	report := &Report{}
	for _, name := range catalog.Names() {
		src, err := os.ReadFile(filepath.Join(opts.DistDir, name+".html"))
		if err != nil {
			return report, fmt.Errorf("read page %s: %w", name, err)
		}

		for _, lang := range opts.Languages {
			if lang == opts.Default {
				continue
			}
			rel := filepath.Join(string(lang), name+".html")
			if err := localizePage(opts, matcher, lang, string(src), rel, report); err != nil {
				return report, err
			}
		}
	}

	slog.Info("localize finished", "written", len(report.Written), "skipped", len(report.Skipped),
		"overwritten", len(report.Overwritten), "dry_run", opts.DryRun)
	return report, nil
}

func localizePage(opts Options, m *i18n.Matcher, lang i18n.Language, src, rel string, report *Report) error {
	dst := filepath.Join(opts.DistDir, rel)
	existing, err := os.ReadFile(dst)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", rel, err)
	}
	if exists && !opts.Force {
		report.Skipped = append(report.Skipped, rel)
		return nil
	}

	out, err := linkrewrite.RewriteHTML(src, linkrewrite.Options{
		Language:    lang,
		Default:     opts.Default,
		BasePath:    opts.BasePath,
		Matcher:     m,
		SetHTMLLang: true,
	})
	if err != nil {
		return fmt.Errorf("rewrite %s: %w", rel, err)
	}

	if exists {
		diff := differ.Lines(string(existing), out)
		if !diff.Changed {
			report.Unchanged = append(report.Unchanged, rel)
			return nil
		}
		report.Overwritten = append(report.Overwritten, Change{Path: rel, Diff: diff})
	}

	report.Written = append(report.Written, rel)
	if opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, []byte(out), 0644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
