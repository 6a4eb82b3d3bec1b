// Package pages builds the immutable set of known page names.
package pages

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrNoPagesDir is returned by Scan when the pages directory is missing. The
// returned catalog is still usable and holds the root pages.
var ErrNoPagesDir = errors.New("pages directory not found")

// Catalog is a read-only set of page names. Lookups are case-sensitive.
type Catalog struct {
	names map[string]struct{}
}

// New builds a catalog from explicit names. Empty names and names with a
// ".html" suffix are normalised.
func New(names ...string) *Catalog {
	c := &Catalog{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSuffix(strings.TrimSpace(n), ".html")
		if n == "" {
			continue
		}
		c.names[n] = struct{}{}
	}
	return c
}

// Scan lists the *.html files directly under dir and merges them with
// rootPages. Subdirectories are not descended into.
func Scan(dir string, rootPages []string) (*Catalog, error) {
	names := append([]string(nil), rootPages...)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(names...), fmt.Errorf("%w: %s", ErrNoPagesDir, dir)
		}
		return nil, fmt.Errorf("scan pages %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".html"))
	}
	return New(names...), nil
}

// Has reports whether name is a known page.
func (c *Catalog) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.names[name]
	return ok
}

// Len returns the number of known pages.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Names returns the page names in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
