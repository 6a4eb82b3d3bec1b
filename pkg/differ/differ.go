// Package differ compares two versions of a text document line by line.
package differ

import (
	"fmt"
	"strings"
)

// Result holds the outcome of comparing two texts.
type Result struct {
	Changed bool     `json:"changed"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Stats   Stats    `json:"stats"`
}

// Stats holds counts of changed lines.
type Stats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Lines reports which non-blank lines appear only in oldText (removed) or
// only in newText (added). Line order and duplicates are ignored.
func Lines(oldText, newText string) Result {
	if oldText == newText {
		return Result{}
	}

	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")
	oldSet := make(map[string]struct{}, len(oldLines))
	newSet := make(map[string]struct{}, len(newLines))
	for _, line := range oldLines {
		oldSet[line] = struct{}{}
	}
	for _, line := range newLines {
		newSet[line] = struct{}{}
	}

	r := Result{Changed: true}
	for _, line := range oldLines {
		if _, ok := newSet[line]; !ok && strings.TrimSpace(line) != "" {
			r.Removed = append(r.Removed, line)
		}
	}
	for _, line := range newLines {
		if _, ok := oldSet[line]; !ok && strings.TrimSpace(line) != "" {
			r.Added = append(r.Added, line)
		}
	}
	r.Stats = Stats{Additions: len(r.Added), Deletions: len(r.Removed)}
	return r
}

// Unified renders the result as a minimal unified-style diff.
func (r Result) Unified(name string) string {
	if !r.Changed {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", name, name)
	for _, line := range r.Removed {
		sb.WriteString("-" + line + "\n")
	}
	for _, line := range r.Added {
		sb.WriteString("+" + line + "\n")
	}
	return sb.String()
}

// Summary returns a short human-readable description.
func (r Result) Summary() string {
	if !r.Changed {
		return "unchanged"
	}
	return fmt.Sprintf("+%d -%d lines", r.Stats.Additions, r.Stats.Deletions)
}
