package differ

import (
	"strings"
	"testing"
)

func TestLines_Unchanged(t *testing.T) {
	r := Lines("<p>a</p>\n<p>b</p>", "<p>a</p>\n<p>b</p>")
	if r.Changed {
		t.Fatal("expected no changes")
	}
	if r.Summary() != "unchanged" || r.Unified("x.html") != "" {
		t.Fatalf("unexpected output for unchanged result: %q %q", r.Summary(), r.Unified("x.html"))
	}
}

func TestLines_Changed(t *testing.T) {
	old := "<html lang=\"en\">\n<a href=\"/merge-pdf\">\n\n<p>same</p>"
	new := "<html lang=\"de\">\n<a href=\"/de/merge-pdf\">\n<p>same</p>\n<p>extra</p>"
	r := Lines(old, new)

	if !r.Changed {
		t.Fatal("expected changes")
	}
	if r.Stats.Additions != 3 || r.Stats.Deletions != 2 {
		t.Fatalf("unexpected stats %+v", r.Stats)
	}
	if r.Summary() != "+3 -2 lines" {
		t.Fatalf("unexpected summary %q", r.Summary())
	}
	u := r.Unified("de/merge-pdf.html")
	if !strings.HasPrefix(u, "--- a/de/merge-pdf.html\n+++ b/de/merge-pdf.html\n") {
		t.Fatalf("unexpected header: %s", u)
	}
	if !strings.Contains(u, "+<p>extra</p>\n") || !strings.Contains(u, "-<html lang=\"en\">\n") {
		t.Fatalf("missing diff lines: %s", u)
	}
}

func TestLines_BlankLinesIgnored(t *testing.T) {
	r := Lines("a", "a\n\n   ")
	if !r.Changed || r.Stats.Additions != 0 {
		t.Fatalf("blank lines must not count as additions: %+v", r)
	}
}
