package pages

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"merge-pdf.html", "split-pdf.html", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("<html></html>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.html"), 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := Scan(dir, []string{"index", "about"})
	if err != nil {
		t.Fatal(err)
	}

	want := "about,index,merge-pdf,split-pdf"
	if got := strings.Join(c.Names(), ","); got != want {
		t.Fatalf("Names() = %q, want %q", got, want)
	}
	if !c.Has("merge-pdf") {
		t.Fatal("expected merge-pdf to be known")
	}
	if c.Has("Merge-PDF") {
		t.Fatal("lookups must be case-sensitive")
	}
	if c.Has("notes") || c.Has("nested") {
		t.Fatal("non-html files and directories must be ignored")
	}
}

func TestScan_MissingDir(t *testing.T) {
	c, err := Scan(filepath.Join(t.TempDir(), "nope"), []string{"index"})
	if !errors.Is(err, ErrNoPagesDir) {
		t.Fatalf("expected ErrNoPagesDir, got %v", err)
	}
	if c == nil || !c.Has("index") || c.Len() != 1 {
		t.Fatal("expected root pages to survive a missing directory")
	}
}

func TestNew_Normalises(t *testing.T) {
	c := New("merge-pdf.html", " ", "", "about")
	if c.Len() != 2 || !c.Has("merge-pdf") {
		t.Fatalf("unexpected catalog: %v", c.Names())
	}
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	if c.Has("x") || c.Len() != 0 || c.Names() != nil {
		t.Fatal("nil catalog must behave as empty")
	}
}
