// Package ogcard renders social preview images for site pages.
package ogcard

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/fogleman/gg"

	"github.com/RobinCoderZhao/pdfsite/pkg/i18n"
)

// Card is the content of one preview image.
type Card struct {
	Page     string
	Language i18n.Language
	SiteName string
}

// Title returns the human readable page title, "merge-pdf" -> "Merge PDF".
func (c Card) Title() string {
	if c.Page == "" || c.Page == "index" {
		return c.SiteName
	}
	words := strings.FieldsFunc(c.Page, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		switch strings.ToLower(w) {
		case "pdf", "pdfs", "ocr", "jpg", "png", "svg", "html", "epub", "docx":
			words[i] = strings.ToUpper(w)
		default:
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Renderer draws 1200x630 PNG cards.
type Renderer struct {
	Width     float64
	Height    float64
	Pad       float64
	TitleSize float64
	SmallSize float64
	// FontPath is a TrueType font; the built-in bitmap face is used when it
	// cannot be loaded.
	FontPath string

	mu    sync.Mutex
	cache map[string][]byte
}

// NewRenderer creates a renderer with the standard Open Graph dimensions.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{
		Width:     1200,
		Height:    630,
		Pad:       64,
		TitleSize: 72,
		SmallSize: 28,
		FontPath:  fontPath,
		cache:     make(map[string][]byte),
	}
}

// PNG returns the encoded card, rendering it on first use.
func (r *Renderer) PNG(c Card) ([]byte, error) {
	key := string(c.Language) + "/" + c.Page

	r.mu.Lock()
	if b, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return b, nil
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := r.Render(&buf, c); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = buf.Bytes()
	r.mu.Unlock()
	return buf.Bytes(), nil
}

// Render draws the card and writes it to w as PNG.
func (r *Renderer) Render(w io.Writer, c Card) error {
	dc := gg.NewContext(int(r.Width), int(r.Height))

	r.drawBackground(dc)

	// Accent bar
	dc.SetColor(hexColor("#4a9eff"))
	dc.DrawRectangle(r.Pad, r.Pad, 8, r.Height-2*r.Pad)
	dc.Fill()

	r.loadFont(dc, r.TitleSize)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(c.Title(), r.Pad+40, r.Height/2-40, 0, 0.5, r.Width-2*r.Pad-40, 1.3, gg.AlignLeft)

	r.loadFont(dc, r.SmallSize)
	dc.SetColor(hexColor("#8888aa"))
	footer := c.SiteName
	if c.Language != "" {
		footer = fmt.Sprintf("%s · %s", c.SiteName, i18n.LanguageName(c.Language))
	}
	dc.DrawString(footer, r.Pad+40, r.Height-r.Pad-10)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode card %s/%s: %w", c.Language, c.Page, err)
	}
	return nil
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	for y := 0; y < int(r.Height); y++ {
		t := float64(y) / r.Height
		dc.SetColor(color.RGBA{uint8(10 + t*8), uint8(10 + t*8), uint8(26 + t*16), 255})
		dc.DrawRectangle(0, float64(y), r.Width, 1)
		dc.Fill()
	}
}

func (r *Renderer) loadFont(dc *gg.Context, size float64) {
	if r.FontPath == "" {
		return
	}
	// On failure gg keeps its built-in face.
	_ = dc.LoadFontFace(r.FontPath, size)
}

func hexColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	var cr, cg, cb uint8
	fmt.Sscanf(hex, "%02x%02x%02x", &cr, &cg, &cb)
	return color.RGBA{cr, cg, cb, 255}
}
