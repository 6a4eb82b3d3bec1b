package linkrewrite

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteHTML rewrites every <a href> in htmlContent for the active language.
// When the language is the default the content is returned unchanged, without
// a parse/render round trip.
func RewriteHTML(htmlContent string, opts Options) (string, error) {
	if !opts.Active() {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	changed := rewriteNode(doc, opts)
	if opts.SetHTMLLang && !isFragment {
		changed = setHTMLLang(doc, string(opts.Language)) || changed
	}
	if !changed {
		return htmlContent, nil
	}
	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string. Fragments render only
// their children.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, opts Options) bool {
	changed := false
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		for i, attr := range n.Attr {
			if attr.Namespace != "" || attr.Key != "href" {
				continue
			}
			if out, ok := RewriteHref(attr.Val, opts); ok {
				n.Attr[i].Val = out
				changed = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteNode(c, opts) {
			changed = true
		}
	}
	return changed
}

func setHTMLLang(doc *html.Node, lang string) bool {
	var root *html.Node
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			root = c
			break
		}
	}
	if root == nil {
		return false
	}
	for i, attr := range root.Attr {
		if attr.Key == "lang" {
			if attr.Val == lang {
				return false
			}
			root.Attr[i].Val = lang
			return true
		}
	}
	root.Attr = append(root.Attr, html.Attribute{Key: "lang", Val: lang})
	return true
}
