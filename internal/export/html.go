// Package export renders a document snapshot as a standalone HTML page.
package export

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Kjdragan/document-writer/internal/document"
)

const pageCSS = `body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem;
  font-family: Georgia, serif; line-height: 1.6; color: #222; }
header { border-bottom: 1px solid #ccc; margin-bottom: 2rem; padding-bottom: 0.5rem;
  font-family: sans-serif; font-size: 0.85rem; color: #666; }
h1, h2, h3 { font-family: sans-serif; line-height: 1.25; }
a { color: #1a5276; }
`

// HTML renders the document's markdown content into a self-contained page.
// The header carries the version and topic list so an exported file stays
// identifiable away from the work-product log.
func HTML(doc document.State) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(doc.Content), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title := "document"
	if len(doc.Topics) > 0 {
		title = doc.Topics[0]
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>\n" + pageCSS + "</style>\n</head>\n<body>\n")
	fmt.Fprintf(&page, "<header>version %d &middot; topics: %s</header>\n",
		doc.Version, html.EscapeString(strings.Join(doc.Topics, ", ")))
	page.WriteString("<main>\n")
	page.Write(body.Bytes())
	page.WriteString("</main>\n</body>\n</html>\n")
	return page.Bytes(), nil
}

// WriteHTML renders the document and writes it under dir, named after the
// first topic and version. Returns the written path.
func WriteHTML(doc document.State, dir string) (string, error) {
	page, err := HTML(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	slug := "none"
	if len(doc.Topics) > 0 {
		slug = document.Slugify(doc.Topics[0])
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_v%d.html", slug, doc.Version))
	if err := os.WriteFile(path, page, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
