package notes

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Note, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	note := &Note{
		Path:  filename,
		Title: trimExt(filename),
	}

	var cur Section
	var buf bytes.Buffer
	flush := func() {
		if t := strings.TrimSpace(buf.String()); t != "" {
			cur.Text = t
			note.Sections = append(note.Sections, cur)
		}
		buf.Reset()
	}

	sawTitle := false
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			flush()
			title := plainText(heading, src)
			if !sawTitle && heading.Level == 1 && title != "" {
				note.Title = title
				sawTitle = true
			}
			cur = Section{Heading: title, Level: heading.Level}
			continue
		}
		if t := plainText(n, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteString("\n\n")
			}
			buf.WriteString(t)
		}
	}
	flush()

	return note, nil
}

// plainText renders a goldmark AST node as plain text. Code blocks keep
// their raw lines; inline markup is stripped.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	writePlainText(&buf, n, src)
	return strings.TrimSpace(buf.String())
}

func writePlainText(buf *bytes.Buffer, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Segment.Value(src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			buf.WriteByte('\n')
		}
		return
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return
	case *ast.AutoLink:
		buf.Write(node.URL(src))
		return
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writePlainText(buf, c, src)
		// Keep block boundaries readable inside list items and quotes.
		if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
			buf.WriteByte('\n')
		}
	}
}
