// Package notes loads local reference files so their content can join a
// research round alongside provider results.
package notes

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Note is one reference document loaded from disk.
type Note struct {
	Path     string
	Title    string
	Sections []Section
}

// Section is a contiguous run of text under one heading. Text before the
// first heading has an empty heading and level 0.
type Section struct {
	Heading string
	Level   int
	Text    string
}

// Parser converts one file format into a Note.
type Parser interface {
	Parse(r io.Reader, filename string) (*Note, error)
}

// SupportedExtensions lists the file extensions that can be ingested.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks whether a file can be ingested.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// trimExt strips the extension for use as a fallback title.
func trimExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
