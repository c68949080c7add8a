package notes

import (
	"strings"
	"testing"
)

func TestTextParser_ParagraphsJoinIntoOneSection(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	note, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if note.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", note.Title)
	}
	if len(note.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(note.Sections))
	}

	want := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	if note.Sections[0].Text != want {
		t.Errorf("expected %q, got %q", want, note.Sections[0].Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	note, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", note.Title)
	}
	if len(note.Sections) != 0 {
		t.Errorf("expected 0 sections for empty input, got %d", len(note.Sections))
	}
}

func TestTextParser_WhitespaceOnlyLinesAreBlank(t *testing.T) {
	input := "Para one.\n   \nPara two."
	p := &TextParser{}
	note, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(note.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(note.Sections))
	}
	if note.Sections[0].Text != "Para one.\n\nPara two." {
		t.Errorf("expected normalized paragraph break, got %q", note.Sections[0].Text)
	}
}

func TestTextParser_MultipleBlankLinesCollapse(t *testing.T) {
	input := "Para one.\n\n\n\nPara two."
	p := &TextParser{}
	note, err := p.Parse(strings.NewReader(input), "gaps.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(note.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(note.Sections))
	}
	if strings.Contains(note.Sections[0].Text, "\n\n\n") {
		t.Errorf("expected blank runs to collapse, got %q", note.Sections[0].Text)
	}
}
