package research

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClean_DedupKeepsFirstOccurrence(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"url": "https://a.example", "content": "X", "raw_content": "X-full"},
			map[string]any{"url": "https://a.example", "content": "Y"},
			map[string]any{"url": "https://b.example", "content": "Z"},
		},
	}

	got, err := Clean(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []SearchResult{
		{URL: "https://a.example", Content: "X", RawContent: "X-full"},
		{URL: "https://b.example", Content: "Z"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cleaned results mismatch (-want +got):\n%s", diff)
	}
}

func TestClean_AlreadyCleanInputIsStable(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"url": "https://a.example", "content": "alpha", "title": "A"},
			map[string]any{"url": "https://a.example", "content": "dup"},
			map[string]any{"url": "https://b.example", "content": "beta", "title": "B"},
		},
	}

	once, err := Clean(raw)
	if err != nil {
		t.Fatalf("first clean: %v", err)
	}

	entries := make([]any, 0, len(once))
	for _, r := range once {
		entries = append(entries, map[string]any{
			"url":         r.URL,
			"content":     r.Content,
			"raw_content": r.RawContent,
			"title":       r.Title,
		})
	}
	twice, err := Clean(map[string]any{"results": entries})
	if err != nil {
		t.Fatalf("second clean: %v", err)
	}

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("cleaning is not stable (-once +twice):\n%s", diff)
	}
}

func TestClean_DropsUnusableEntries(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"content": "no url here"},
			map[string]any{"url": "   ", "content": "blank url"},
			map[string]any{"url": "https://empty.example", "content": "", "raw_content": "  "},
			"not even a map",
			map[string]any{"url": "https://ok.example", "content": "kept"},
		},
	}

	got, err := Clean(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].URL != "https://ok.example" {
		t.Errorf("expected surviving result, got %+v", got[0])
	}
}

func TestClean_UnescapesTextFields(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{
				"url":         "https://esc.example",
				"content":     `He said \"hello\" today.`,
				"raw_content": `line one\nline two`,
			},
		},
	}

	got, err := Clean(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Content != `He said "hello" today.` {
		t.Errorf("expected quotes unescaped, got %q", got[0].Content)
	}
	if got[0].RawContent != "line one\nline two" {
		t.Errorf("expected newline unescaped, got %q", got[0].RawContent)
	}
}

func TestClean_OptionalFieldsCarriedThrough(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{
				"url":            "https://meta.example",
				"content":        "body",
				"title":          "Meta Title",
				"published_date": "2025-02-01",
			},
		},
	}

	got, err := Clean(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Title != "Meta Title" {
		t.Errorf("expected title, got %q", got[0].Title)
	}
	if got[0].PublicationDate != "2025-02-01" {
		t.Errorf("expected publication date, got %q", got[0].PublicationDate)
	}
}

func TestClean_ResultsAsJSONString(t *testing.T) {
	raw := map[string]any{
		"results": `[{"url":"https://s.example","content":"from string"}]`,
	}

	got, err := Clean(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Content != "from string" {
		t.Errorf("expected re-parsed results, got %+v", got)
	}
}

func TestClean_PayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"nil payload", nil},
		{"missing results key", map[string]any{"query": "x"}},
		{"results not a collection", map[string]any{"results": 42}},
		{"results string not json", map[string]any{"results": "{broken"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Clean(tt.raw)
			var cerr *CleaningError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected CleaningError, got %v", err)
			}
		})
	}
}

func TestClean_NilResultsValueIsEmpty(t *testing.T) {
	got, err := Clean(map[string]any{"results": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestSearchResult_CanonicalTextPrefersRawContent(t *testing.T) {
	r := SearchResult{Content: "snippet", RawContent: "full page text"}
	if got := r.CanonicalText(); got != "full page text" {
		t.Errorf("expected raw content, got %q", got)
	}

	r = SearchResult{Content: "snippet", RawContent: "   "}
	if got := r.CanonicalText(); got != "snippet" {
		t.Errorf("expected snippet fallback, got %q", got)
	}
}
