package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
)

// fakeCompleter scripts Generate calls without a provider.
type fakeCompleter struct {
	lastReq llm.Request
	fill    func(req llm.Request, out any) error
}

func (f *fakeCompleter) Generate(_ context.Context, req llm.Request, out any) error {
	f.lastReq = req
	return f.fill(req, out)
}

func agentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEditor_ReviseTiesCandidateToBaseVersion(t *testing.T) {
	fake := &fakeCompleter{
		fill: func(_ llm.Request, out any) error {
			w := out.(*editorWire)
			w.ImprovedContent = "a better draft"
			w.RevisionNotes = []string{"tightened the intro"}
			return nil
		},
	}
	editor := NewEditor(fake, "gpt-4o-mini", agentLogger())

	doc := document.State{Content: "a rough draft", Topics: []string{"t"}, Version: 4}
	result, err := editor.Revise(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Content != "a better draft" {
		t.Errorf("expected improved content, got %q", result.Content)
	}
	if result.Version != 4 {
		t.Errorf("expected candidate tied to version 4, got %d", result.Version)
	}
	if len(result.RevisionNotes) != 1 {
		t.Errorf("expected revision notes, got %v", result.RevisionNotes)
	}

	if fake.lastReq.Label != "editor" {
		t.Errorf("expected editor stats label, got %q", fake.lastReq.Label)
	}
	if fake.lastReq.Schema == nil || fake.lastReq.Schema.Name != "editor_revision" {
		t.Errorf("expected editor_revision schema, got %+v", fake.lastReq.Schema)
	}
	if !strings.Contains(fake.lastReq.User, "a rough draft") {
		t.Errorf("expected document in prompt, got %q", fake.lastReq.User)
	}
}

func TestEditor_ReviseFoldsInPriorFeedback(t *testing.T) {
	fake := &fakeCompleter{
		fill: func(_ llm.Request, out any) error {
			w := out.(*editorWire)
			w.ImprovedContent = "addressed"
			return nil
		},
	}
	editor := NewEditor(fake, "", agentLogger())

	prior := &document.JudgeFeedback{
		RevisionRequired: true,
		Recommendations:  []string{"expand the timeline section"},
	}
	if _, err := editor.Revise(context.Background(), document.State{Content: "c", Version: 1}, prior); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(fake.lastReq.User, "expand the timeline section") {
		t.Errorf("expected prior recommendation in prompt, got %q", fake.lastReq.User)
	}
	if fake.lastReq.Model != DefaultModel {
		t.Errorf("expected default model fallback, got %q", fake.lastReq.Model)
	}
}

func TestEditor_ReviseSurfacesGenerationError(t *testing.T) {
	genErr := &llm.GenerationError{Schema: "editor_revision", Attempts: 2, Err: errors.New("still prose")}
	fake := &fakeCompleter{
		fill: func(_ llm.Request, _ any) error { return genErr },
	}
	editor := NewEditor(fake, "gpt-4o-mini", agentLogger())

	_, err := editor.Revise(context.Background(), document.State{Content: "c", Version: 1}, nil)

	var got *llm.GenerationError
	if !errors.As(err, &got) {
		t.Fatalf("expected GenerationError to propagate, got %v", err)
	}
}

func TestEditorWire_ValidateRejectsEmptyContent(t *testing.T) {
	w := &editorWire{ImprovedContent: "   ", RevisionNotes: []string{"note"}}
	if w.Validate() == nil {
		t.Error("expected empty improved_content to be rejected")
	}
	w.ImprovedContent = "real content"
	if err := w.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
