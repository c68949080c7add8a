package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
)

// DefaultModel is used when no model is configured for a role.
const DefaultModel = "gpt-4o-mini"

// Completer is the slice of the LLM client the agents need.
type Completer interface {
	Generate(ctx context.Context, req llm.Request, out any) error
}

// Editor produces candidate revisions of a document.
type Editor struct {
	client Completer
	model  string
	log    *slog.Logger
}

func NewEditor(client Completer, model string, log *slog.Logger) *Editor {
	if model == "" {
		model = DefaultModel
	}
	return &Editor{client: client, model: model, log: log}
}

type editorWire struct {
	ImprovedContent string   `json:"improved_content"`
	RevisionNotes   []string `json:"revision_notes"`
}

func (w *editorWire) Validate() error {
	if strings.TrimSpace(w.ImprovedContent) == "" {
		return errors.New("improved_content is empty")
	}
	return nil
}

var editorSchema = &llm.Schema{
	Name: "editor_revision",
	Spec: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"improved_content": map[string]any{
				"type":        "string",
				"description": "The improved version of the document",
			},
			"revision_notes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of key improvements and changes made",
			},
		},
		"required":             []string{"improved_content", "revision_notes"},
		"additionalProperties": false,
	},
}

// Revise produces a candidate revision of doc. On iterations after the
// first, prior carries the judge feedback the candidate must address. The
// result's Version records the document version it was derived from.
func (e *Editor) Revise(ctx context.Context, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
	var wire editorWire
	err := e.client.Generate(ctx, llm.Request{
		Model:       e.model,
		Label:       "editor",
		System:      EditorSystemPrompt,
		User:        BuildEditorPrompt(doc, prior),
		Schema:      editorSchema,
		Temperature: 0.7,
	}, &wire)
	if err != nil {
		return document.EditorResult{}, fmt.Errorf("editor revision: %w", err)
	}

	e.log.Debug("editor produced candidate",
		"base_version", doc.Version, "notes", len(wire.RevisionNotes))

	return document.EditorResult{
		Content:       wire.ImprovedContent,
		RevisionNotes: wire.RevisionNotes,
		Version:       doc.Version,
	}, nil
}
