package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
)

// Judge reviews editor candidates and decides approve or revise.
type Judge struct {
	client Completer
	model  string
	log    *slog.Logger
}

func NewJudge(client Completer, model string, log *slog.Logger) *Judge {
	if model == "" {
		model = DefaultModel
	}
	return &Judge{client: client, model: model, log: log}
}

type judgeWire struct {
	Feedback        string   `json:"feedback"`
	Recommendations []string `json:"recommendations"`
	Decision        string   `json:"decision"`
}

func (w *judgeWire) Validate() error {
	switch strings.ToLower(strings.TrimSpace(w.Decision)) {
	case "approve", "revise":
		return nil
	}
	return fmt.Errorf("decision %q is neither approve nor revise", w.Decision)
}

var judgeSchema = &llm.Schema{
	Name: "judge_review",
	Spec: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        "string",
				"description": "Detailed feedback about the document changes",
			},
			"recommendations": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "List of specific recommendations for improvement",
			},
			"decision": map[string]any{
				"type": "string",
				"enum": []string{"approve", "revise"},
			},
		},
		"required":             []string{"feedback", "recommendations", "decision"},
		"additionalProperties": false,
	},
}

// Review evaluates a candidate against the document it was derived from.
// The returned feedback is normalized: approval is authoritative, and an
// indecisive verdict counts as a revision request.
func (j *Judge) Review(ctx context.Context, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
	var wire judgeWire
	err := j.client.Generate(ctx, llm.Request{
		Model:       j.model,
		Label:       "judge",
		System:      JudgeSystemPrompt,
		User:        BuildJudgePrompt(original, candidate),
		Schema:      judgeSchema,
		Temperature: 0.2,
	}, &wire)
	if err != nil {
		return document.JudgeFeedback{}, fmt.Errorf("judge review: %w", err)
	}

	decision := strings.ToLower(strings.TrimSpace(wire.Decision))
	j.log.Debug("judge reviewed candidate",
		"base_version", candidate.Version, "decision", decision,
		"recommendations", len(wire.Recommendations), "feedback_chars", len(wire.Feedback))

	return NormalizeFeedback(document.JudgeFeedback{
		Approved:         decision == "approve",
		Recommendations:  wire.Recommendations,
		RevisionRequired: decision == "revise",
	}), nil
}
