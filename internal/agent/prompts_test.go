package agent

import (
	"strings"
	"testing"

	"github.com/Kjdragan/document-writer/internal/document"
)

func TestBuildEditorPrompt_FirstIteration(t *testing.T) {
	doc := document.State{
		Content: "The document body.",
		Topics:  []string{"ukraine-war", "economy"},
		Version: 2,
	}

	prompt := BuildEditorPrompt(doc, nil)

	if !strings.Contains(prompt, "Topics: ukraine-war, economy") {
		t.Errorf("expected topics line, got %q", prompt)
	}
	if !strings.Contains(prompt, "Version: 2") {
		t.Errorf("expected version line, got %q", prompt)
	}
	if !strings.Contains(prompt, "The document body.") {
		t.Errorf("expected document content, got %q", prompt)
	}
	if strings.Contains(prompt, "not approved") {
		t.Errorf("expected no reviewer section on first iteration, got %q", prompt)
	}
}

func TestBuildEditorPrompt_CarriesPriorRecommendations(t *testing.T) {
	doc := document.State{Content: "body", Topics: []string{"t"}, Version: 1}
	prior := &document.JudgeFeedback{
		RevisionRequired: true,
		Recommendations:  []string{"shorten the lede", "cite the second source"},
	}

	prompt := BuildEditorPrompt(doc, prior)

	if !strings.Contains(prompt, "- shorten the lede") {
		t.Errorf("expected first recommendation, got %q", prompt)
	}
	if !strings.Contains(prompt, "- cite the second source") {
		t.Errorf("expected second recommendation, got %q", prompt)
	}
}

func TestBuildJudgePrompt_BothVersionsPresent(t *testing.T) {
	original := document.State{
		Content: "original prose",
		Topics:  []string{"ukraine-war"},
		Version: 3,
	}
	candidate := document.EditorResult{
		Content:       "revised prose",
		RevisionNotes: []string{"merged duplicate sections"},
		Version:       3,
	}

	prompt := BuildJudgePrompt(original, candidate)

	if !strings.Contains(prompt, "original prose") || !strings.Contains(prompt, "revised prose") {
		t.Errorf("expected both document versions, got %q", prompt)
	}
	if !strings.Contains(prompt, "merged duplicate sections") {
		t.Errorf("expected revision notes, got %q", prompt)
	}
	if !strings.Contains(prompt, "Derived from version: 3") {
		t.Errorf("expected candidate lineage, got %q", prompt)
	}
}

func TestBuildJudgePrompt_NoNotesFallback(t *testing.T) {
	prompt := BuildJudgePrompt(document.State{Version: 1}, document.EditorResult{Version: 1})
	if !strings.Contains(prompt, "No revision notes provided") {
		t.Errorf("expected fallback for missing notes, got %q", prompt)
	}
}
