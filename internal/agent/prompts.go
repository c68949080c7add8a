// Package agent implements the editor and judge roles of the refinement
// loop as stateless calls to a generative collaborator.
package agent

import (
	"fmt"
	"strings"

	"github.com/Kjdragan/document-writer/internal/document"
)

const EditorSystemPrompt = `You are an expert editor focused on improving document clarity, coherence, and structure. Analyze the provided content and make improvements while maintaining accuracy and key information. Focus on:
1. Clear narrative flow
2. Logical structure
3. Consistent style
4. Proper transitions between topics
5. Elimination of redundancy

Keep every "Source:" attribution line intact.

Respond with a JSON object:
- "improved_content": the improved version of the document (string)
- "revision_notes": list of key improvements and changes made (list of strings)`

const JudgeSystemPrompt = `You are an expert judge evaluating document improvements. Analyze the original and edited versions to assess:
1. Content accuracy and completeness
2. Structural improvements
3. Clarity and readability
4. Proper handling of topics
5. Overall document quality

Provide specific recommendations if improvements are needed.

Respond with a JSON object:
- "feedback": detailed feedback about the document changes (string)
- "recommendations": list of specific recommendations for improvement (list of strings)
- "decision": "approve" or "revise"`

// BuildEditorPrompt creates the user message for a revision pass, folding in
// the judge's recommendations from the previous round when present.
func BuildEditorPrompt(doc document.State, prior *document.JudgeFeedback) string {
	var sb strings.Builder
	sb.WriteString("Please review and improve the following document:\n\n")
	fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(doc.Topics, ", "))
	fmt.Fprintf(&sb, "Version: %d\n\n", doc.Version)
	if prior != nil && len(prior.Recommendations) > 0 {
		sb.WriteString("The previous draft was not approved. Address these reviewer recommendations:\n")
		for _, rec := range prior.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Content:\n")
	sb.WriteString(doc.Content)
	sb.WriteString("\n\nProvide the improved version maintaining all key information but enhancing readability and structure.")
	return sb.String()
}

// BuildJudgePrompt creates the user message for reviewing a candidate
// against the document it was derived from.
func BuildJudgePrompt(original document.State, candidate document.EditorResult) string {
	var sb strings.Builder
	sb.WriteString("Review the following document versions:\n\n")
	sb.WriteString("Original Document:\n")
	fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(original.Topics, ", "))
	fmt.Fprintf(&sb, "Version: %d\n", original.Version)
	sb.WriteString("Content:\n")
	sb.WriteString(original.Content)
	sb.WriteString("\n\nEdited Document:\n")
	fmt.Fprintf(&sb, "Derived from version: %d\n", candidate.Version)
	sb.WriteString("Changes Made:\n")
	if len(candidate.RevisionNotes) > 0 {
		sb.WriteString(strings.Join(candidate.RevisionNotes, "\n"))
	} else {
		sb.WriteString("No revision notes provided")
	}
	sb.WriteString("\n\nContent:\n")
	sb.WriteString(candidate.Content)
	sb.WriteString("\n\nEvaluate the changes and provide structured feedback.")
	return sb.String()
}
