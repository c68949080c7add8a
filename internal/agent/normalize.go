package agent

import "github.com/Kjdragan/document-writer/internal/document"

// NormalizeFeedback enforces the approval contract on raw judge output.
// Approval is authoritative: an approved verdict clears any stray revision
// flag. A verdict that neither approves nor requests revision becomes a
// revision request, so an indecisive review can never stall the loop or
// slip through as an approval.
func NormalizeFeedback(fb document.JudgeFeedback) document.JudgeFeedback {
	if fb.Approved {
		fb.RevisionRequired = false
		return fb
	}
	fb.RevisionRequired = true
	return fb
}
