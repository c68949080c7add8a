package agent

import (
	"testing"

	"github.com/Kjdragan/document-writer/internal/document"
)

func TestNormalizeFeedback(t *testing.T) {
	tests := []struct {
		name                 string
		approved             bool
		revisionRequired     bool
		wantApproved         bool
		wantRevisionRequired bool
	}{
		{"clean approval", true, false, true, false},
		{"approval wins over stray revision flag", true, true, true, false},
		{"clean revision request", false, true, false, true},
		{"indecisive verdict becomes revision request", false, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFeedback(document.JudgeFeedback{
				Approved:         tt.approved,
				RevisionRequired: tt.revisionRequired,
			})
			if got.Approved != tt.wantApproved {
				t.Errorf("approved: expected %v, got %v", tt.wantApproved, got.Approved)
			}
			if got.RevisionRequired != tt.wantRevisionRequired {
				t.Errorf("revisionRequired: expected %v, got %v", tt.wantRevisionRequired, got.RevisionRequired)
			}
		})
	}
}

func TestNormalizeFeedback_KeepsRecommendations(t *testing.T) {
	fb := NormalizeFeedback(document.JudgeFeedback{
		Approved:        false,
		Recommendations: []string{"tighten the intro", "add a conclusion"},
	})
	if len(fb.Recommendations) != 2 {
		t.Errorf("expected recommendations preserved, got %v", fb.Recommendations)
	}
}
