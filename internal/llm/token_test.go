package llm

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"two words", 2},
		{strings.Repeat("word ", 100), 133},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d words): expected %d, got %d",
				len(strings.Fields(tt.text)), tt.want, got)
		}
	}
}

func TestTrimToTokens_NoLimitReturnsInput(t *testing.T) {
	text := strings.Repeat("word ", 500)
	if got := TrimToTokens(text, 0); got != text {
		t.Error("expected unlimited trim to return input unchanged")
	}
	if got := TrimToTokens("short text", 100); got != "short text" {
		t.Errorf("expected fitting text unchanged, got %q", got)
	}
}

func TestTrimToTokens_KeepsWholeParagraphsFirst(t *testing.T) {
	para1 := strings.TrimSpace(strings.Repeat("alpha ", 30)) // ~39 tokens
	para2 := strings.TrimSpace(strings.Repeat("beta ", 30))
	para3 := strings.TrimSpace(strings.Repeat("gamma ", 30))
	text := para1 + "\n\n" + para2 + "\n\n" + para3

	got := TrimToTokens(text, 100)

	if !strings.HasPrefix(got, para1) {
		t.Errorf("expected first paragraph intact, got %q", got)
	}
	if strings.Count(got, "beta") != 30 {
		t.Errorf("expected second paragraph intact, got %d beta words", strings.Count(got, "beta"))
	}
	// The third paragraph gets cut on a word boundary to fill the budget.
	gammas := strings.Count(got, "gamma")
	if gammas == 0 || gammas == 30 {
		t.Errorf("expected partial third paragraph, got %d gamma words", gammas)
	}
}

func TestTrimToTokens_SingleOversizedParagraph(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 100)) // ~133 tokens
	got := TrimToTokens(text, 50)

	words := len(strings.Fields(got))
	if words == 0 || words >= 100 {
		t.Errorf("expected partial paragraph, got %d words", words)
	}
	if EstimateTokens(got) > 50 {
		t.Errorf("expected at most 50 tokens, got %d", EstimateTokens(got))
	}
}
