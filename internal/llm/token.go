package llm

import "strings"

// EstimateTokens gives a rough token count from the word count. Exact
// tokenization is not required anywhere: estimates only bound prompt sizes.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TrimToTokens cuts text down to approximately maxTokens. Whole paragraphs
// are kept while they fit; the first paragraph that does not fit is cut on a
// word boundary. maxTokens <= 0 means no limit.
func TrimToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}

	var sb strings.Builder
	used := 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		cost := EstimateTokens(para)
		if used+cost > maxTokens {
			if head := trimWords(para, maxTokens-used); head != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
				sb.WriteString(head)
			}
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(para)
		used += cost
	}

	if sb.Len() == 0 {
		return trimWords(text, maxTokens)
	}
	return sb.String()
}

func trimWords(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / 1.33)
	if keep < 1 {
		keep = 1
	}
	if keep >= len(words) {
		return text
	}
	return strings.Join(words[:keep], " ")
}
