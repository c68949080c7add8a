package notes

import (
	"fmt"
	"strings"

	"github.com/Kjdragan/document-writer/internal/llm"
)

// Passage is a prompt-sized slice of a note.
type Passage struct {
	Heading string
	Text    string
}

// Passages flattens a note into passages of at most maxTokens estimated
// tokens each. Adjacent sections are merged until the budget is reached;
// a merged section keeps its heading inline so the context survives.
// Sections larger than the budget are split on paragraph and then
// sentence boundaries.
func Passages(n *Note, maxTokens int) []Passage {
	if maxTokens <= 0 {
		maxTokens = 1200
	}

	var out []Passage
	var cur strings.Builder
	curHeading := ""
	curTokens := 0

	flush := func() {
		if curTokens > 0 {
			out = append(out, Passage{Heading: curHeading, Text: strings.TrimSpace(cur.String())})
			cur.Reset()
			curHeading = ""
			curTokens = 0
		}
	}

	for _, sec := range n.Sections {
		text := strings.TrimSpace(sec.Text)
		if text == "" {
			continue
		}
		secTokens := llm.EstimateTokens(text)

		if secTokens > maxTokens {
			flush()
			parts := splitSection(text, maxTokens)
			for i, part := range parts {
				heading := sec.Heading
				if heading != "" && len(parts) > 1 {
					heading = fmt.Sprintf("%s (part %d)", heading, i+1)
				}
				out = append(out, Passage{Heading: heading, Text: part})
			}
			continue
		}

		if curTokens+secTokens > maxTokens && curTokens > 0 {
			flush()
		}

		if curTokens == 0 {
			curHeading = sec.Heading
		} else {
			cur.WriteString("\n\n")
			if sec.Heading != "" {
				cur.WriteString(sec.Heading)
				cur.WriteString("\n\n")
			}
		}
		cur.WriteString(text)
		curTokens += secTokens
	}
	flush()

	return out
}

// splitSection breaks section text into pieces of approximately maxTokens.
func splitSection(text string, maxTokens int) []string {
	paragraphs := splitParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := llm.EstimateTokens(para)

		// A single paragraph over the budget gets split by sentences.
		if paraTokens > maxTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(para, maxTokens)...)
			continue
		}

		if currentTokens+paraTokens > maxTokens && currentTokens > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitParagraphs splits on double-newlines.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences packs sentences into pieces of at most maxTokens.
func splitBySentences(text string, maxTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := llm.EstimateTokens(sent)

		if currentTokens+sentTokens > maxTokens && currentTokens > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}
