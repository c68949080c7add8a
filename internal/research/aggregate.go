package research

import (
	"fmt"
	"strings"

	"github.com/Kjdragan/document-writer/internal/llm"
)

// Aggregate combines cleaned results into one topic-labeled markdown block,
// each result attributed with a "Source:" line so the contributing URLs stay
// recoverable from the document text. Result order follows the cleaned
// sequence. maxResultTokens bounds the text taken from any single result
// (0 means unbounded).
//
// Returns the block and the ordered, deduplicated list of contributing URLs.
// An empty result set yields an empty block: deciding whether that is an
// error belongs to the caller.
func Aggregate(topic string, results []SearchResult, maxResultTokens int) (string, []string) {
	if len(results) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(results)+1)
	blocks = append(blocks, fmt.Sprintf("# %s", topic))

	sources := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))

	for _, result := range results {
		text := strings.TrimSpace(result.CanonicalText())
		if text == "" {
			continue
		}
		text = llm.TrimToTokens(text, maxResultTokens)

		title := result.Title
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}

		var block strings.Builder
		fmt.Fprintf(&block, "## Content from %s\n\n", title)
		block.WriteString(text)
		fmt.Fprintf(&block, "\n\nSource: %s", result.URL)
		blocks = append(blocks, block.String())

		if _, dup := seen[result.URL]; !dup {
			seen[result.URL] = struct{}{}
			sources = append(sources, result.URL)
		}
	}

	if len(sources) == 0 {
		return "", nil
	}
	return strings.Join(blocks, "\n\n"), sources
}
