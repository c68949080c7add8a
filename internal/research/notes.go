package research

import (
	"fmt"

	"github.com/Kjdragan/document-writer/internal/notes"
)

// FromNotes converts local reference notes into results that can join a
// research round alongside provider results. Each passage becomes one
// result with a file URL, so attribution and dedup work the same way
// they do for web sources.
func FromNotes(loaded []*notes.Note, maxPassageTokens int) []SearchResult {
	var results []SearchResult
	for _, note := range loaded {
		passages := notes.Passages(note, maxPassageTokens)
		for i, passage := range passages {
			url := "file://" + note.Path
			if len(passages) > 1 {
				url = fmt.Sprintf("%s#p%d", url, i+1)
			}
			title := note.Title
			if passage.Heading != "" {
				title = fmt.Sprintf("%s: %s", note.Title, passage.Heading)
			}
			results = append(results, SearchResult{
				Content: passage.Text,
				URL:     url,
				Title:   title,
			})
		}
	}
	return results
}
