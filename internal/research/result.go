package research

import "strings"

// SearchResult is one cleaned provider result, keyed by URL. Only the cleaner
// may build these from raw provider payloads.
type SearchResult struct {
	Content         string
	RawContent      string
	URL             string
	Title           string
	PublicationDate string
}

// CanonicalText returns the single text field used downstream: the full page
// text when the provider supplied it, otherwise the snippet.
func (r SearchResult) CanonicalText() string {
	if strings.TrimSpace(r.RawContent) != "" {
		return r.RawContent
	}
	return r.Content
}
