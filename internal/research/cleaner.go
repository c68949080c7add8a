package research

import (
	"encoding/json"
	"strings"
)

// CleaningError reports a raw search payload that cannot be interpreted as a
// result collection at all. Per-entry problems are dropped silently; this
// error is reserved for a wholly unusable payload.
type CleaningError struct {
	Reason string
}

func (e *CleaningError) Error() string {
	return "clean search results: " + e.Reason
}

// Clean normalizes a raw provider response into typed, deduplicated results.
// The payload is treated as untyped throughout; entries that cannot yield a
// URL plus some text are skipped. Deduplication keeps the first occurrence of
// each URL, preserving provider order, since the provider returns results
// relevance-first.
func Clean(raw map[string]any) ([]SearchResult, error) {
	if raw == nil {
		return nil, &CleaningError{Reason: "empty payload"}
	}

	entries, err := resultEntries(raw)
	if err != nil {
		return nil, err
	}

	cleaned := make([]SearchResult, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		result, ok := cleanEntry(entry)
		if !ok {
			continue
		}
		if _, dup := seen[result.URL]; dup {
			continue
		}
		seen[result.URL] = struct{}{}
		cleaned = append(cleaned, result)
	}
	return cleaned, nil
}

// resultEntries pulls the results collection out of the payload. Providers
// occasionally return the collection re-encoded as a JSON string; that form
// is decoded rather than discarded.
func resultEntries(raw map[string]any) ([]any, error) {
	value, ok := raw["results"]
	if !ok {
		return nil, &CleaningError{Reason: "payload carries no results collection"}
	}
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		var entries []any
		if err := json.Unmarshal([]byte(v), &entries); err != nil {
			return nil, &CleaningError{Reason: "results string is not a JSON collection"}
		}
		return entries, nil
	case nil:
		return nil, nil
	default:
		return nil, &CleaningError{Reason: "results is not a collection"}
	}
}

func cleanEntry(entry map[string]any) (SearchResult, bool) {
	url, _ := entry["url"].(string)
	if strings.TrimSpace(url) == "" {
		return SearchResult{}, false
	}

	content, _ := entry["content"].(string)
	rawContent, _ := entry["raw_content"].(string)
	if strings.TrimSpace(content) == "" && strings.TrimSpace(rawContent) == "" {
		return SearchResult{}, false
	}

	title, _ := entry["title"].(string)
	published, _ := entry["published_date"].(string)

	return SearchResult{
		Content:         unescape(content),
		RawContent:      unescape(rawContent),
		URL:             url,
		Title:           title,
		PublicationDate: published,
	}, true
}

var escapeFixer = strings.NewReplacer(`\"`, `"`, `\n`, "\n")

// unescape undoes the double-escaping some provider responses carry in their
// text fields.
func unescape(s string) string {
	if s == "" {
		return s
	}
	return escapeFixer.Replace(s)
}
