package document

import "time"

// State is one immutable version of the working document. Operations on the
// Store return fresh State values; nothing mutates a State in place, so any
// held reference stays valid as an audit point.
type State struct {
	Content  string
	Topics   []string
	Version  int
	Metadata map[string]string
	Sources  []string
}

// EditorResult is a candidate revision produced by the editor step. Version
// records the State version the candidate was derived from.
type EditorResult struct {
	Content       string
	RevisionNotes []string
	Version       int
}

// JudgeFeedback is the judge step's verdict on a candidate revision.
// RevisionRequired is true whenever Approved is false; an approved document
// may still carry advisory recommendations.
type JudgeFeedback struct {
	Approved         bool
	Recommendations  []string
	RevisionRequired bool
}

// WithContent returns a copy of s with the content replaced and last_modified
// refreshed. The version is unchanged: content replacement happens when an
// approved edit lands, and the edit cycle is not a topic append.
func (s State) WithContent(content string) State {
	next := s.clone()
	next.Content = content
	if next.Metadata == nil {
		next.Metadata = make(map[string]string, 1)
	}
	next.Metadata["last_modified"] = time.Now().Format(time.RFC3339)
	return next
}

// clone deep-copies the state so derived values never alias slices or the
// metadata map of their parent.
func (s State) clone() State {
	next := State{
		Content: s.Content,
		Version: s.Version,
	}
	if s.Topics != nil {
		next.Topics = make([]string, len(s.Topics))
		copy(next.Topics, s.Topics)
	}
	if s.Sources != nil {
		next.Sources = make([]string, len(s.Sources))
		copy(next.Sources, s.Sources)
	}
	if s.Metadata != nil {
		next.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			next.Metadata[k] = v
		}
	}
	return next
}
