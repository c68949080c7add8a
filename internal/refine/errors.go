package refine

import (
	"fmt"

	"github.com/Kjdragan/document-writer/internal/document"
)

// MaxIterationsExceeded reports that the refinement loop spent its whole
// iteration bound without the judge approving a candidate. The last candidate
// and verdict ride along so the caller can inspect or force-accept them; the
// loop itself never promotes an unapproved draft.
type MaxIterationsExceeded struct {
	Iterations   int
	LastResult   document.EditorResult
	LastFeedback document.JudgeFeedback
}

func (e *MaxIterationsExceeded) Error() string {
	return fmt.Sprintf("document not approved after %d refinement iterations", e.Iterations)
}
