// Package refine runs the editor/judge refinement loop as an explicit state
// machine. The loop drafts a candidate revision, submits it for review, and
// either applies the approved content or circles back for another draft until
// the iteration bound is reached.
package refine

import (
	"errors"
	"fmt"

	"github.com/anggasct/fluo"

	"github.com/Kjdragan/document-writer/internal/document"
)

// Machine state and event names.
const (
	StateDrafting          = "drafting"
	StateCandidatePending  = "candidate_pending_review"
	StateReviewOutcome     = "review_outcome"
	StateApproved          = "approved"
	StateRevisionRequested = "revision_requested"
	StateDone              = "done"

	EventCandidateReady = "candidate_ready"
	EventVerdict        = "verdict"
	EventFinalize       = "finalize"
	EventRevise         = "revise"
)

// runKey locates the shared run record inside the machine context.
const runKey = "refine_run"

// run carries the mutable record of one refinement session. Actions are the
// only writers: a rejected event leaves the record exactly as it was, which
// keeps every observable mutation tied to a completed transition.
type run struct {
	doc       document.State
	candidate document.EditorResult
	feedback  document.JudgeFeedback
	iteration int
	final     document.State
	store     Recorder
}

// buildMachine assembles the refinement state machine. Transition actions
// persist audit records before the state changes, so a persistence failure
// rejects the event and the machine stays put.
func buildMachine() fluo.MachineDefinition {
	builder := fluo.NewMachine()

	builder.State(StateDrafting).Initial().
		To(StateCandidatePending).On(EventCandidateReady).Do(recordCandidate)

	builder.State(StateCandidatePending).
		To(StateReviewOutcome).On(EventVerdict).Do(recordVerdict)

	builder.Choice(StateReviewOutcome).
		When(verdictApproved).To(StateApproved).
		Otherwise(StateRevisionRequested)

	builder.State(StateApproved).
		To(StateDone).On(EventFinalize).Do(applyCandidate)

	builder.State(StateRevisionRequested).
		To(StateDrafting).On(EventRevise).Do(beginNextRound)

	builder.State(StateDone).Final()

	return builder.Build()
}

func runFrom(ctx fluo.Context) *run {
	if val, ok := ctx.Get(runKey); ok {
		if r, ok := val.(*run); ok {
			return r
		}
	}
	return nil
}

func recordCandidate(ctx fluo.Context) error {
	r := runFrom(ctx)
	if r == nil {
		return errors.New("refinement run missing from machine context")
	}
	candidate, ok := ctx.GetEventData().(document.EditorResult)
	if !ok {
		return errors.New("candidate_ready event carries no editor result")
	}
	if _, err := r.store.SaveEditorDraft(r.doc, candidate); err != nil {
		return fmt.Errorf("persist editor draft: %w", err)
	}
	r.candidate = candidate
	return nil
}

func recordVerdict(ctx fluo.Context) error {
	r := runFrom(ctx)
	if r == nil {
		return errors.New("refinement run missing from machine context")
	}
	feedback, ok := ctx.GetEventData().(document.JudgeFeedback)
	if !ok {
		return errors.New("verdict event carries no judge feedback")
	}
	if _, err := r.store.SaveJudgeReview(r.doc, feedback); err != nil {
		return fmt.Errorf("persist judge review: %w", err)
	}
	r.feedback = feedback
	return nil
}

// verdictApproved routes the review outcome. Approval is the only path to
// StateApproved; an unapproved verdict is a revision request no matter what
// its RevisionRequired flag claims.
func verdictApproved(ctx fluo.Context) bool {
	r := runFrom(ctx)
	return r != nil && r.feedback.Approved
}

// applyCandidate lands the approved content on the document. The version is
// untouched: an edit cycle is not a topic append.
func applyCandidate(ctx fluo.Context) error {
	r := runFrom(ctx)
	if r == nil {
		return errors.New("refinement run missing from machine context")
	}
	r.final = r.doc.WithContent(r.candidate.Content)
	return nil
}

func beginNextRound(ctx fluo.Context) error {
	r := runFrom(ctx)
	if r == nil {
		return errors.New("refinement run missing from machine context")
	}
	r.iteration++
	return nil
}
