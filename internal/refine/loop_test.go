package refine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scriptedEditor struct {
	calls  int
	revise func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error)
}

func (e *scriptedEditor) Revise(ctx context.Context, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
	if err := ctx.Err(); err != nil {
		return document.EditorResult{}, err
	}
	e.calls++
	return e.revise(e.calls, doc, prior)
}

type scriptedJudge struct {
	calls  int
	review func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error)
}

func (j *scriptedJudge) Review(ctx context.Context, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
	if err := ctx.Err(); err != nil {
		return document.JudgeFeedback{}, err
	}
	j.calls++
	return j.review(j.calls, original, candidate)
}

type recordingStore struct {
	drafts   []document.EditorResult
	reviews  []document.JudgeFeedback
	draftErr error
}

func (s *recordingStore) SaveEditorDraft(state document.State, result document.EditorResult) (string, error) {
	if s.draftErr != nil {
		return "", s.draftErr
	}
	s.drafts = append(s.drafts, result)
	return fmt.Sprintf("%d_editor.md", len(s.drafts)), nil
}

func (s *recordingStore) SaveJudgeReview(state document.State, feedback document.JudgeFeedback) (string, error) {
	s.reviews = append(s.reviews, feedback)
	return fmt.Sprintf("%d_judge.md", len(s.reviews)), nil
}

func testDoc() document.State {
	return document.State{
		Content: "# ukraine war\n\ndraft body\n\nSource: https://a.example",
		Topics:  []string{"ukraine war"},
		Version: 1,
		Sources: []string{"https://a.example"},
	}
}

func draftNumbered(call int, doc document.State) document.EditorResult {
	return document.EditorResult{
		Content:       fmt.Sprintf("draft %d", call),
		RevisionNotes: []string{fmt.Sprintf("pass %d", call)},
		Version:       doc.Version,
	}
}

func TestRunApprovesAndAppliesCandidate(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return document.EditorResult{Content: "polished body", Version: doc.Version}, nil
	}}
	var reviewed document.EditorResult
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		reviewed = candidate
		return document.JudgeFeedback{Approved: true}, nil
	}}
	store := &recordingStore{}

	loop := NewLoop(editor, judge, store, 3, discardLogger())
	final, err := loop.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Content != "polished body" {
		t.Errorf("expected approved content applied, got %q", final.Content)
	}
	if final.Version != doc.Version {
		t.Errorf("approval must not bump the version: want %d, got %d", doc.Version, final.Version)
	}
	if diff := cmp.Diff(doc.Topics, final.Topics); diff != "" {
		t.Errorf("topics mismatch (-want +got):\n%s", diff)
	}
	if editor.calls != 1 || judge.calls != 1 {
		t.Errorf("expected exactly one round-trip, got editor=%d judge=%d", editor.calls, judge.calls)
	}
	if reviewed.Content != "polished body" {
		t.Errorf("judge reviewed %q, want the editor candidate", reviewed.Content)
	}
	if len(store.drafts) != 1 || len(store.reviews) != 1 {
		t.Errorf("expected one draft and one review persisted, got %d and %d", len(store.drafts), len(store.reviews))
	}
}

func TestRunTerminatesAtApprovalRound(t *testing.T) {
	doc := testDoc()
	var priors []*document.JudgeFeedback
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		priors = append(priors, prior)
		return draftNumbered(call, doc), nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		if call < 3 {
			return document.JudgeFeedback{
				Recommendations:  []string{fmt.Sprintf("fix %d", call)},
				RevisionRequired: true,
			}, nil
		}
		return document.JudgeFeedback{Approved: true}, nil
	}}
	store := &recordingStore{}

	loop := NewLoop(editor, judge, store, 5, discardLogger())
	final, err := loop.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if final.Content != "draft 3" {
		t.Errorf("expected the approved third draft, got %q", final.Content)
	}
	if editor.calls != 3 || judge.calls != 3 {
		t.Errorf("expected exactly 3 round-trips, got editor=%d judge=%d", editor.calls, judge.calls)
	}

	if len(priors) != 3 {
		t.Fatalf("expected 3 editor invocations, got %d", len(priors))
	}
	if priors[0] != nil {
		t.Error("first editor call should receive no prior feedback")
	}
	for i, want := range []string{"fix 1", "fix 2"} {
		prior := priors[i+1]
		if prior == nil {
			t.Fatalf("editor call %d should receive the previous verdict", i+2)
		}
		if diff := cmp.Diff([]string{want}, prior.Recommendations); diff != "" {
			t.Errorf("editor call %d prior recommendations mismatch (-want +got):\n%s", i+2, diff)
		}
	}
}

func TestRunEnforcesIterationBound(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return draftNumbered(call, doc), nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{
			Recommendations:  []string{fmt.Sprintf("fix %d", call)},
			RevisionRequired: true,
		}, nil
	}}
	store := &recordingStore{}

	loop := NewLoop(editor, judge, store, 3, discardLogger())
	state, err := loop.Run(context.Background(), doc)
	if err == nil {
		t.Fatal("expected an error when the judge never approves")
	}

	var bound *MaxIterationsExceeded
	if !errors.As(err, &bound) {
		t.Fatalf("expected *MaxIterationsExceeded, got %T: %v", err, err)
	}
	if bound.Iterations != 3 {
		t.Errorf("expected the bound hit at 3 iterations, got %d", bound.Iterations)
	}
	if bound.LastResult.Content != "draft 3" {
		t.Errorf("expected the last candidate attached, got %q", bound.LastResult.Content)
	}
	if diff := cmp.Diff([]string{"fix 3"}, bound.LastFeedback.Recommendations); diff != "" {
		t.Errorf("last feedback mismatch (-want +got):\n%s", diff)
	}

	if editor.calls != 3 || judge.calls != 3 {
		t.Errorf("the loop must stop exactly at the bound, got editor=%d judge=%d", editor.calls, judge.calls)
	}
	if diff := cmp.Diff(doc, state); diff != "" {
		t.Errorf("unapproved run must hand back the original document (-want +got):\n%s", diff)
	}
}

func TestRunApprovalOverridesAdvisoryNotes(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return document.EditorResult{Content: "good enough", Version: doc.Version}, nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{
			Approved:        true,
			Recommendations: []string{"consider a closing summary"},
		}, nil
	}}

	loop := NewLoop(editor, judge, &recordingStore{}, 3, discardLogger())
	final, err := loop.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if final.Content != "good enough" {
		t.Errorf("advisory notes must not block an approval, got %q", final.Content)
	}
	if editor.calls != 1 {
		t.Errorf("expected a single round, got %d", editor.calls)
	}
}

func TestRunTreatsUnapprovedVerdictAsRevision(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return draftNumbered(call, doc), nil
	}}
	// First verdict violates the contract: not approved, yet no revision
	// flag. Approval stays the only escape hatch.
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		if call == 1 {
			return document.JudgeFeedback{Approved: false, RevisionRequired: false}, nil
		}
		return document.JudgeFeedback{Approved: true}, nil
	}}

	loop := NewLoop(editor, judge, &recordingStore{}, 3, discardLogger())
	final, err := loop.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if editor.calls != 2 {
		t.Errorf("an unapproved verdict should trigger another round, got %d editor calls", editor.calls)
	}
	if final.Content != "draft 2" {
		t.Errorf("expected the second draft applied, got %q", final.Content)
	}
}

func TestRunEditorFailureLeavesDocumentUntouched(t *testing.T) {
	doc := testDoc()
	sentinel := errors.New("provider unreachable")
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		if call == 2 {
			return document.EditorResult{}, sentinel
		}
		return draftNumbered(call, doc), nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{RevisionRequired: true}, nil
	}}
	store := &recordingStore{}

	loop := NewLoop(editor, judge, store, 3, discardLogger())
	state, err := loop.Run(context.Background(), doc)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected the editor failure surfaced, got %v", err)
	}
	if diff := cmp.Diff(doc, state); diff != "" {
		t.Errorf("failed round must not mutate the document (-want +got):\n%s", diff)
	}
	if len(store.drafts) != 1 || len(store.reviews) != 1 {
		t.Errorf("only the completed round should be persisted, got %d drafts and %d reviews", len(store.drafts), len(store.reviews))
	}
}

func TestRunCancelledCallMutatesNothing(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return draftNumbered(call, doc), nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{Approved: true}, nil
	}}
	store := &recordingStore{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := NewLoop(editor, judge, store, 3, discardLogger())
	state, err := loop.Run(ctx, doc)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if diff := cmp.Diff(doc, state); diff != "" {
		t.Errorf("cancelled run must hand back the original document (-want +got):\n%s", diff)
	}
	if len(store.drafts) != 0 || len(store.reviews) != 0 {
		t.Errorf("cancelled run must persist nothing, got %d drafts and %d reviews", len(store.drafts), len(store.reviews))
	}
}

func TestRunPersistenceFailureRejectsTransition(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return draftNumbered(call, doc), nil
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{Approved: true}, nil
	}}
	store := &recordingStore{draftErr: errors.New("disk full")}

	loop := NewLoop(editor, judge, store, 3, discardLogger())
	state, err := loop.Run(context.Background(), doc)
	if err == nil {
		t.Fatal("expected an error when the draft cannot be persisted")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected the persistence failure named, got %v", err)
	}
	if !strings.Contains(err.Error(), EventCandidateReady) {
		t.Errorf("expected the rejected event named, got %v", err)
	}
	if judge.calls != 0 {
		t.Errorf("judge must not run when the draft transition was rejected, got %d calls", judge.calls)
	}
	if diff := cmp.Diff(doc, state); diff != "" {
		t.Errorf("rejected transition must not mutate the document (-want +got):\n%s", diff)
	}
}

func TestRunPropagatesGenerationError(t *testing.T) {
	doc := testDoc()
	editor := &scriptedEditor{revise: func(call int, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error) {
		return document.EditorResult{}, &llm.GenerationError{
			Schema:   "editor_revision",
			Attempts: 2,
			Err:      errors.New("unexpected end of JSON input"),
		}
	}}
	judge := &scriptedJudge{review: func(call int, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error) {
		return document.JudgeFeedback{Approved: true}, nil
	}}

	loop := NewLoop(editor, judge, &recordingStore{}, 3, discardLogger())
	_, err := loop.Run(context.Background(), doc)

	var genErr *llm.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *llm.GenerationError through the loop, got %T: %v", err, err)
	}
	if genErr.Schema != "editor_revision" {
		t.Errorf("expected schema preserved, got %q", genErr.Schema)
	}
}

func TestMachineStartsInDraftingAndOrdersEvents(t *testing.T) {
	machine := buildMachine().CreateInstance()
	machine.Context().Set(runKey, &run{doc: testDoc(), store: &recordingStore{}})

	if err := machine.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := machine.CurrentState(); got != StateDrafting {
		t.Fatalf("expected initial state %q, got %q", StateDrafting, got)
	}

	// A verdict before any candidate has no transition and must be refused.
	result := machine.HandleEvent(EventVerdict, document.JudgeFeedback{Approved: true})
	if result.Success() {
		t.Error("verdict before a candidate should be rejected")
	}
	if got := machine.CurrentState(); got != StateDrafting {
		t.Errorf("rejected event moved the machine to %q", got)
	}
}

func TestDefaultBoundApplied(t *testing.T) {
	loop := NewLoop(nil, nil, nil, 0, discardLogger())
	if loop.maxRounds != DefaultMaxIterations {
		t.Errorf("expected default bound %d, got %d", DefaultMaxIterations, loop.maxRounds)
	}
}
