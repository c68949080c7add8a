package refine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anggasct/fluo"

	"github.com/Kjdragan/document-writer/internal/document"
)

// DefaultMaxIterations bounds the loop when the caller configures no bound.
const DefaultMaxIterations = 3

// Reviser produces a candidate revision of a document, guided by the prior
// verdict when one exists. agent.Editor satisfies it; tests script their own.
type Reviser interface {
	Revise(ctx context.Context, doc document.State, prior *document.JudgeFeedback) (document.EditorResult, error)
}

// Reviewer judges a candidate against the document it was derived from.
// agent.Judge satisfies it.
type Reviewer interface {
	Review(ctx context.Context, original document.State, candidate document.EditorResult) (document.JudgeFeedback, error)
}

// Recorder persists refinement audit records. *document.Store satisfies it.
type Recorder interface {
	SaveEditorDraft(state document.State, result document.EditorResult) (string, error)
	SaveJudgeReview(state document.State, feedback document.JudgeFeedback) (string, error)
}

// Loop alternates editor and judge steps over one document until the judge
// approves a candidate or the iteration bound runs out. A Loop is reusable;
// each Run gets a fresh machine instance.
type Loop struct {
	editor     Reviser
	judge      Reviewer
	store      Recorder
	maxRounds  int
	log        *slog.Logger
	definition fluo.MachineDefinition
}

// NewLoop builds a refinement loop. maxIterations <= 0 falls back to
// DefaultMaxIterations.
func NewLoop(editor Reviser, judge Reviewer, store Recorder, maxIterations int, log *slog.Logger) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		editor:     editor,
		judge:      judge,
		store:      store,
		maxRounds:  maxIterations,
		log:        log,
		definition: buildMachine(),
	}
}

// Run refines doc until approval or the bound. Editor and judge calls happen
// here with the caller's context; a failed or cancelled call fires no machine
// event, so the document the caller holds never sees a partial mutation. When
// the bound is hit the error is a *MaxIterationsExceeded carrying the last
// candidate and verdict.
func (l *Loop) Run(ctx context.Context, doc document.State) (document.State, error) {
	machine := l.definition.CreateInstance()
	machine.AddObserver(&transitionLogger{log: l.log})

	r := &run{doc: doc, store: l.store}
	machine.Context().Set(runKey, r)

	if err := machine.Start(); err != nil {
		return doc, fmt.Errorf("start refinement machine: %w", err)
	}

	var prior *document.JudgeFeedback
	for {
		round := r.iteration + 1

		candidate, err := l.editor.Revise(ctx, doc, prior)
		if err != nil {
			return doc, fmt.Errorf("editor step (round %d): %w", round, err)
		}
		if err := l.fire(machine, EventCandidateReady, candidate); err != nil {
			return doc, err
		}

		feedback, err := l.judge.Review(ctx, doc, candidate)
		if err != nil {
			return doc, fmt.Errorf("judge step (round %d): %w", round, err)
		}
		if err := l.fire(machine, EventVerdict, feedback); err != nil {
			return doc, err
		}

		if machine.CurrentState() == StateApproved {
			if err := l.fire(machine, EventFinalize, nil); err != nil {
				return doc, err
			}
			l.log.Info("document approved", "rounds", round, "version", r.final.Version)
			return r.final, nil
		}

		l.log.Info("revision requested", "round", round, "recommendations", len(r.feedback.Recommendations))
		if round >= l.maxRounds {
			l.log.Warn("refinement bound reached without approval", "rounds", round)
			return doc, &MaxIterationsExceeded{
				Iterations:   round,
				LastResult:   r.candidate,
				LastFeedback: r.feedback,
			}
		}

		if err := l.fire(machine, EventRevise, nil); err != nil {
			return doc, err
		}
		next := r.feedback
		prior = &next
	}
}

// fire dispatches one event synchronously and translates a rejection into an
// error. Rejected events leave the machine (and the run record) unchanged.
func (l *Loop) fire(machine fluo.Machine, event string, payload any) error {
	result := machine.HandleEvent(event, payload)
	if result.Success() {
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("refinement event %q rejected: %w", event, result.Error)
	}
	return fmt.Errorf("refinement event %q rejected in state %q: %s", event, result.CurrentState, result.RejectionReason)
}
