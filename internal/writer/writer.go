// Package writer drives document production end to end: research a topic into
// an initial document, expand it with further topics, then hand it to the
// refinement loop and write the approved result.
package writer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/notes"
	"github.com/Kjdragan/document-writer/internal/research"
)

// Searcher is the search collaborator boundary. search.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) (map[string]any, error)
}

// Refiner runs the editor/judge loop over a document. refine.Loop satisfies it.
type Refiner interface {
	Run(ctx context.Context, doc document.State) (document.State, error)
}

// Writer owns the decision between ingesting another topic and refining. It
// keeps no document state of its own; the caller holds the latest State.
type Writer struct {
	search Searcher
	store  *document.Store
	loop   Refiner
	fetch  *research.Fetcher
	log    *slog.Logger

	notesDir         string
	maxPassageTokens int
	maxResultTokens  int
}

func New(cfg config.Config, search Searcher, store *document.Store, loop Refiner, log *slog.Logger) *Writer {
	w := &Writer{
		search:           search,
		store:            store,
		loop:             loop,
		log:              log,
		notesDir:         cfg.NotesDir,
		maxPassageTokens: cfg.MaxPassageTokens,
		maxResultTokens:  cfg.MaxResultTokens,
	}
	if cfg.FetchMissingRaw {
		w.fetch = research.NewFetcher(cfg.FetchTimeout, cfg.FetchMaxBytes, log)
	}
	return w
}

// Research runs the first ingestion round: search, clean, aggregate, create
// the version-1 document, and snapshot it. Local reference notes join this
// round only.
func (w *Writer) Research(ctx context.Context, topic string) (document.State, error) {
	results, err := w.gather(ctx, topic, true)
	if err != nil {
		return document.State{}, err
	}
	content, _ := research.Aggregate(topic, results, w.maxResultTokens)
	if content == "" {
		return document.State{}, fmt.Errorf("no usable research results for topic %q", topic)
	}

	doc, err := w.store.CreateNew(content, topic)
	if err != nil {
		return document.State{}, err
	}
	if _, err := w.store.SaveVersion(doc, document.StageInitialResearch); err != nil {
		return document.State{}, err
	}
	w.log.Info("research round complete", "topic", topic, "results", len(results), "version", doc.Version)
	return doc, nil
}

// Expand ingests one more topic onto an existing document, bumping its
// version. Notes are not re-merged; they belong to the first round.
func (w *Writer) Expand(ctx context.Context, doc document.State, topic string) (document.State, error) {
	results, err := w.gather(ctx, topic, false)
	if err != nil {
		return doc, err
	}
	content, _ := research.Aggregate(topic, results, w.maxResultTokens)
	if content == "" {
		return doc, fmt.Errorf("no usable research results for topic %q", topic)
	}

	next, err := w.store.AppendContent(doc, content, topic)
	if err != nil {
		return doc, err
	}
	if _, err := w.store.SaveVersion(next, document.StageExpansion); err != nil {
		return doc, err
	}
	w.log.Info("topic ingested", "topic", topic, "results", len(results), "version", next.Version)
	return next, nil
}

// Finalize refines the document until approval and writes the final output.
// Refinement errors (including *refine.MaxIterationsExceeded) pass through
// with the original document, so the caller can inspect work products.
func (w *Writer) Finalize(ctx context.Context, doc document.State) (document.State, string, error) {
	final, err := w.loop.Run(ctx, doc)
	if err != nil {
		return doc, "", err
	}
	path, err := w.store.SaveFinal(final)
	if err != nil {
		return final, "", err
	}
	return final, path, nil
}

// Run is the batch controller: the first topic creates the document, the rest
// expand it in caller order, then the document is finalized.
func (w *Writer) Run(ctx context.Context, topics []string) (document.State, string, error) {
	if len(topics) == 0 {
		return document.State{}, "", errors.New("at least one topic is required")
	}

	doc, err := w.Research(ctx, topics[0])
	if err != nil {
		return document.State{}, "", err
	}
	for _, topic := range topics[1:] {
		doc, err = w.Expand(ctx, doc, topic)
		if err != nil {
			return doc, "", err
		}
	}
	return w.Finalize(ctx, doc)
}

// gather runs one search round through cleaning and optional enrichment.
// A CleaningError passes through untouched; per-result problems were already
// dropped inside Clean.
func (w *Writer) gather(ctx context.Context, topic string, includeNotes bool) ([]research.SearchResult, error) {
	raw, err := w.search.Search(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", topic, err)
	}
	results, err := research.Clean(raw)
	if err != nil {
		return nil, err
	}
	if w.fetch != nil {
		results = w.fetch.Enrich(ctx, results)
	}
	if includeNotes && w.notesDir != "" {
		loaded, err := notes.LoadDir(w.notesDir, w.log)
		if err != nil {
			w.log.Warn("local notes unavailable", "dir", w.notesDir, "error", err)
		} else if len(loaded) > 0 {
			results = append(research.FromNotes(loaded, w.maxPassageTokens), results...)
		}
	}
	return results, nil
}
