package document

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Stage names the pipeline step a snapshot was taken at. Stage appears in the
// snapshot filename so the work-product log reads as a session history.
type Stage string

const (
	StageInitialResearch Stage = "initial_research"
	StageExpansion       Stage = "expansion"
	StageEditorDraft     Stage = "editor_draft"
	StageJudgeReview     Stage = "judge_review"
	StageFinal           Stage = "final"
)

// Store owns the versioned document lifecycle: creation, append-only growth,
// and immutable snapshot persistence. Work products accumulate in workDir as a
// sequence-numbered log; the approved document is written once to outputDir.
type Store struct {
	workDir   string
	outputDir string
	log       *slog.Logger

	mu      sync.Mutex
	nextSeq int

	now func() time.Time
}

// NewStore creates both directories if needed and resumes the snapshot
// sequence from whatever is already on disk, so a restarted session never
// reuses a sequence number.
func NewStore(workDir, outputDir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create workproduct dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	s := &Store{
		workDir:   workDir,
		outputDir: outputDir,
		log:       log,
		now:       time.Now,
	}

	maxSeq, err := s.scanMaxSeq()
	if err != nil {
		return nil, err
	}
	s.nextSeq = maxSeq + 1
	return s, nil
}

func (s *Store) scanMaxSeq() (int, error) {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		return 0, fmt.Errorf("scan workproduct dir: %w", err)
	}
	maxSeq := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if seq, ok := snapshotSeq(entry.Name()); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}

// CreateNew builds the version-1 document from the first ingestion round.
// Sources are recovered from the attribution lines the aggregator embeds.
func (s *Store) CreateNew(content, topic string) (State, error) {
	if strings.TrimSpace(content) == "" {
		return State{}, &ValidationError{Op: "create document", Reason: "content is empty"}
	}
	now := s.now().Format(time.RFC3339)
	return State{
		Content: content,
		Topics:  []string{topic},
		Version: 1,
		Metadata: map[string]string{
			"created_at":    now,
			"last_modified": now,
		},
		Sources: parseSources(content),
	}, nil
}

// AppendContent grows the document by one ingested topic, returning a new
// State. The same topic may be appended more than once; sources only ever
// gain entries.
func (s *Store) AppendContent(current State, newContent, topic string) (State, error) {
	if current.Version == 0 {
		return State{}, &ValidationError{Op: "append content", Reason: "no base document to append to"}
	}
	if strings.TrimSpace(newContent) == "" {
		return State{}, &ValidationError{Op: "append content", Reason: "content is empty"}
	}

	next := current.clone()
	next.Content = current.Content + "\n\n" + newContent
	next.Topics = append(next.Topics, topic)
	next.Version = current.Version + 1
	next.Sources = unionSources(next.Sources, parseSources(newContent))
	if next.Metadata == nil {
		next.Metadata = make(map[string]string, 1)
	}
	next.Metadata["last_modified"] = s.now().Format(time.RFC3339)
	return next, nil
}

// SaveVersion persists a document-bearing work-product snapshot. The filename
// carries the stage and the most recently ingested topic.
func (s *Store) SaveVersion(state State, stage Stage) (string, error) {
	slug := "none"
	if len(state.Topics) > 0 {
		slug = Slugify(state.Topics[len(state.Topics)-1])
	}
	return s.writeSnapshot(stage, slug, s.frontMatterFor(state), state.Content)
}

// SaveEditorDraft persists a candidate revision as an audit record in the
// work-product log. The candidate never becomes canonical content here.
func (s *Store) SaveEditorDraft(state State, result EditorResult) (string, error) {
	var body strings.Builder
	fmt.Fprintf(&body, "## Editor draft (from version %d)\n\n", result.Version)
	body.WriteString(result.Content)
	body.WriteString("\n\n### Revision notes\n\n")
	if len(result.RevisionNotes) == 0 {
		body.WriteString("- (none provided)\n")
	}
	for _, note := range result.RevisionNotes {
		fmt.Fprintf(&body, "- %s\n", note)
	}
	return s.writeSnapshot(StageEditorDraft, "none", s.frontMatterFor(state), body.String())
}

// SaveJudgeReview persists the judge's verdict as an audit record.
func (s *Store) SaveJudgeReview(state State, feedback JudgeFeedback) (string, error) {
	var body strings.Builder
	body.WriteString("## Judge review\n\n")
	if feedback.Approved {
		body.WriteString("Verdict: approved\n")
	} else {
		body.WriteString("Verdict: revision requested\n")
	}
	body.WriteString("\n### Recommendations\n\n")
	if len(feedback.Recommendations) == 0 {
		body.WriteString("- (none)\n")
	}
	for _, rec := range feedback.Recommendations {
		fmt.Fprintf(&body, "- %s\n", rec)
	}
	return s.writeSnapshot(StageJudgeReview, "none", s.frontMatterFor(state), body.String())
}

// SaveFinal writes the approved document to the output directory, outside the
// work-product log. Called once per session.
func (s *Store) SaveFinal(state State) (string, error) {
	slug := "none"
	if len(state.Topics) > 0 {
		slug = Slugify(state.Topics[0])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fm := s.frontMatterFor(state)
	text, err := renderSnapshot(fm, state.Content)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("final_%s_%s.md", slug, s.now().Format("20060102_150405"))
	path := filepath.Join(s.outputDir, name)
	if err := writeExclusive(path, text); err != nil {
		return "", err
	}
	s.log.Info("saved final document", "path", path, "version", state.Version, "topics", len(state.Topics))
	return path, nil
}

// LatestVersion restores the highest-sequence document snapshot, allowing a
// later invocation to pick up where a previous session stopped. Editor and
// judge audit records are skipped; they are not canonical documents.
func (s *Store) LatestVersion() (State, bool, error) {
	entries, err := os.ReadDir(s.workDir)
	if err != nil {
		return State{}, false, fmt.Errorf("scan workproduct dir: %w", err)
	}

	bestSeq := -1
	bestName := ""
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		seq, ok := snapshotSeq(name)
		if !ok {
			continue
		}
		stage, ok := snapshotStage(name)
		if !ok || (stage != StageInitialResearch && stage != StageExpansion) {
			continue
		}
		if seq > bestSeq {
			bestSeq = seq
			bestName = name
		}
	}
	if bestSeq < 0 {
		return State{}, false, nil
	}

	data, err := os.ReadFile(filepath.Join(s.workDir, bestName))
	if err != nil {
		return State{}, false, fmt.Errorf("read snapshot %s: %w", bestName, err)
	}
	state, err := parseSnapshot(data)
	if err != nil {
		return State{}, false, fmt.Errorf("parse snapshot %s: %w", bestName, err)
	}
	return state, true, nil
}

// WorkDir returns the work-product directory path.
func (s *Store) WorkDir() string { return s.workDir }

// OutputDir returns the final-output directory path.
func (s *Store) OutputDir() string { return s.outputDir }

func (s *Store) frontMatterFor(state State) frontMatter {
	lastModified := state.Metadata["last_modified"]
	if lastModified == "" {
		lastModified = s.now().Format(time.RFC3339)
	}
	return frontMatter{
		Version:      state.Version,
		Topics:       state.Topics,
		Sources:      state.Sources,
		LastModified: lastModified,
	}
}

func (s *Store) writeSnapshot(stage Stage, slug string, fm frontMatter, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := renderSnapshot(fm, body)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%02d_%s_%s_%s.md", s.nextSeq, stage, slug, s.now().Format("20060102_150405"))
	path := filepath.Join(s.workDir, name)
	if err := writeExclusive(path, text); err != nil {
		return "", err
	}
	s.nextSeq++

	s.log.Info("saved snapshot", "stage", string(stage), "path", path, "version", fm.Version)
	return path, nil
}

// writeExclusive refuses to overwrite: the snapshot log is append-only.
func writeExclusive(path, text string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	_, err = f.WriteString(text)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}
