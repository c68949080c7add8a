package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/agent"
	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
	"github.com/Kjdragan/document-writer/internal/refine"
	"github.com/Kjdragan/document-writer/internal/search"
	"github.com/Kjdragan/document-writer/internal/writer"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docwriter",
	Short: "Research-backed document writing with iterative refinement",
	Long: `Docwriter gathers web research on your topics into a versioned markdown
document, then refines it through an editor/judge loop until the draft
is approved or the iteration bound is reached.

Configuration comes from the environment (OPENAI_API_KEY, TAVILY_API_KEY,
WORKPRODUCT_DIR, ...). Progress logs go to stderr; results to stdout.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(finalizeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the handler the commands share. Logs go to stderr so the
// styled output on stdout stays clean.
func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// pipeline bundles the collaborators a document-producing command wires up.
type pipeline struct {
	writer *writer.Writer
	store  *document.Store
	llm    *llm.Client
	search *search.Client
}

func (p *pipeline) Close() {
	p.search.Close()
	p.llm.Close()
}

func buildPipeline(cfg config.Config, log *slog.Logger) (*pipeline, error) {
	store, err := document.NewStore(cfg.WorkproductDir, cfg.OutputDir, log)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	client := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMTimeout, cfg.LLMMaxRetries, log)
	editor := agent.NewEditor(client, cfg.EditorModel, log)
	judge := agent.NewJudge(client, cfg.JudgeModel, log)
	loop := refine.NewLoop(editor, judge, store, cfg.MaxIterations, log)

	searcher := search.NewClient(cfg.TavilyBaseURL, cfg.TavilyAPIKey)
	searcher.Depth = cfg.SearchDepth
	searcher.MaxResults = cfg.SearchMaxResults
	searcher.IncludeRawContent = cfg.IncludeRawContent

	return &pipeline{
		writer: writer.New(cfg, searcher, store, loop, log),
		store:  store,
		llm:    client,
		search: searcher,
	}, nil
}

// printLLMStats reports per-label latency aggregates once a run made calls.
func printLLMStats(out *console.Reporter, client *llm.Client) {
	all := client.Stats.SnapshotAll()
	labels := make([]string, 0, len(all))
	for label := range all {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		s := all[label]
		out.Detail("llm %s: %d calls, avg %.0f ms, p95 %.0f ms", label, s.Count, s.AvgMs, s.P95Ms)
	}
}
