package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
	"github.com/Kjdragan/document-writer/internal/document"
)

var statusFlags struct {
	stats bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest document version and snapshot inventory",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.stats, "stats", false, "Include LLM latency aggregates (in-process samples only)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	store, err := document.NewStore(cfg.WorkproductDir, cfg.OutputDir, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	out := console.NewReporter(cmd.OutOrStdout())

	doc, ok, err := store.LatestVersion()
	if err != nil {
		return fmt.Errorf("restore latest document: %w", err)
	}
	if !ok {
		out.Detail("no document yet; run \"docwriter research <topic>\" to start one")
		return nil
	}

	out.Banner("status", strings.Join(doc.Topics, ", "))
	out.Document(doc)

	snapshots, err := listFiles(store.WorkDir())
	if err != nil {
		return fmt.Errorf("read workproduct dir: %w", err)
	}
	out.Detail("workproducts: %d snapshots in %s", len(snapshots), store.WorkDir())
	for _, name := range snapshots {
		out.Detail("  %s", name)
	}

	finals, err := listFiles(store.OutputDir())
	if err != nil {
		return fmt.Errorf("read output dir: %w", err)
	}
	out.Detail("final documents: %d in %s", len(finals), store.OutputDir())
	for _, name := range finals {
		out.Detail("  %s", name)
	}

	if statusFlags.stats {
		out.Detail("models: editor=%s judge=%s", cfg.EditorModel, cfg.JudgeModel)
		out.Detail("llm samples: none recorded in this process; serve mode exposes /api/stats/llm")
	}
	return nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
