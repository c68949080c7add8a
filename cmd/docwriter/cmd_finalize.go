package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Refine the latest document and save the approved version",
	Long: `Finalize restores the most recent document snapshot and runs it through
the editor/judge refinement loop. On approval the result is written to
the output directory; if the iteration bound is hit the judge's last
recommendations are printed and the command exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runFinalize,
}

func runFinalize(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	p, err := buildPipeline(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer p.Close()

	doc, ok, err := p.store.LatestVersion()
	if err != nil {
		return fmt.Errorf("restore latest document: %w", err)
	}
	if !ok {
		return errors.New("no document to finalize; run \"docwriter research\" first")
	}

	out := console.NewReporter(cmd.OutOrStdout())
	out.Banner("refine", fmt.Sprintf("version %d", doc.Version))

	final, path, err := p.writer.Finalize(cmd.Context(), doc)
	outcome := reportOutcome(out, final, path, err)
	printLLMStats(out, p.llm)
	return outcome
}
