package main

import (
	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Start a new document from one round of web research",
	Long: `Research runs a single ingestion round: search the topic, clean and
aggregate the results, and save version 1 of a new document. Follow up
with "docwriter expand" to add topics or "docwriter finalize" to refine.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.ValidateResearch(); err != nil {
		return err
	}
	p, err := buildPipeline(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer p.Close()

	out := console.NewReporter(cmd.OutOrStdout())
	out.Banner("research", args[0])

	doc, err := p.writer.Research(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out.Document(doc)
	out.Saved("workproducts", p.store.WorkDir())
	return nil
}
