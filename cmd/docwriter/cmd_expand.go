package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
)

var expandCmd = &cobra.Command{
	Use:   "expand <topic>",
	Short: "Add one research round to the latest document",
	Long: `Expand restores the most recent document snapshot, researches the given
topic, and appends the aggregated results as a new version.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.ValidateResearch(); err != nil {
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
		return errors.New("no document to expand; run \"docwriter research\" first")
	}

	out := console.NewReporter(cmd.OutOrStdout())
	out.Banner("expand", args[0])

	doc, err = p.writer.Expand(cmd.Context(), doc, args[0])
	if err != nil {
		return err
	}
	out.Document(doc)
	return nil
}
