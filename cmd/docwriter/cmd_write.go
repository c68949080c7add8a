package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/refine"
)

var writeFlags struct {
	interactive bool
}

var writeCmd = &cobra.Command{
	Use:   "write <topic> [topic ...]",
	Short: "Research topics and refine the result into a final document",
	Long: `Write runs the full pipeline: research the first topic into a new document,
expand it with each further topic, then refine the draft through the
editor/judge loop and save the approved version.

With --interactive the command pauses after each ingestion round and asks
for another topic; an empty answer (or "done") moves on to refinement.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().BoolVarP(&writeFlags.interactive, "interactive", "i", false, "Prompt for more topics between ingestion rounds")
}

func runWrite(cmd *cobra.Command, args []string) error {
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
	ctx := cmd.Context()

	if !writeFlags.interactive {
		out.Banner("write", strings.Join(args, ", "))
		final, path, err := p.writer.Run(ctx, args)
		outcome := reportOutcome(out, final, path, err)
		printLLMStats(out, p.llm)
		return outcome
	}

	out.Banner("research", args[0])
	doc, err := p.writer.Research(ctx, args[0])
	if err != nil {
		return err
	}
	out.Document(doc)

	queued := args[1:]
	stdin := bufio.NewReader(cmd.InOrStdin())
	for {
		topic, more := nextTopic(out, stdin, &queued)
		if !more {
			break
		}
		out.Banner("expand", topic)
		doc, err = p.writer.Expand(ctx, doc, topic)
		if err != nil {
			return err
		}
		out.Document(doc)
	}

	out.Banner("refine", fmt.Sprintf("version %d", doc.Version))
	final, path, err := p.writer.Finalize(ctx, doc)
	outcome := reportOutcome(out, final, path, err)
	printLLMStats(out, p.llm)
	return outcome
}

// nextTopic drains queued positional topics first, then asks on stdin. A blank
// line, "done", or EOF ends the expansion phase.
func nextTopic(out *console.Reporter, stdin *bufio.Reader, queued *[]string) (string, bool) {
	if len(*queued) > 0 {
		topic := (*queued)[0]
		*queued = (*queued)[1:]
		return topic, true
	}
	out.Prompt("expand with another topic, or press enter to refine:")
	line, err := stdin.ReadString('\n')
	topic := strings.TrimSpace(line)
	if err != nil && topic == "" {
		return "", false
	}
	if topic == "" || strings.EqualFold(topic, "done") {
		return "", false
	}
	return topic, true
}

// reportOutcome prints the refinement result and surfaces the judge's last
// recommendations when the iteration bound was hit.
func reportOutcome(out *console.Reporter, final document.State, path string, err error) error {
	if err == nil {
		out.Approved(final)
		out.Saved("final", path)
		return nil
	}
	var bound *refine.MaxIterationsExceeded
	if errors.As(err, &bound) {
		out.BoundReached(bound.Iterations, bound.LastFeedback.Recommendations)
	}
	return err
}
