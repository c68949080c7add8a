package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/console"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/export"
)

var exportFlags struct {
	out    string
	format string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the latest document to HTML or markdown",
	Long: `Export restores the most recent document snapshot and renders it as a
standalone HTML page or raw markdown. Without --out the file lands in
the output directory, named after the first topic and version.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.out, "out", "o", "", "Output file path")
	f.StringVar(&exportFlags.format, "format", "html", "Output format: html or markdown")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	store, err := document.NewStore(cfg.WorkproductDir, cfg.OutputDir, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	doc, ok, err := store.LatestVersion()
	if err != nil {
		return fmt.Errorf("restore latest document: %w", err)
	}
	if !ok {
		return errors.New("no document to export; run \"docwriter research\" first")
	}

	var path string
	switch exportFlags.format {
	case "html":
		if exportFlags.out == "" {
			path, err = export.WriteHTML(doc, cfg.OutputDir)
			break
		}
		var page []byte
		if page, err = export.HTML(doc); err == nil {
			path = exportFlags.out
			err = os.WriteFile(path, page, 0o644)
		}
	case "markdown", "md":
		path = exportFlags.out
		if path == "" {
			if err = os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				break
			}
			path = filepath.Join(cfg.OutputDir, exportBaseName(doc, "md"))
		}
		err = os.WriteFile(path, []byte(doc.Content), 0o644)
	default:
		return fmt.Errorf("unknown format %q (supported: html, markdown)", exportFlags.format)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", exportFlags.format, err)
	}

	console.NewReporter(cmd.OutOrStdout()).Saved("export", path)
	return nil
}

func exportBaseName(doc document.State, ext string) string {
	slug := "none"
	if len(doc.Topics) > 0 {
		slug = document.Slugify(doc.Topics[0])
	}
	return fmt.Sprintf("%s_v%d.%s", slug, doc.Version, ext)
}
