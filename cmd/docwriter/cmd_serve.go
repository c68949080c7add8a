package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kjdragan/document-writer/internal/api"
	"github.com/Kjdragan/document-writer/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with queued background document jobs",
	Long: `Serve exposes the pipeline over HTTP: POST /api/write queues a document
job, workers run research, expansion, and refinement in the background,
and GET /api/write/{id}/status reports progress. All /api routes require
the DOCWRITER_API_KEY bearer token; /health is public.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	log := newLogger(cfg)

	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	orch := api.NewOrchestrator(cfg, p.writer, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, p.store, p.llm, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// HTTP intake stops before the queue closes so no submission can
		// hit a closed channel.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting docwriter api", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
