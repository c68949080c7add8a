// Package api exposes the document production pipeline over HTTP: submit a
// topics job, poll its status, browse work-product snapshots, and read LLM
// latency stats.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/refine"
)

// Pipeline is the production surface a job walks through. *writer.Writer
// satisfies it.
type Pipeline interface {
	Research(ctx context.Context, topic string) (document.State, error)
	Expand(ctx context.Context, doc document.State, topic string) (document.State, error)
	Finalize(ctx context.Context, doc document.State) (document.State, string, error)
}

// Orchestrator owns the job queue and its workers. One worker means one
// document in production at a time; the queue only buffers.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	pipeline Pipeline
	log      *slog.Logger
	cfg      config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, pipeline Pipeline, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		pipeline: pipeline,
		log:      log,
		cfg:      cfg,
	}
}

// Start launches the worker goroutines and the job-store janitor.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					o.process(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop shuts the pipeline down: cancel in-flight work, close intake, wait.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// NewJob registers a queued job for the given topics.
func (o *Orchestrator) NewJob(topics []string) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Topics:    append([]string(nil), topics...),
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Submit queues a job. A full queue fails the job immediately rather than
// blocking the request.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID, or nil.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// process walks one job through research, expansion, and refinement,
// mirroring the CLI pipeline. Statuses track the stage for pollers.
func (o *Orchestrator) process(ctx context.Context, job *Job) {
	log := o.log.With("job_id", job.ID, "topics", len(job.Topics))
	log.Info("job started")

	job.SetStatus(StatusResearching, "research: "+job.Topics[0])
	doc, err := o.pipeline.Research(ctx, job.Topics[0])
	if err != nil {
		log.Error("research failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "research")
		return
	}
	job.SetVersion(doc.Version)

	for _, topic := range job.Topics[1:] {
		job.SetStatus(StatusExpanding, "expand: "+topic)
		doc, err = o.pipeline.Expand(ctx, doc, topic)
		if err != nil {
			log.Error("expansion failed", "topic", topic, "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "expand")
			return
		}
		job.SetVersion(doc.Version)
	}

	job.SetStatus(StatusRefining, "refine")
	final, path, err := o.pipeline.Finalize(ctx, doc)
	if err != nil {
		var bound *refine.MaxIterationsExceeded
		if errors.As(err, &bound) {
			log.Warn("refinement bound reached", "iterations", bound.Iterations)
			job.SetRecommendations(bound.LastFeedback.Recommendations)
			job.AddError(err.Error())
			job.SetStatus(StatusMaxIterations, "refine")
			return
		}
		log.Error("refinement failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "refine")
		return
	}

	job.SetResult(final.Version, path)
	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed", "final_path", path, "version", final.Version)
}
