package api

import (
	"sync"
	"time"
)

// JobStatus tracks where a document production job is in its lifecycle.
type JobStatus string

const (
	StatusQueued        JobStatus = "queued"
	StatusResearching   JobStatus = "researching"
	StatusExpanding     JobStatus = "expanding"
	StatusRefining      JobStatus = "refining"
	StatusCompleted     JobStatus = "completed"
	StatusFailed        JobStatus = "failed"
	StatusMaxIterations JobStatus = "max_iterations"
)

// Job tracks one queued document production request. Handlers read it only
// through Snapshot; the worker mutates it through the setters.
type Job struct {
	mu sync.Mutex

	ID     string
	Topics []string

	Status JobStatus
	Phase  string

	Version         int
	FinalPath       string
	Recommendations []string
	errors          []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetStatus updates status and phase atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetVersion records the latest document version the job has produced.
func (j *Job) SetVersion(version int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Version = version
	j.UpdatedAt = time.Now()
}

// SetResult records the final output of a completed job.
func (j *Job) SetResult(version int, finalPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Version = version
	j.FinalPath = finalPath
	j.UpdatedAt = time.Now()
}

// SetRecommendations keeps the judge's last advice when refinement ends
// without approval.
func (j *Job) SetRecommendations(recs []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Recommendations = append([]string(nil), recs...)
	j.UpdatedAt = time.Now()
}

// AddError records a failure message.
func (j *Job) AddError(msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, msg)
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID              string    `json:"job_id"`
	Topics          []string  `json:"topics"`
	Status          JobStatus `json:"status"`
	Phase           string    `json:"phase"`
	Version         int       `json:"version"`
	FinalPath       string    `json:"final_path,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	Errors          []string  `json:"errors"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:              j.ID,
		Topics:          append([]string(nil), j.Topics...),
		Status:          j.Status,
		Phase:           j.Phase,
		Version:         j.Version,
		FinalPath:       j.FinalPath,
		Recommendations: append([]string(nil), j.Recommendations...),
		Errors:          append([]string(nil), errs...),
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes jobs that have not been touched within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
