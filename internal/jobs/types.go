package jobs

import (
	"context"
	"time"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/transactions"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeScrapeRun represents one full fetch-and-persist workflow run.
	JobTypeScrapeRun JobType = "scrape_run"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// ScrapeRunJob represents one asynchronous workflow run across the configured
// companies. Scrape runs are idempotent end to end (persistence is upsert
// based), so re-submitting a failed run is always safe.
type ScrapeRunJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Companies lists the institutions this run covers.
	Companies []company.Type `json:"companies"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Report carries the per-company outcomes once the run finished.
	Report *transactions.Report `json:"report,omitempty"`

	// Error contains error details if the job failed outright.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ScrapeRunJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ScrapeRunJob) GetType() JobType {
	return JobTypeScrapeRun
}

// GetStatus implements the Job interface.
func (j *ScrapeRunJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishScrapeRun publishes a workflow run job.
	PublishScrapeRun(ctx context.Context, job *ScrapeRunJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes one scrape run. It fills in the job's report and
// returns an error only when the run failed outright.
type JobHandler func(ctx context.Context, job *ScrapeRunJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ScrapeRunJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ScrapeRunJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ScrapeRunJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
