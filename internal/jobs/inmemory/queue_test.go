package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/jobs"
	"github.com/seanyasno/finance/internal/transactions"
)

func TestStoreSaveAndGet(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ScrapeRunJob{JobID: "job-1", Status: jobs.JobStatusPending, CreatedAt: time.Now()}
	if err := store.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}

	// The stored copy must not alias the caller's struct.
	job.Status = jobs.JobStatusFailed
	got, _ = store.GetJob(ctx, "job-1")
	if got.Status != jobs.JobStatusPending {
		t.Error("store returned an aliased job")
	}

	if _, err := store.GetJob(ctx, "missing"); err == nil {
		t.Error("GetJob(missing) should fail")
	}
}

func TestStoreListJobs_FilterAndOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now()
	store.SaveJob(ctx, &jobs.ScrapeRunJob{JobID: "a", Status: jobs.JobStatusCompleted, CreatedAt: base})
	store.SaveJob(ctx, &jobs.ScrapeRunJob{JobID: "b", Status: jobs.JobStatusFailed, CreatedAt: base.Add(time.Second)})
	store.SaveJob(ctx, &jobs.ScrapeRunJob{JobID: "c", Status: jobs.JobStatusCompleted, CreatedAt: base.Add(2 * time.Second)})

	completed, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(completed) != 2 {
		t.Fatalf("got %d jobs, want 2", len(completed))
	}
	if completed[0].JobID != "c" {
		t.Errorf("first job = %s, want newest first", completed[0].JobID)
	}

	limited, _ := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("got %d jobs with limit 1, want 1", len(limited))
	}
}

func TestQueueProcessesScrapeRun(t *testing.T) {
	store := NewStore()
	queue := NewQueue(4, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processed := make(chan string, 1)
	handler := func(ctx context.Context, job *jobs.ScrapeRunJob) error {
		job.Report = &transactions.Report{
			Results: []transactions.CompanyResult{{Company: company.Max, Accounts: 1, Transactions: 2}},
		}
		processed <- job.JobID
		return nil
	}

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ScrapeRunJob{Companies: company.All()}
	if err := queue.PublishScrapeRun(ctx, job); err != nil {
		t.Fatalf("PublishScrapeRun failed: %v", err)
	}

	select {
	case <-processed:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not processed")
	}

	// Give the queue a moment to persist the final state.
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusCompleted {
			if got.Report == nil || len(got.Report.Results) != 1 {
				t.Errorf("report missing from completed job: %+v", got)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never reached completed state: %+v (err %v)", got, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueueFailedRun(t *testing.T) {
	store := NewStore()
	queue := NewQueue(1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(ctx context.Context, job *jobs.ScrapeRunJob) error {
		return fmt.Errorf("browser pool exhausted")
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.ScrapeRunJob{}
	if err := queue.PublishScrapeRun(ctx, job); err != nil {
		t.Fatalf("PublishScrapeRun failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := store.GetJob(ctx, job.JobID)
		if err == nil && got.Status == jobs.JobStatusFailed {
			if got.Error == "" {
				t.Error("failed job is missing its error message")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never reached failed state: %+v (err %v)", got, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// flakyStore accepts the initial save and fails every status transition.
type flakyStore struct {
	mu    sync.Mutex
	saves int
}

func (s *flakyStore) SaveJob(ctx context.Context, job *jobs.ScrapeRunJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saves > 1 {
		return fmt.Errorf("store unavailable")
	}
	return nil
}

func (s *flakyStore) GetJob(ctx context.Context, jobID string) (*jobs.ScrapeRunJob, error) {
	return nil, fmt.Errorf("store unavailable")
}

func (s *flakyStore) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ScrapeRunJob, error) {
	return nil, fmt.Errorf("store unavailable")
}

func TestQueueRunsDespiteStoreFailures(t *testing.T) {
	store := &flakyStore{}
	queue := NewQueue(1, store)
	defer queue.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processed := make(chan struct{}, 1)
	handler := func(ctx context.Context, job *jobs.ScrapeRunJob) error {
		processed <- struct{}{}
		return nil
	}
	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := queue.PublishScrapeRun(ctx, &jobs.ScrapeRunJob{}); err != nil {
		t.Fatalf("PublishScrapeRun failed: %v", err)
	}

	// The running/completed transitions fail to persist; the run itself
	// must still execute.
	select {
	case <-processed:
	case <-time.After(5 * time.Second):
		t.Fatal("job was not processed when the store failed transitions")
	}

	store.mu.Lock()
	saves := store.saves
	store.mu.Unlock()
	if saves < 2 {
		t.Errorf("saves = %d, want the transition saves to be attempted", saves)
	}
}

func TestQueueClosedRejectsPublish(t *testing.T) {
	queue := NewQueue(1, NewStore())
	queue.Close()

	err := queue.PublishScrapeRun(context.Background(), &jobs.ScrapeRunJob{})
	if err == nil {
		t.Error("expected publish on closed queue to fail")
	}
}
