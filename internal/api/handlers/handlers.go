package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/seanyasno/finance/internal/api/middleware"
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
	"github.com/seanyasno/finance/internal/jobs"
	"github.com/seanyasno/finance/internal/storage"
	"github.com/seanyasno/finance/internal/transactions"
)

// WorkflowRunner runs the fetch-and-persist workflow.
// Implemented by transactions.Service.
type WorkflowRunner interface {
	ExecuteWorkflow(ctx context.Context) *transactions.Report
	FetchAll(ctx context.Context) []transactions.FetchResult
}

// TransactionsHandler handles workflow and transaction read endpoints.
type TransactionsHandler struct {
	runner WorkflowRunner
	repo   storage.Repository
	cfg    config.Source
	log    zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(runner WorkflowRunner, repo storage.Repository, cfg config.Source, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		runner: runner,
		repo:   repo,
		cfg:    cfg,
		log:    log,
	}
}

// Workflow handles GET /api/transactions/workflow.
// It runs the full fetch-and-persist workflow synchronously and returns the
// per-company report. Partial failure is still a 200: the report carries each
// company's error.
func (h *TransactionsHandler) Workflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report := h.runner.ExecuteWorkflow(ctx)

	h.log.Info().
		Int("companies", len(report.Results)).
		Int("failed", report.Failed()).
		Msg("Workflow run finished")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": report.Results,
		"failed":  report.Failed(),
	})
}

// Fetch handles GET /api/transactions/fetch.
// Diagnostic path: it scrapes every company and returns the raw account data
// without persisting anything.
func (h *TransactionsHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := h.runner.FetchAll(ctx)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// ListTransactions handles GET /api/transactions.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := h.userID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	rows, err := h.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if rows == nil {
		rows = []*storage.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": rows,
		"count":        len(rows),
	})
}

// ListAccounts handles GET /api/accounts.
// It returns the user's bank accounts and credit cards together.
func (h *TransactionsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := h.userID(r)
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	bankAccounts, err := h.repo.ListBankAccounts(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list bank accounts")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	creditCards, err := h.repo.ListCreditCards(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list credit cards")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	if bankAccounts == nil {
		bankAccounts = []*storage.BankAccountRow{}
	}
	if creditCards == nil {
		creditCards = []*storage.CreditCardRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bank_accounts": bankAccounts,
		"credit_cards":  creditCards,
	})
}

// userID resolves the user for read endpoints: explicit query parameter
// first, configured default otherwise.
func (h *TransactionsHandler) userID(r *http.Request) string {
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		return userID
	}
	return h.cfg.Get("USER_ID_MOCK", "")
}

// JobsHandler handles async workflow and job status endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// EnqueueWorkflow handles POST /api/workflow/async.
// It enqueues a full workflow run and returns immediately with the job ID.
func (h *JobsHandler) EnqueueWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	job := &jobs.ScrapeRunJob{
		Companies: company.All(),
	}

	if err := h.publisher.PublishScrapeRun(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue workflow run")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue workflow run")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Workflow run enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
