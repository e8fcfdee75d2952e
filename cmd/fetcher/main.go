package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/seanyasno/finance/internal/api/handlers"
	"github.com/seanyasno/finance/internal/api/middleware"
	"github.com/seanyasno/finance/internal/config"
	infraSQLite "github.com/seanyasno/finance/internal/infra/sqlite"
	"github.com/seanyasno/finance/internal/jobs"
	"github.com/seanyasno/finance/internal/jobs/inmemory"
	"github.com/seanyasno/finance/internal/logger"
	"github.com/seanyasno/finance/internal/scraper"
	"github.com/seanyasno/finance/internal/scraping"
	"github.com/seanyasno/finance/internal/transactions"
)

func main() {
	// Parse command-line flags
	var (
		port       = flag.String("port", "3000", "HTTP server port")
		dbPath     = flag.String("db", envOr("FINANCE_DB", "finance.db"), "SQLite database path (or set FINANCE_DB env)")
		scraperURL = flag.String("scraper-url", envOr("SCRAPER_URL", "http://localhost:9222"), "browser automation bridge base URL (or set SCRAPER_URL env)")
	)
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg := config.NewEnv()

	// Initialize storage
	store, err := infraSQLite.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
	}
	defer store.Close()

	// Initialize scraping services
	factory := scraper.NewRemoteFactory(*scraperURL)
	browser := scraper.NewRemoteBrowser(*scraperURL)
	scrapingService := scraping.NewService(cfg, factory, browser, log)

	persistenceService := transactions.NewPersistenceService(store, log)
	workflowService := transactions.NewService(scrapingService, persistenceService, cfg, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process async workflow runs
	ctx := logger.WithContext(context.Background(), log)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.ScrapeRunJob) error {
		log.Info().
			Str("job_id", job.JobID).
			Int("companies", len(job.Companies)).
			Msg("Processing workflow run")

		report := workflowService.ExecuteWorkflow(ctx)
		job.Report = report

		log.Info().
			Str("job_id", job.JobID).
			Int("failed", report.Failed()).
			Msg("Workflow run completed")

		return nil
	}

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	transactionsHandler := handlers.NewTransactionsHandler(workflowService, store, cfg, log)
	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Workflow endpoints
	mux.HandleFunc("/api/transactions/workflow", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Workflow(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/fetch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.Fetch(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Read endpoints
	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListAccounts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Async workflow endpoints
	mux.HandleFunc("/api/workflow/async", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			jobsHandler.EnqueueWorkflow(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server. Write timeout is generous because the synchronous
	// workflow endpoint waits on live scrapes.
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting fetcher server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight runs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server stopped")
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
