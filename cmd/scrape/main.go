package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
	infraSQLite "github.com/seanyasno/finance/internal/infra/sqlite"
	"github.com/seanyasno/finance/internal/logger"
	"github.com/seanyasno/finance/internal/scraper"
	"github.com/seanyasno/finance/internal/scraping"
	"github.com/seanyasno/finance/internal/transactions"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	companyFlag := flag.String("company", "", "company to scrape (discount, oneZero, isracard, max, visaCal); empty runs all")
	save := flag.Bool("save", false, "persist scraped transactions instead of printing a summary only")
	dbPath := flag.String("db", envOr("FINANCE_DB", "finance.db"), "SQLite database path (or set FINANCE_DB env)")
	scraperURL := flag.String("scraper-url", envOr("SCRAPER_URL", "http://localhost:9222"), "browser automation bridge base URL (or set SCRAPER_URL env)")
	flag.Parse()

	cfg := config.NewEnv()

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	factory := scraper.NewRemoteFactory(*scraperURL)
	browser := scraper.NewRemoteBrowser(*scraperURL)
	scrapingService := scraping.NewService(cfg, factory, browser, log)

	companies := company.All()
	if *companyFlag != "" {
		companyType, err := company.Parse(*companyFlag)
		if err != nil {
			log.Fatal().Err(err).Str("company", *companyFlag).Msg("Unknown company")
		}
		companies = []company.Type{companyType}
	}

	if *save {
		store, err := infraSQLite.Open(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *dbPath).Msg("Failed to open database")
		}
		defer store.Close()

		persistenceService := transactions.NewPersistenceService(store, log)
		workflowService := transactions.NewServiceFor(companies, scrapingService, persistenceService, cfg, log)

		report := workflowService.ExecuteWorkflow(ctx)
		for _, result := range report.Results {
			if result.Error != "" {
				fmt.Printf("%-10s FAILED: %s\n", result.Company, result.Error)
				continue
			}
			fmt.Printf("%-10s %d accounts, %d transactions saved\n", result.Company, result.Accounts, result.Transactions)
		}
		if failed := report.Failed(); failed > 0 {
			log.Fatal().Int("failed", failed).Msg("Workflow finished with failures")
		}
		fmt.Println("Workflow completed successfully.")
		return
	}

	var failed int
	for _, companyType := range companies {
		useMock := transactions.UseMock(cfg, companyType)

		accounts, err := scrapingService.ScrapeCompany(ctx, companyType, useMock)
		if err != nil {
			fmt.Printf("%-10s FAILED: %v\n", companyType, err)
			failed++
			continue
		}

		var txns int
		for _, account := range accounts {
			txns += len(account.Txns)
		}
		fmt.Printf("%-10s %d accounts, %d transactions\n", companyType, len(accounts), txns)
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Scrape finished with failures")
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
