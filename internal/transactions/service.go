package transactions

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
	"github.com/seanyasno/finance/internal/logger"
	"github.com/seanyasno/finance/internal/scraper"
)

// CompanyScraper fetches the scraped account list for one company.
// Implemented by scraping.Service.
type CompanyScraper interface {
	ScrapeCompany(ctx context.Context, companyType company.Type, useMock bool) ([]scraper.Account, error)
}

// Persister writes scraped accounts into the store.
// Implemented by PersistenceService.
type Persister interface {
	SaveTransactions(ctx context.Context, accounts []scraper.Account, companyType company.Type, userID string) (int, error)
}

// useMockKeys maps each company to the configuration flag selecting mock or
// live execution. Mock is the default until an institution's live scrape is
// enabled explicitly.
var useMockKeys = map[company.Type]string{
	company.Discount: "DISCOUNT_USE_MOCK",
	company.Isracard: "ISRACARD_USE_MOCK",
	company.Max:      "MAX_USE_MOCK",
	company.OneZero:  "ONE_ZERO_USE_MOCK",
	company.VisaCal:  "VISA_CAL_USE_MOCK",
}

// FetchResult is one company's outcome from the fetch-only diagnostic path.
type FetchResult struct {
	Company  company.Type      `json:"company"`
	Accounts []scraper.Account `json:"accounts"`
	Error    string            `json:"error,omitempty"`
}

// CompanyResult is one company's outcome from the full workflow.
type CompanyResult struct {
	Company      company.Type `json:"company"`
	Accounts     int          `json:"accounts"`
	Transactions int          `json:"transactions"`
	Error        string       `json:"error,omitempty"`
}

// Report aggregates per-company outcomes for one workflow run. Companies are
// independent, so the report surfaces partial success instead of a single
// boolean.
type Report struct {
	Results []CompanyResult `json:"results"`
}

// Failed returns how many companies ended in an error.
func (r *Report) Failed() int {
	var failed int
	for _, result := range r.Results {
		if result.Error != "" {
			failed++
		}
	}
	return failed
}

// Service runs the fetch-and-persist workflow across all configured
// companies.
type Service struct {
	scraper   CompanyScraper
	persister Persister
	cfg       config.Source
	log       zerolog.Logger
	companies []company.Type
}

// NewService creates the workflow service over every supported company.
func NewService(companyScraper CompanyScraper, persister Persister, cfg config.Source, log zerolog.Logger) *Service {
	return NewServiceFor(company.All(), companyScraper, persister, cfg, log)
}

// NewServiceFor creates the workflow service restricted to the given
// companies. An empty list falls back to every supported company.
func NewServiceFor(companies []company.Type, companyScraper CompanyScraper, persister Persister, cfg config.Source, log zerolog.Logger) *Service {
	if len(companies) == 0 {
		companies = company.All()
	}
	return &Service{
		scraper:   companyScraper,
		persister: persister,
		cfg:       cfg,
		log:       logger.WithComponent(log, "workflow"),
		companies: companies,
	}
}

// FetchAll scrapes every company concurrently without persisting anything.
// Diagnostic surface: results carry the raw scraped accounts.
func (s *Service) FetchAll(ctx context.Context) []FetchResult {
	results := make([]FetchResult, len(s.companies))

	var wg sync.WaitGroup
	for i, companyType := range s.companies {
		wg.Add(1)
		go func(i int, companyType company.Type) {
			defer wg.Done()

			accounts, err := s.scraper.ScrapeCompany(ctx, companyType, s.useMock(companyType))
			result := FetchResult{Company: companyType, Accounts: accounts}
			if err != nil {
				result.Error = err.Error()
				result.Accounts = []scraper.Account{}
			}
			results[i] = result
		}(i, companyType)
	}
	wg.Wait()

	return results
}

// ExecuteWorkflow scrapes and persists every company. Each company runs in
// its own goroutine: scrapes are independent browser-bound I/O, and their
// persistence writes disjoint parent rows. One company's failure at any stage
// is recorded in its result and never cancels the siblings.
func (s *Service) ExecuteWorkflow(ctx context.Context) *Report {
	userID := s.cfg.Get("USER_ID_MOCK", "")
	results := make([]CompanyResult, len(s.companies))

	var wg sync.WaitGroup
	for i, companyType := range s.companies {
		wg.Add(1)
		go func(i int, companyType company.Type) {
			defer wg.Done()
			results[i] = s.runCompany(ctx, companyType, userID)
		}(i, companyType)
	}
	wg.Wait()

	report := &Report{Results: results}
	s.log.Info().
		Int("companies", len(results)).
		Int("failed", report.Failed()).
		Msg("Workflow completed")

	return report
}

func (s *Service) runCompany(ctx context.Context, companyType company.Type, userID string) CompanyResult {
	result := CompanyResult{Company: companyType}

	accounts, err := s.scraper.ScrapeCompany(ctx, companyType, s.useMock(companyType))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Accounts = len(accounts)

	saved, err := s.persister.SaveTransactions(ctx, accounts, companyType, userID)
	result.Transactions = saved
	if err != nil {
		result.Error = err.Error()
	}

	return result
}

func (s *Service) useMock(companyType company.Type) bool {
	return UseMock(s.cfg, companyType)
}

// UseMock reports whether a company runs against mock data. Unknown companies
// and unset flags default to mock so live credentials are never exercised by
// accident.
func UseMock(cfg config.Source, companyType company.Type) bool {
	key, ok := useMockKeys[companyType]
	if !ok {
		return true
	}
	return cfg.GetBool(key, true)
}
