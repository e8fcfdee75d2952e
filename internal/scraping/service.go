package scraping

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
	"github.com/seanyasno/finance/internal/logger"
	"github.com/seanyasno/finance/internal/scraper"
)

// Service dispatches scrape requests to the per-institution strategy and
// normalizes the engine's result shape. It holds no mutable state, so one
// instance serves concurrent scrapes for different companies.
type Service struct {
	strategies map[company.Type]Strategy
	factory    scraper.EngineFactory
	log        zerolog.Logger
}

// NewService wires the strategy registry. Adding an institution is one entry
// here plus its strategy in strategies.go.
func NewService(cfg config.Source, factory scraper.EngineFactory, browser scraper.Browser, log zerolog.Logger) *Service {
	options := NewOptionsFactory(browser)
	mock := NewMockProvider(cfg)

	return &Service{
		strategies: map[company.Type]Strategy{
			company.Discount: NewDiscountStrategy(cfg, options, mock),
			company.Isracard: NewIsracardStrategy(cfg, options, mock),
			company.Max:      NewMaxStrategy(cfg, options, mock),
			company.OneZero:  NewOneZeroStrategy(cfg, options, mock),
			company.VisaCal:  NewVisaCalStrategy(cfg, options, mock),
		},
		factory: factory,
		log:     logger.WithComponent(log, "scraping"),
	}
}

// ScrapeCompany fetches the scraped account list for one company, either from
// the canned mock payload or from the live engine. The returned slice is
// never nil.
func (s *Service) ScrapeCompany(ctx context.Context, companyType company.Type, useMock bool) ([]scraper.Account, error) {
	strategy, err := s.strategy(companyType)
	if err != nil {
		return nil, err
	}

	if useMock {
		return s.mockAccounts(companyType, strategy)
	}

	return s.scrapeLive(ctx, companyType, strategy)
}

func (s *Service) strategy(companyType company.Type) (Strategy, error) {
	strategy, ok := s.strategies[companyType]
	if !ok {
		return nil, &company.UnsupportedError{Company: companyType}
	}
	return strategy, nil
}

func (s *Service) mockAccounts(companyType company.Type, strategy Strategy) ([]scraper.Account, error) {
	blob, err := strategy.MockData()
	if err != nil {
		return nil, err
	}

	accounts, err := scraper.ParseAccounts(blob)
	if err != nil {
		return nil, fmt.Errorf("parsing mock transactions for %s: %w", companyType, err)
	}

	s.log.Debug().
		Str("company", string(companyType)).
		Int("accounts", len(accounts)).
		Msg("Loaded mock transactions")

	return accounts, nil
}

func (s *Service) scrapeLive(ctx context.Context, companyType company.Type, strategy Strategy) ([]scraper.Account, error) {
	options, release, err := strategy.Options(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", companyType, err)
	}
	defer release()

	credentials := strategy.Credentials()

	// The engine carries its own internal timeouts, but the deadline is also
	// enforced here so a hung browser cannot stall the whole run.
	scrapeCtx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	s.log.Info().Str("company", string(companyType)).Msg("Scraping transactions")

	engine, err := s.factory.CreateScraper(scrapeCtx, options)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", companyType, err)
	}

	result, err := engine.Scrape(scrapeCtx, credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for %s: %w", companyType, err)
	}

	if !result.Success {
		return nil, &scraper.ScrapeError{
			Company:   companyType,
			ErrorType: result.ErrorType,
			Message:   result.ErrorMessage,
		}
	}

	accounts := result.Accounts
	if accounts == nil {
		accounts = []scraper.Account{}
	}

	s.log.Info().
		Str("company", string(companyType)).
		Int("accounts", len(accounts)).
		Msg("Scrape completed")

	return accounts, nil
}
