package scraping

import (
	"context"
	"fmt"
	"time"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/scraper"
)

const (
	// scrapeStartDate is the fixed beginning of the scraped window.
	scrapeStartDate = "2025-01-01"

	// scrapeTimeout bounds a whole scrape attempt and each navigation step.
	scrapeTimeout = 120 * time.Second
)

// Strategy encapsulates the per-institution triple: credential bundle,
// scraper options, and mock payload. One implementation exists per supported
// company; adding an institution means adding one strategy and one registry
// entry in NewService, nothing else.
type Strategy interface {
	// Credentials returns the login bundle shaped for this institution.
	Credentials() scraper.Credentials

	// Options builds the engine options for one scrape attempt, acquiring a
	// fresh browser session. The returned release func closes that session
	// and must be called on every exit path.
	Options(ctx context.Context) (scraper.Options, func(), error)

	// MockData returns the canned payload for non-live runs.
	MockData() (string, error)
}

// OptionsFactory builds scraper options with a per-attempt browser session.
type OptionsFactory struct {
	browser scraper.Browser
}

// NewOptionsFactory creates a factory acquiring sessions from the given
// browser.
func NewOptionsFactory(browser scraper.Browser) *OptionsFactory {
	return &OptionsFactory{browser: browser}
}

// CreateOptions acquires a browser session and returns options bound to it.
// The release func closes the session.
func (f *OptionsFactory) CreateOptions(ctx context.Context, companyType company.Type) (scraper.Options, func(), error) {
	session, err := f.browser.NewSession(ctx)
	if err != nil {
		return scraper.Options{}, nil, fmt.Errorf("CreateOptions: acquiring browser session: %w", err)
	}

	startDate, err := time.Parse("2006-01-02", scrapeStartDate)
	if err != nil {
		session.Close()
		return scraper.Options{}, nil, fmt.Errorf("CreateOptions: parsing start date: %w", err)
	}

	options := scraper.Options{
		CompanyID:           companyType,
		StartDate:           startDate,
		CombineInstallments: false,
		Browser:             session,
		Timeout:             scrapeTimeout,
		DefaultTimeout:      scrapeTimeout,
	}

	release := func() {
		session.Close()
	}

	return options, release, nil
}
