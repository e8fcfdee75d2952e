package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/seanyasno/finance/internal/company"
)

// Credentials is the login bundle for one institution. The upstream engine
// takes a union of per-institution credential shapes, so every field is
// optional and only the fields relevant to the target institution are set:
//
//   - discount: ID, Password, Num
//   - isracard: ID, Card6Digits, Password
//   - max / visaCal: Username, Password
//   - oneZero: Email, Password, PhoneNumber, OtpLongTermToken
type Credentials struct {
	ID               string `json:"id,omitempty"`
	Password         string `json:"password,omitempty"`
	Num              string `json:"num,omitempty"`
	Card6Digits      string `json:"card6Digits,omitempty"`
	Username         string `json:"username,omitempty"`
	Email            string `json:"email,omitempty"`
	PhoneNumber      string `json:"phoneNumber,omitempty"`
	OtpLongTermToken string `json:"otpLongTermToken,omitempty"`
}

// Options configures one scrape attempt against the engine.
type Options struct {
	// CompanyID selects the institution-specific scraper inside the engine.
	CompanyID company.Type

	// StartDate is the beginning of the scraped date window.
	StartDate time.Time

	// CombineInstallments controls whether installment charges are merged
	// into a single transaction.
	CombineInstallments bool

	// Browser is the browser-automation session the scrape runs in. Owned by
	// the caller; the engine never closes it.
	Browser Session

	// Timeout bounds the whole scrape; DefaultTimeout bounds individual
	// navigation steps inside the engine.
	Timeout        time.Duration
	DefaultTimeout time.Duration
}

// Result is the engine's normalized outcome shape.
type Result struct {
	Success      bool      `json:"success"`
	Accounts     []Account `json:"accounts,omitempty"`
	ErrorType    string    `json:"errorType,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Engine is a single-shot scraper bound to one institution's options.
// Implementations wrap the external browser-automation dependency; the rest of
// the system treats it as an opaque black box satisfying this shape.
type Engine interface {
	Scrape(ctx context.Context, credentials Credentials) (*Result, error)
}

// EngineFactory constructs an Engine for one scrape attempt.
type EngineFactory interface {
	CreateScraper(ctx context.Context, options Options) (Engine, error)
}

// Session is one isolated browser context. Each scrape attempt acquires its
// own session and must release it on every exit path.
type Session interface {
	// ID identifies the session to the engine.
	ID() string

	// Close releases the underlying browser context.
	Close() error
}

// Browser acquires isolated browser sessions. It is a scarce, stateful
// resource shared by concurrent scrapes; sessions themselves are not shared.
type Browser interface {
	NewSession(ctx context.Context) (Session, error)
}

// ScrapeError is an explicit failure reported by the engine, carrying the
// upstream error classification (invalid credentials, timeout, changed
// website structure). Distinct from transport-level failures, which surface
// as wrapped plain errors.
type ScrapeError struct {
	Company   company.Type
	ErrorType string
	Message   string
}

func (e *ScrapeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("scrape failed for %s: %s (%s)", e.Company, e.ErrorType, e.Message)
	}
	return fmt.Sprintf("scrape failed for %s: %s", e.Company, e.ErrorType)
}
