package scraping

import (
	"context"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
	"github.com/seanyasno/finance/internal/scraper"
)

// DiscountStrategy scrapes Discount Bank accounts.
type DiscountStrategy struct {
	cfg     config.Source
	options *OptionsFactory
	mock    *MockProvider
}

// NewDiscountStrategy creates the Discount Bank strategy.
func NewDiscountStrategy(cfg config.Source, options *OptionsFactory, mock *MockProvider) *DiscountStrategy {
	return &DiscountStrategy{cfg: cfg, options: options, mock: mock}
}

// Credentials implements the Strategy interface.
func (s *DiscountStrategy) Credentials() scraper.Credentials {
	return scraper.Credentials{
		ID:       s.cfg.Get("DISCOUNT_ID", ""),
		Password: s.cfg.Get("DISCOUNT_PASSWORD", ""),
		Num:      s.cfg.Get("DISCOUNT_NUM", ""),
	}
}

// Options implements the Strategy interface.
func (s *DiscountStrategy) Options(ctx context.Context) (scraper.Options, func(), error) {
	return s.options.CreateOptions(ctx, company.Discount)
}

// MockData implements the Strategy interface.
func (s *DiscountStrategy) MockData() (string, error) {
	return s.mock.MockTransactions(company.Discount)
}

// IsracardStrategy scrapes Isracard credit cards.
type IsracardStrategy struct {
	cfg     config.Source
	options *OptionsFactory
	mock    *MockProvider
}

// NewIsracardStrategy creates the Isracard strategy.
func NewIsracardStrategy(cfg config.Source, options *OptionsFactory, mock *MockProvider) *IsracardStrategy {
	return &IsracardStrategy{cfg: cfg, options: options, mock: mock}
}

// Credentials implements the Strategy interface.
func (s *IsracardStrategy) Credentials() scraper.Credentials {
	return scraper.Credentials{
		ID:          s.cfg.Get("ISRACARD_ID", ""),
		Card6Digits: s.cfg.Get("ISRACARD_SIX_DIGITS", ""),
		Password:    s.cfg.Get("ISRACARD_PASSWORD", ""),
	}
}

// Options implements the Strategy interface.
func (s *IsracardStrategy) Options(ctx context.Context) (scraper.Options, func(), error) {
	return s.options.CreateOptions(ctx, company.Isracard)
}

// MockData implements the Strategy interface.
func (s *IsracardStrategy) MockData() (string, error) {
	return s.mock.MockTransactions(company.Isracard)
}

// MaxStrategy scrapes Max credit cards.
type MaxStrategy struct {
	cfg     config.Source
	options *OptionsFactory
	mock    *MockProvider
}

// NewMaxStrategy creates the Max strategy.
func NewMaxStrategy(cfg config.Source, options *OptionsFactory, mock *MockProvider) *MaxStrategy {
	return &MaxStrategy{cfg: cfg, options: options, mock: mock}
}

// Credentials implements the Strategy interface.
func (s *MaxStrategy) Credentials() scraper.Credentials {
	return scraper.Credentials{
		Username: s.cfg.Get("MAX_USERNAME", ""),
		Password: s.cfg.Get("MAX_PASSWORD", ""),
	}
}

// Options implements the Strategy interface.
func (s *MaxStrategy) Options(ctx context.Context) (scraper.Options, func(), error) {
	return s.options.CreateOptions(ctx, company.Max)
}

// MockData implements the Strategy interface.
func (s *MaxStrategy) MockData() (string, error) {
	return s.mock.MockTransactions(company.Max)
}

// OneZeroStrategy scrapes One Zero bank accounts. One Zero logins run on a
// long-term OTP token obtained out of band.
type OneZeroStrategy struct {
	cfg     config.Source
	options *OptionsFactory
	mock    *MockProvider
}

// NewOneZeroStrategy creates the One Zero strategy.
func NewOneZeroStrategy(cfg config.Source, options *OptionsFactory, mock *MockProvider) *OneZeroStrategy {
	return &OneZeroStrategy{cfg: cfg, options: options, mock: mock}
}

// Credentials implements the Strategy interface.
func (s *OneZeroStrategy) Credentials() scraper.Credentials {
	return scraper.Credentials{
		Email:            s.cfg.Get("ONE_ZERO_EMAIL", ""),
		Password:         s.cfg.Get("ONE_ZERO_PASSWORD", ""),
		PhoneNumber:      s.cfg.Get("ONE_ZERO_PHONE_NUMBER", ""),
		OtpLongTermToken: s.cfg.Get("ONE_ZERO_OTP_TOKEN", ""),
	}
}

// Options implements the Strategy interface.
func (s *OneZeroStrategy) Options(ctx context.Context) (scraper.Options, func(), error) {
	return s.options.CreateOptions(ctx, company.OneZero)
}

// MockData implements the Strategy interface.
func (s *OneZeroStrategy) MockData() (string, error) {
	return s.mock.MockTransactions(company.OneZero)
}

// VisaCalStrategy scrapes Visa Cal credit cards.
type VisaCalStrategy struct {
	cfg     config.Source
	options *OptionsFactory
	mock    *MockProvider
}

// NewVisaCalStrategy creates the Visa Cal strategy.
func NewVisaCalStrategy(cfg config.Source, options *OptionsFactory, mock *MockProvider) *VisaCalStrategy {
	return &VisaCalStrategy{cfg: cfg, options: options, mock: mock}
}

// Credentials implements the Strategy interface.
func (s *VisaCalStrategy) Credentials() scraper.Credentials {
	return scraper.Credentials{
		Username: s.cfg.Get("VISA_CAL_USERNAME", ""),
		Password: s.cfg.Get("VISA_CAL_PASSWORD", ""),
	}
}

// Options implements the Strategy interface.
func (s *VisaCalStrategy) Options(ctx context.Context) (scraper.Options, func(), error) {
	return s.options.CreateOptions(ctx, company.VisaCal)
}

// MockData implements the Strategy interface.
func (s *VisaCalStrategy) MockData() (string, error) {
	return s.mock.MockTransactions(company.VisaCal)
}
