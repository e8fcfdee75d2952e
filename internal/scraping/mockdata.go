package scraping

import (
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/config"
)

// mockDataKeys maps each company to the configuration key holding its canned
// JSON payload.
var mockDataKeys = map[company.Type]string{
	company.Discount: "DISCOUNT_TRANSACTIONS_MOCK",
	company.Isracard: "ISRACARD_TRANSACTIONS_MOCK",
	company.Max:      "MAX_TRANSACTIONS_MOCK",
	company.OneZero:  "ONE_ZERO_TRANSACTIONS_MOCK",
	company.VisaCal:  "VISA_CAL_TRANSACTIONS_MOCK",
}

// MockProvider supplies canned per-company scrape payloads for deterministic
// non-live runs. Payloads come from configuration; a missing payload reads as
// an empty blob, which downstream parsing turns into "no accounts".
type MockProvider struct {
	cfg config.Source
}

// NewMockProvider creates a provider backed by the given configuration source.
func NewMockProvider(cfg config.Source) *MockProvider {
	return &MockProvider{cfg: cfg}
}

// MockTransactions returns the raw JSON blob for the company.
func (p *MockProvider) MockTransactions(companyType company.Type) (string, error) {
	key, ok := mockDataKeys[companyType]
	if !ok {
		return "", &company.UnsupportedError{Company: companyType}
	}
	return p.cfg.Get(key, ""), nil
}
