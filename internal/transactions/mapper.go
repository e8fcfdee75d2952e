package transactions

import (
	"fmt"
	"time"

	"github.com/seanyasno/finance/internal/scraper"
	"github.com/seanyasno/finance/internal/storage"
)

// MissingIdentifierError reports a scraped transaction without an upstream
// natural-key identifier. Every supported institution's scraper emits
// identifiers, so this is a defect in the incoming data. A synthetic key
// would silently break idempotent upserts.
type MissingIdentifierError struct {
	Description string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("scraped transaction %q has no identifier", e.Description)
}

// MapBankTransaction maps one scraped transaction onto the persisted row
// shape for a bank account parent. Pure: same input, same output.
func MapBankTransaction(txn scraper.Transaction, userID, bankAccountID string) (*storage.TransactionRow, error) {
	row, err := mapTransaction(txn, userID)
	if err != nil {
		return nil, err
	}

	row.Source = storage.SourceBankAccount
	row.BankAccountID = bankAccountID
	return row, nil
}

// MapCreditCardTransaction maps one scraped transaction onto the persisted
// row shape for a credit card parent. Pure: same input, same output.
func MapCreditCardTransaction(txn scraper.Transaction, userID, creditCardID string) (*storage.TransactionRow, error) {
	row, err := mapTransaction(txn, userID)
	if err != nil {
		return nil, err
	}

	row.Source = storage.SourceCreditCard
	row.CreditCardID = creditCardID
	return row, nil
}

func mapTransaction(txn scraper.Transaction, userID string) (*storage.TransactionRow, error) {
	if txn.Identifier == "" {
		return nil, &MissingIdentifierError{Description: txn.Description}
	}

	timestamp, err := parseTransactionDate(txn.Date)
	if err != nil {
		return nil, fmt.Errorf("mapping transaction %q: %w", txn.Identifier, err)
	}

	return &storage.TransactionRow{
		UserID:           userID,
		Description:      txn.Description,
		Timestamp:        timestamp,
		Status:           string(txn.Status),
		OriginalAmount:   txn.OriginalAmount,
		OriginalCurrency: txn.OriginalCurrency,
		ChargedAmount:    txn.ChargedAmount,
		ChargedCurrency:  txn.ChargedCurrency,
		Identifier:       string(txn.Identifier),
	}, nil
}

// parseTransactionDate normalizes the upstream date to an instant. Sources
// report either a fully qualified ISO instant or a bare date; bare dates are
// read as UTC midnight, so mapping stays deterministic across host timezones.
func parseTransactionDate(raw string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
