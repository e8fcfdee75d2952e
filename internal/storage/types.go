package storage

import (
	"context"
	"time"

	"github.com/seanyasno/finance/internal/company"
)

// TransactionSource discriminates which parent entity a transaction belongs
// to. A row links to exactly one of bank_account_id / credit_card_id.
const (
	SourceBankAccount = "bank_account"
	SourceCreditCard  = "credit_card"
)

// BankAccountRow is a persisted bank account, identified by the
// (user_id, account_number) unique pair. Balance reflects the latest known
// value, not a ledger.
type BankAccountRow struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	AccountNumber string       `json:"account_number"`
	Balance       float64      `json:"balance"`
	Company       company.Type `json:"company"`
}

// CreditCardRow is a persisted credit card, identified by the
// (user_id, card_number) unique pair. Immutable once registered.
type CreditCardRow struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	CardNumber string       `json:"card_number"`
	Company    company.Type `json:"company"`
}

// TransactionRow is a persisted transaction. Identifier is the upstream
// natural key enforcing idempotency across scrape runs. Exactly one of
// BankAccountID / CreditCardID is set, matching Source.
type TransactionRow struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Description      string    `json:"description"`
	Timestamp        time.Time `json:"timestamp"`
	Status           string    `json:"status"`
	OriginalAmount   float64   `json:"original_amount"`
	OriginalCurrency string    `json:"original_currency"`
	ChargedAmount    float64   `json:"charged_amount"`
	ChargedCurrency  string    `json:"charged_currency"`
	Source           string    `json:"source"`
	BankAccountID    string    `json:"bank_account_id,omitempty"`
	CreditCardID     string    `json:"credit_card_id,omitempty"`
	Identifier       string    `json:"identifier"`
}

// Repository provides the upsert-by-natural-key operations the persistence
// service needs, plus the read side used by the HTTP API.
type Repository interface {
	// UpsertBankAccount creates the bank account on first sighting and
	// overwrites its balance on every later one. Returns the row id.
	UpsertBankAccount(ctx context.Context, userID, accountNumber string, balance float64, companyType company.Type) (string, error)

	// UpsertCreditCard creates the credit card on first sighting; re-sighting
	// updates nothing. Returns the row id.
	UpsertCreditCard(ctx context.Context, userID, cardNumber string, companyType company.Type) (string, error)

	// UpsertTransactions upserts the batch atomically: all rows commit or
	// none do. Rows matched by identifier get only their mutable fields
	// refreshed; parent linkage and source are never rewritten.
	UpsertTransactions(ctx context.Context, rows []*TransactionRow) error

	// ListTransactionsByUser returns all persisted transactions for a user,
	// ordered by timestamp.
	ListTransactionsByUser(ctx context.Context, userID string) ([]*TransactionRow, error)

	// ListBankAccounts returns all persisted bank accounts for a user.
	ListBankAccounts(ctx context.Context, userID string) ([]*BankAccountRow, error)

	// ListCreditCards returns all persisted credit cards for a user.
	ListCreditCards(ctx context.Context, userID string) ([]*CreditCardRow, error)
}
