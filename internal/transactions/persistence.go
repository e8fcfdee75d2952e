package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/logger"
	"github.com/seanyasno/finance/internal/scraper"
	"github.com/seanyasno/finance/internal/storage"
)

// PersistenceService writes scraped accounts and their transactions into the
// relational store with natural-key upserts. Accounts are independent atomic
// units: a failure while persisting one account never rolls back or blocks
// its siblings.
type PersistenceService struct {
	repo storage.Repository
	log  zerolog.Logger
}

// NewPersistenceService creates the persistence service.
func NewPersistenceService(repo storage.Repository, log zerolog.Logger) *PersistenceService {
	return &PersistenceService{repo: repo, log: logger.WithComponent(log, "persistence")}
}

// SaveTransactions upserts the parent entity and transaction batch for every
// account in the scrape result. It returns the number of transaction rows
// upserted and the joined errors of any accounts that failed; accounts after
// a failed one are still attempted.
func (p *PersistenceService) SaveTransactions(ctx context.Context, accounts []scraper.Account, companyType company.Type, userID string) (int, error) {
	if !company.IsBankAccount(companyType) && !company.IsCreditCard(companyType) {
		return 0, &company.UnsupportedError{Company: companyType}
	}

	var saved int
	var accountErrs []error

	for _, account := range accounts {
		var (
			count int
			err   error
		)
		if company.IsBankAccount(companyType) {
			count, err = p.saveBankAccountTransactions(ctx, account, companyType, userID)
		} else {
			count, err = p.saveCreditCardTransactions(ctx, account, companyType, userID)
		}

		if err != nil {
			p.log.Error().
				Err(err).
				Str("company", string(companyType)).
				Str("account", account.AccountNumber).
				Msg("Failed to persist account")
			accountErrs = append(accountErrs, fmt.Errorf("account %s: %w", account.AccountNumber, err))
			continue
		}
		saved += count
	}

	return saved, errors.Join(accountErrs...)
}

func (p *PersistenceService) saveBankAccountTransactions(ctx context.Context, account scraper.Account, companyType company.Type, userID string) (int, error) {
	if err := company.RequireBankAccount(companyType); err != nil {
		return 0, err
	}
	if account.Balance == nil {
		// A balance-less account is card-shaped; refusing it here keeps an
		// upstream reclassification bug from miscategorizing money.
		return 0, &company.MismatchError{Company: companyType, Want: "credit card transactions"}
	}

	bankAccountID, err := p.repo.UpsertBankAccount(ctx, userID, account.AccountNumber, *account.Balance, companyType)
	if err != nil {
		return 0, err
	}

	rows, err := p.mapAll(account.Txns, func(txn scraper.Transaction) (*storage.TransactionRow, error) {
		return MapBankTransaction(txn, userID, bankAccountID)
	})
	if err != nil {
		return 0, err
	}

	if err := p.repo.UpsertTransactions(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (p *PersistenceService) saveCreditCardTransactions(ctx context.Context, account scraper.Account, companyType company.Type, userID string) (int, error) {
	if err := company.RequireCreditCard(companyType); err != nil {
		return 0, err
	}
	if account.Balance != nil {
		return 0, &company.MismatchError{Company: companyType, Want: "bank accounts with balance"}
	}

	creditCardID, err := p.repo.UpsertCreditCard(ctx, userID, account.AccountNumber, companyType)
	if err != nil {
		return 0, err
	}

	rows, err := p.mapAll(account.Txns, func(txn scraper.Transaction) (*storage.TransactionRow, error) {
		return MapCreditCardTransaction(txn, userID, creditCardID)
	})
	if err != nil {
		return 0, err
	}

	if err := p.repo.UpsertTransactions(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// mapAll maps the whole batch before anything is written, so a mapping fault
// on any transaction leaves the account's batch untouched.
func (p *PersistenceService) mapAll(txns []scraper.Transaction, mapOne func(scraper.Transaction) (*storage.TransactionRow, error)) ([]*storage.TransactionRow, error) {
	rows := make([]*storage.TransactionRow, 0, len(txns))
	for _, txn := range txns {
		row, err := mapOne(txn)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
