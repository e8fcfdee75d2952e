package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/storage"
)

// UpsertBankAccount implements the storage.Repository interface. The balance
// is overwritten on every sighting: the column holds the latest known value,
// not an accumulated one.
func (s *Store) UpsertBankAccount(ctx context.Context, userID, accountNumber string, balance float64, companyType company.Type) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bank_accounts (id, user_id, account_number, balance, company)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, account_number) DO UPDATE SET balance = excluded.balance
		RETURNING id
	`, uuid.NewString(), userID, accountNumber, balance, string(companyType)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("UpsertBankAccount: %w", err)
	}

	return id, nil
}

// UpsertCreditCard implements the storage.Repository interface. Card number
// and company are immutable once registered, so a conflicting insert updates
// nothing and the existing row id is returned.
func (s *Store) UpsertCreditCard(ctx context.Context, userID, cardNumber string, companyType company.Type) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credit_cards (id, user_id, card_number, company)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, card_number) DO NOTHING
	`, uuid.NewString(), userID, cardNumber, string(companyType))
	if err != nil {
		return "", fmt.Errorf("UpsertCreditCard: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM credit_cards WHERE user_id = ? AND card_number = ?
	`, userID, cardNumber).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("UpsertCreditCard: reading row id: %w", err)
	}

	return id, nil
}

// ListBankAccounts implements the storage.Repository interface.
func (s *Store) ListBankAccounts(ctx context.Context, userID string) ([]*storage.BankAccountRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, account_number, balance, company
		FROM bank_accounts
		WHERE user_id = ?
		ORDER BY account_number
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListBankAccounts: %w", err)
	}
	defer rows.Close()

	var accounts []*storage.BankAccountRow
	for rows.Next() {
		var row storage.BankAccountRow
		var companyType string
		if err := rows.Scan(&row.ID, &row.UserID, &row.AccountNumber, &row.Balance, &companyType); err != nil {
			return nil, fmt.Errorf("ListBankAccounts: scanning row: %w", err)
		}
		row.Company = company.Type(companyType)
		accounts = append(accounts, &row)
	}

	return accounts, rows.Err()
}

// ListCreditCards implements the storage.Repository interface.
func (s *Store) ListCreditCards(ctx context.Context, userID string) ([]*storage.CreditCardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, card_number, company
		FROM credit_cards
		WHERE user_id = ?
		ORDER BY card_number
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListCreditCards: %w", err)
	}
	defer rows.Close()

	var cards []*storage.CreditCardRow
	for rows.Next() {
		var row storage.CreditCardRow
		var companyType string
		if err := rows.Scan(&row.ID, &row.UserID, &row.CardNumber, &companyType); err != nil {
			return nil, fmt.Errorf("ListCreditCards: scanning row: %w", err)
		}
		row.Company = company.Type(companyType)
		cards = append(cards, &row)
	}

	return cards, rows.Err()
}
