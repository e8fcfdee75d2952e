package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seanyasno/finance/internal/storage"
)

// timestampFormat stores instants as UTC text. The fraction is fixed-width
// (RFC3339Nano would trim trailing zeros), so lexicographic order equals
// chronological order and ORDER BY timestamp is correct.
const timestampFormat = "2006-01-02T15:04:05.000000000Z07:00"

// UpsertTransactions implements the storage.Repository interface. The whole
// batch runs inside one transaction: it is the per-account atomic unit, so a
// failure on any row rolls back the account's batch without touching rows
// committed for other accounts.
//
// Rows matched by identifier get only their mutable fields refreshed;
// bank_account_id, credit_card_id, and source are never rewritten on update.
func (s *Store) UpsertTransactions(ctx context.Context, rows []*storage.TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpsertTransactions: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			id, user_id, description, timestamp, status,
			original_amount, original_currency, charged_amount, charged_currency,
			source, bank_account_id, credit_card_id, identifier
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (identifier) DO UPDATE SET
			description       = excluded.description,
			timestamp         = excluded.timestamp,
			status            = excluded.status,
			original_amount   = excluded.original_amount,
			original_currency = excluded.original_currency,
			charged_amount    = excluded.charged_amount,
			charged_currency  = excluded.charged_currency
	`)
	if err != nil {
		return fmt.Errorf("UpsertTransactions: preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if row.Identifier == "" {
			return fmt.Errorf("UpsertTransactions: row %q has no identifier", row.Description)
		}

		_, err := stmt.ExecContext(ctx,
			uuid.NewString(),
			row.UserID,
			row.Description,
			row.Timestamp.UTC().Format(timestampFormat),
			row.Status,
			row.OriginalAmount,
			row.OriginalCurrency,
			row.ChargedAmount,
			row.ChargedCurrency,
			row.Source,
			nullable(row.BankAccountID),
			nullable(row.CreditCardID),
			row.Identifier,
		)
		if err != nil {
			return fmt.Errorf("UpsertTransactions: upserting %q: %w", row.Identifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertTransactions: committing: %w", err)
	}

	return nil
}

// ListTransactionsByUser implements the storage.Repository interface.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]*storage.TransactionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, description, timestamp, status,
			original_amount, original_currency, charged_amount, charged_currency,
			source, bank_account_id, credit_card_id, identifier
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp, identifier
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsByUser: %w", err)
	}
	defer rows.Close()

	var result []*storage.TransactionRow
	for rows.Next() {
		var row storage.TransactionRow
		var timestamp string
		var bankAccountID, creditCardID sql.NullString

		err := rows.Scan(
			&row.ID, &row.UserID, &row.Description, &timestamp, &row.Status,
			&row.OriginalAmount, &row.OriginalCurrency, &row.ChargedAmount, &row.ChargedCurrency,
			&row.Source, &bankAccountID, &creditCardID, &row.Identifier,
		)
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByUser: scanning row: %w", err)
		}

		row.Timestamp, err = time.Parse(timestampFormat, timestamp)
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsByUser: parsing timestamp %q: %w", timestamp, err)
		}
		row.BankAccountID = bankAccountID.String
		row.CreditCardID = creditCardID.String

		result = append(result, &row)
	}

	return result, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
