package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/seanyasno/finance/internal/company"
	"github.com/seanyasno/finance/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestUpsertBankAccount_BalanceOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	firstID, err := store.UpsertBankAccount(ctx, "user-1", "11-222-33", 1500.00, company.Discount)
	if err != nil {
		t.Fatalf("UpsertBankAccount failed: %v", err)
	}

	secondID, err := store.UpsertBankAccount(ctx, "user-1", "11-222-33", 1200.00, company.Discount)
	if err != nil {
		t.Fatalf("UpsertBankAccount (second run) failed: %v", err)
	}

	if firstID != secondID {
		t.Errorf("re-sighting created a new row: %s != %s", firstID, secondID)
	}

	accounts, err := store.ListBankAccounts(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBankAccounts failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("got %d accounts, want 1", len(accounts))
	}
	if accounts[0].Balance != 1200.00 {
		t.Errorf("balance = %v, want 1200.00 (overwrite, not sum)", accounts[0].Balance)
	}
	if accounts[0].Company != company.Discount {
		t.Errorf("company = %s, want discount", accounts[0].Company)
	}
}

func TestUpsertBankAccount_PerUserIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	firstID, err := store.UpsertBankAccount(ctx, "user-1", "11-222-33", 100, company.Discount)
	if err != nil {
		t.Fatalf("UpsertBankAccount failed: %v", err)
	}
	secondID, err := store.UpsertBankAccount(ctx, "user-2", "11-222-33", 200, company.Discount)
	if err != nil {
		t.Fatalf("UpsertBankAccount failed: %v", err)
	}

	if firstID == secondID {
		t.Error("same account number for different users must be separate rows")
	}
}

func TestUpsertCreditCard_ImmutableOnResighting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	firstID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	// Re-sighting under a different company must not rewrite the row.
	secondID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Isracard)
	if err != nil {
		t.Fatalf("UpsertCreditCard (second run) failed: %v", err)
	}
	if firstID != secondID {
		t.Errorf("re-sighting created a new row: %s != %s", firstID, secondID)
	}

	cards, err := store.ListCreditCards(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListCreditCards failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d cards, want 1", len(cards))
	}
	if cards[0].Company != company.Max {
		t.Errorf("company = %s, want max (immutable once registered)", cards[0].Company)
	}
}

func testTransactionRow(identifier, cardID string) *storage.TransactionRow {
	return &storage.TransactionRow{
		UserID:           "user-1",
		Description:      "Coffee",
		Timestamp:        time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
		Status:           "completed",
		OriginalAmount:   5.5,
		OriginalCurrency: "USD",
		ChargedAmount:    5.5,
		ChargedCurrency:  "USD",
		Source:           storage.SourceCreditCard,
		CreditCardID:     cardID,
		Identifier:       identifier,
	}
}

func TestUpsertTransactions_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cardID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	row := testTransactionRow("abc", cardID)
	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{row}); err != nil {
		t.Fatalf("UpsertTransactions failed: %v", err)
	}

	// Second run observes the same upstream transaction with a new charged
	// amount: mutable fields refresh, row count stays at one.
	updated := testTransactionRow("abc", cardID)
	updated.ChargedAmount = 6.0
	updated.Description = "Coffee and cake"
	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{updated}); err != nil {
		t.Fatalf("UpsertTransactions (second run) failed: %v", err)
	}

	persisted, err := store.ListTransactionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("got %d rows, want 1 (idempotent upsert)", len(persisted))
	}
	if persisted[0].ChargedAmount != 6.0 {
		t.Errorf("charged_amount = %v, want 6.0", persisted[0].ChargedAmount)
	}
	if persisted[0].Description != "Coffee and cake" {
		t.Errorf("description = %q, want refreshed value", persisted[0].Description)
	}
	if persisted[0].CreditCardID != cardID {
		t.Errorf("credit_card_id = %q, want %q", persisted[0].CreditCardID, cardID)
	}
	if persisted[0].Source != storage.SourceCreditCard {
		t.Errorf("source = %q, want credit_card", persisted[0].Source)
	}
}

func TestUpsertTransactions_ParentLinkageNeverRewritten(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cardID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}
	otherCardID, err := store.UpsertCreditCard(ctx, "user-1", "9999", company.VisaCal)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{testTransactionRow("abc", cardID)}); err != nil {
		t.Fatalf("UpsertTransactions failed: %v", err)
	}

	// An update arriving with a different parent keeps the original linkage.
	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{testTransactionRow("abc", otherCardID)}); err != nil {
		t.Fatalf("UpsertTransactions (second run) failed: %v", err)
	}

	persisted, err := store.ListTransactionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("got %d rows, want 1", len(persisted))
	}
	if persisted[0].CreditCardID != cardID {
		t.Errorf("credit_card_id = %q, want original %q", persisted[0].CreditCardID, cardID)
	}
}

func TestUpsertTransactions_BatchIsAtomic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cardID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	rows := []*storage.TransactionRow{
		testTransactionRow("abc", cardID),
		testTransactionRow("", cardID), // missing identifier fails the batch
	}
	if err := store.UpsertTransactions(ctx, rows); err == nil {
		t.Fatal("expected error for row without identifier")
	}

	persisted, err := store.ListTransactionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("got %d rows, want 0 (batch must roll back atomically)", len(persisted))
	}
}

func TestUpsertTransactions_EmptyBatch(t *testing.T) {
	store := newTestStore(t)

	if err := store.UpsertTransactions(context.Background(), nil); err != nil {
		t.Errorf("UpsertTransactions(nil) = %v, want nil", err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cardID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	row := testTransactionRow("abc", cardID)
	row.Timestamp = time.Date(2026, 1, 30, 15, 4, 5, 0, time.UTC)
	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{row}); err != nil {
		t.Fatalf("UpsertTransactions failed: %v", err)
	}

	persisted, err := store.ListTransactionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if !persisted[0].Timestamp.Equal(row.Timestamp) {
		t.Errorf("timestamp = %v, want %v", persisted[0].Timestamp, row.Timestamp)
	}
}

func TestListTransactionsByUser_ChronologicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cardID, err := store.UpsertCreditCard(ctx, "user-1", "1234", company.Max)
	if err != nil {
		t.Fatalf("UpsertCreditCard failed: %v", err)
	}

	// A whole-second instant must sort before a later instant with a
	// sub-second fraction: the stored text has a fixed-width fraction, so
	// the textual ORDER BY matches chronological order.
	wholeSecond := testTransactionRow("t-early", cardID)
	wholeSecond.Timestamp = time.Date(2026, 1, 30, 8, 0, 0, 0, time.UTC)

	halfSecondLater := testTransactionRow("t-late", cardID)
	halfSecondLater.Timestamp = time.Date(2026, 1, 30, 8, 0, 0, 500_000_000, time.UTC)

	if err := store.UpsertTransactions(ctx, []*storage.TransactionRow{halfSecondLater, wholeSecond}); err != nil {
		t.Fatalf("UpsertTransactions failed: %v", err)
	}

	persisted, err := store.ListTransactionsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListTransactionsByUser failed: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("got %d transactions, want 2", len(persisted))
	}
	if persisted[0].Identifier != "t-early" || persisted[1].Identifier != "t-late" {
		t.Errorf("order = [%s, %s], want [t-early, t-late]",
			persisted[0].Identifier, persisted[1].Identifier)
	}
}
