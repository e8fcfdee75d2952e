package scraper

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TransactionStatus is the settlement state reported by the upstream source.
type TransactionStatus string

const (
	// StatusCompleted marks a settled transaction.
	StatusCompleted TransactionStatus = "completed"
	// StatusPending marks a transaction that has not settled yet.
	StatusPending TransactionStatus = "pending"
)

// Identifier is the upstream-provided stable transaction identifier. Some
// institutions emit it as a JSON string and others as a number, so it accepts
// both and normalizes to a string. It may be empty when the upstream record
// carried no identifier at all.
type Identifier string

// UnmarshalJSON implements json.Unmarshaler.
func (id *Identifier) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = Identifier(n.String())
	return nil
}

// MarshalJSON implements json.Marshaler.
func (id Identifier) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(id))), nil
}

// Transaction is one raw scraped transaction record, in the upstream wire
// shape. Date is kept as the raw upstream string: some institutions report a
// date-only value, others a fully qualified instant. Normalization happens in
// the transaction mapper, not here.
type Transaction struct {
	Identifier       Identifier        `json:"identifier,omitempty"`
	Description      string            `json:"description"`
	Date             string            `json:"date"`
	Status           TransactionStatus `json:"status"`
	OriginalAmount   float64           `json:"originalAmount"`
	OriginalCurrency string            `json:"originalCurrency"`
	ChargedAmount    float64           `json:"chargedAmount"`
	ChargedCurrency  string            `json:"chargedCurrency"`
}

// Account is the result of scraping one institution account for one user.
// Balance is present only for bank accounts; its presence is the discriminator
// between bank accounts and credit cards.
type Account struct {
	AccountNumber string        `json:"accountNumber"`
	Balance       *float64      `json:"balance,omitempty"`
	Txns          []Transaction `json:"txns"`
}

// ParseAccounts deserializes a JSON blob into the scraped account list shape.
// An empty or whitespace-free "null" blob yields an empty list so that
// partially configured environments degrade to "no accounts".
func ParseAccounts(blob string) ([]Account, error) {
	if blob == "" {
		return []Account{}, nil
	}

	var accounts []Account
	if err := json.Unmarshal([]byte(blob), &accounts); err != nil {
		return nil, fmt.Errorf("parsing accounts payload: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}
