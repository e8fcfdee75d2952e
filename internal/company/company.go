package company

import "fmt"

// Type identifies a supported banking or credit-card institution. The values
// match the company identifiers used by the upstream scraper engine.
type Type string

const (
	// Discount is the Discount Bank institution (bank accounts).
	Discount Type = "discount"
	// OneZero is the One Zero digital bank institution (bank accounts).
	OneZero Type = "oneZero"
	// Isracard is the Isracard credit-card institution.
	Isracard Type = "isracard"
	// Max is the Max credit-card institution.
	Max Type = "max"
	// VisaCal is the Visa Cal credit-card institution.
	VisaCal Type = "visaCal"
)

// bankCompanies and creditCardCompanies are disjoint: a company either carries
// balance-bearing bank accounts or credit cards, never both.
var (
	bankCompanies = map[Type]bool{
		Discount: true,
		OneZero:  true,
	}

	creditCardCompanies = map[Type]bool{
		Isracard: true,
		Max:      true,
		VisaCal:  true,
	}
)

// All returns every supported company in a stable order.
func All() []Type {
	return []Type{Discount, OneZero, Isracard, Max, VisaCal}
}

// UnsupportedError reports a company identifier that is not part of either
// classification set. This is a configuration-level failure: it aborts the
// affected company's scrape, not the whole run.
type UnsupportedError struct {
	Company Type
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported company type: %s", e.Company)
}

// MismatchError reports an account whose shape (balance presence) disagrees
// with its company's declared classification.
type MismatchError struct {
	Company Type
	Want    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("company type %s does not support %s", e.Company, e.Want)
}

// Parse validates a raw company identifier against the supported set.
func Parse(raw string) (Type, error) {
	t := Type(raw)
	if !bankCompanies[t] && !creditCardCompanies[t] {
		return "", &UnsupportedError{Company: t}
	}
	return t, nil
}

// IsBankAccount reports whether the company carries balance-bearing bank
// accounts.
func IsBankAccount(t Type) bool {
	return bankCompanies[t]
}

// IsCreditCard reports whether the company carries credit cards.
func IsCreditCard(t Type) bool {
	return creditCardCompanies[t]
}

// RequireBankAccount returns a MismatchError unless the company is a bank.
// Called before persistence so a balance-bearing account is never written
// through the credit-card path.
func RequireBankAccount(t Type) error {
	if !IsBankAccount(t) {
		return &MismatchError{Company: t, Want: "bank accounts with balance"}
	}
	return nil
}

// RequireCreditCard returns a MismatchError unless the company is a
// credit-card provider.
func RequireCreditCard(t Type) error {
	if !IsCreditCard(t) {
		return &MismatchError{Company: t, Want: "credit card transactions"}
	}
	return nil
}
