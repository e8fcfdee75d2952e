package company

import (
	"errors"
	"testing"
)

func TestClassificationSetsAreDisjoint(t *testing.T) {
	for _, c := range All() {
		if IsBankAccount(c) && IsCreditCard(c) {
			t.Errorf("company %s is in both classification sets", c)
		}
		if !IsBankAccount(c) && !IsCreditCard(c) {
			t.Errorf("company %s is in neither classification set", c)
		}
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		company    Type
		bank       bool
		creditCard bool
	}{
		{company: Discount, bank: true},
		{company: OneZero, bank: true},
		{company: Isracard, creditCard: true},
		{company: Max, creditCard: true},
		{company: VisaCal, creditCard: true},
		{company: Type("leumi")},
	}

	for _, tt := range tests {
		t.Run(string(tt.company), func(t *testing.T) {
			if got := IsBankAccount(tt.company); got != tt.bank {
				t.Errorf("IsBankAccount(%s) = %v, want %v", tt.company, got, tt.bank)
			}
			if got := IsCreditCard(tt.company); got != tt.creditCard {
				t.Errorf("IsCreditCard(%s) = %v, want %v", tt.company, got, tt.creditCard)
			}
		})
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("max")
	if err != nil {
		t.Fatalf("Parse(max) error: %v", err)
	}
	if got != Max {
		t.Errorf("Parse(max) = %s, want %s", got, Max)
	}

	_, err = Parse("unknown-bank")
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Parse(unknown-bank) error = %v, want UnsupportedError", err)
	}
	if unsupported.Company != Type("unknown-bank") {
		t.Errorf("UnsupportedError.Company = %s, want unknown-bank", unsupported.Company)
	}
}

func TestRequireBankAccount(t *testing.T) {
	if err := RequireBankAccount(Discount); err != nil {
		t.Errorf("RequireBankAccount(discount) = %v, want nil", err)
	}

	err := RequireBankAccount(Max)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("RequireBankAccount(max) error = %v, want MismatchError", err)
	}
	if mismatch.Company != Max {
		t.Errorf("MismatchError.Company = %s, want max", mismatch.Company)
	}
}

func TestRequireCreditCard(t *testing.T) {
	if err := RequireCreditCard(VisaCal); err != nil {
		t.Errorf("RequireCreditCard(visaCal) = %v, want nil", err)
	}

	err := RequireCreditCard(OneZero)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("RequireCreditCard(oneZero) error = %v, want MismatchError", err)
	}
}
