package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDateAndTime(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("round trip mismatch: %s", d)
	}
	if _, err := ParseDate("09/03/2025"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	tod, err := ParseTimeOfDay("07:05")
	if err != nil {
		t.Fatal(err)
	}
	if tod.String() != "07:05" {
		t.Fatalf("round trip mismatch: %s", tod)
	}
	if _, err := ParseTimeOfDay("25:00"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"  Food  ":          "Food",
		"Rent; DROP TABLE":  "Rent DROP TABLE",
		"Bills & Utilities": "Bills  Utilities",
		"Side-hustle_2":     "Side-hustle_2",
		"Café":              "Café",
		"!!!":               "",
		"07 12-345 678":     "07 12-345 678",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeOptional(t *testing.T) {
	if SanitizeOptional(nil) != nil {
		t.Fatal("nil should stay nil")
	}
	empty := " ?? "
	if SanitizeOptional(&empty) != nil {
		t.Fatal("empty after sanitize should become nil")
	}
	num := " 0712345678 "
	got := SanitizeOptional(&num)
	if got == nil || *got != "0712345678" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestNewWalletValidate(t *testing.T) {
	good := NewWallet{Name: "Savings", Type: Bank, OpeningBalance: Money{}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		w    NewWallet
		want error
	}{
		{NewWallet{Name: "", Type: Cash}, ErrEmptyName},
		{NewWallet{Name: "%%", Type: Cash}, ErrEmptyName},
		{NewWallet{Name: "x", Type: "Crypto"}, ErrInvalidWalletType},
		{NewWallet{Name: "x", Type: Cash, OpeningBalance: Money{Cents: -1}}, ErrNegativeBalance},
	}
	for i, tc := range bads {
		err := tc.w.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected a validation error, got %v", i, err)
		}
	}
}

func TestNewExpenseValidate(t *testing.T) {
	noon := TimeOfDay{Hour: 12}
	good := NewExpense{
		Date:       NewDate(2025, 1, 1),
		Time:       &noon,
		Amount:     Money{Cents: 100},
		WalletID:   1,
		CategoryID: 1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zeroSub := int64(0)
	bads := []NewExpense{
		{Date: Date{}, Time: &noon, Amount: Money{Cents: 1}, WalletID: 1, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Time: nil, Amount: Money{Cents: 1}, WalletID: 1, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Time: &noon, Amount: Money{Cents: 0}, WalletID: 1, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Time: &noon, Amount: Money{Cents: -5}, WalletID: 1, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Time: &noon, Amount: Money{Cents: 1}, WalletID: 0, CategoryID: 1},
		{Date: NewDate(2025, 1, 1), Time: &noon, Amount: Money{Cents: 1}, WalletID: 1, CategoryID: 0},
		{Date: NewDate(2025, 1, 1), Time: &noon, Amount: Money{Cents: 1}, WalletID: 1, CategoryID: 1, SubcategoryID: &zeroSub},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestParseWalletType(t *testing.T) {
	got, err := ParseWalletType("mpesa")
	if err != nil || got != Mpesa {
		t.Fatalf("expected Mpesa, got %q (%v)", got, err)
	}
	if _, err := ParseWalletType("card"); !errors.Is(err, ErrInvalidWalletType) {
		t.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}
}

func TestLengthLimitsCountCharacters(t *testing.T) {
	name := strings.Repeat("é", 60)
	got, err := ValidateName(name)
	if err != nil || got != name {
		t.Fatalf("expected 60 accented letters to pass, got %q (err=%v)", got, err)
	}
	if _, err := ValidateName(strings.Repeat("é", 101)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected name too long, got %v", err)
	}

	noon := TimeOfDay{Hour: 12}
	desc := strings.Repeat("ñ", 150)
	e := NewExpense{
		Date:        NewDate(2025, 1, 1),
		Time:        &noon,
		Amount:      Money{Cents: 100},
		WalletID:    1,
		CategoryID:  1,
		Description: &desc,
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected 150 character description to pass, got %v", err)
	}
	long := strings.Repeat("ñ", 201)
	e.Description = &long
	if err := e.Validate(); !errors.Is(err, ErrDescriptionTooLong) {
		t.Fatalf("expected description too long, got %v", err)
	}
}
