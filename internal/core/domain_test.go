package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
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

func TestExpenseValidate(t *testing.T) {
	good := ExpenseEntry{
		Date:          NewDate(2025, 1, 1),
		Description:   "ok",
		Amount:        Money{Cents: 100},
		Category:      "Mercado",
		PaymentMethod: "Pix",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseEntry{
		{Date: Date{}, Description: "a", Amount: Money{Cents: 1}, Category: "c", PaymentMethod: "p"}, // zero date
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}, Category: "c", PaymentMethod: "p"},
		{Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", 201), Amount: Money{Cents: 1}, Category: "c", PaymentMethod: "p"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}, Category: "c", PaymentMethod: "p"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "", PaymentMethod: "p"},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "c", PaymentMethod: " "},
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected invalid input, got %v", i, err)
		}
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	exp := ExpenseEntry{Description: "  pão ", Category: "Mercado"}.Normalize()
	if exp.PaymentMethod != DefaultPaymentMethod || exp.Description != "pão" {
		t.Fatalf("unexpected expense %+v", exp)
	}
	inc := IncomeEntry{Description: "x"}.Normalize()
	if inc.Category != DefaultIncomeCategory {
		t.Fatalf("unexpected income category %q", inc.Category)
	}
	inv := InvestmentEntry{Instrument: "CDB", Goal: "  "}.Normalize()
	if inv.Goal != DefaultGoal {
		t.Fatalf("unexpected goal %q", inv.Goal)
	}
}

func TestInvestmentValidate(t *testing.T) {
	good := InvestmentEntry{
		Date:        NewDate(2025, 3, 1),
		Instrument:  "CDB",
		Goal:        "Reserva",
		Principal:   Cents(100000),
		MonthlyRate: decimal.RequireFromString("-0.1"),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("negative rate should be accepted: %v", err)
	}
	bad := good
	bad.Principal = Cents(0)
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCardPurchaseValidate(t *testing.T) {
	good := CardPurchase{
		PurchaseDate: NewDate(2025, 1, 15),
		Description:  "TV (1/3)",
		Amount:       Cents(0),
		Installments: 3,
		Index:        1,
		DueDate:      NewDate(2025, 2, 10),
		Card:         "Nubank",
		DueDay:       10,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	outOfRange := good
	outOfRange.Index = 4
	if err := outOfRange.Validate(); !errors.Is(err, ErrInvalidInstallments) {
		t.Fatalf("expected ErrInvalidInstallments, got %v", err)
	}
	tooMany := good
	tooMany.Installments = MaxInstallments + 1
	if err := tooMany.Validate(); !errors.Is(err, ErrInvalidInstallments) {
		t.Fatalf("expected ErrInvalidInstallments, got %v", err)
	}
	noCard := good
	noCard.Card = ""
	if err := noCard.Validate(); !errors.Is(err, ErrEmptyCardName) {
		t.Fatalf("expected ErrEmptyCardName, got %v", err)
	}
}

func TestCardDefinitionValidate(t *testing.T) {
	for _, day := range []int{0, 32, -1} {
		if err := (CardDefinition{Name: "Inter", DueDay: day}).Validate(); !errors.Is(err, ErrInvalidDueDay) {
			t.Fatalf("day %d: expected ErrInvalidDueDay, got %v", day, err)
		}
	}
	if err := (CardDefinition{Name: "Inter", DueDay: 31}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestWithIDDoesNotMutateReceiver(t *testing.T) {
	b := BudgetLimit{Category: "Lazer", Limit: Cents(100)}
	withID := b.WithID(7)
	if b.RowID() != 0 || withID.RowID() != 7 {
		t.Fatalf("got %d and %d", b.RowID(), withID.RowID())
	}
}
