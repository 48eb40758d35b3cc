package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"financas/internal/core"
)

func TestBook_IncomeCRUD(t *testing.T) {
	b := NewBook("ana")
	inc, err := b.AddIncome(core.IncomeEntry{Date: core.NewDate(2025, 1, 5), Description: "Empresa", Amount: core.Cents(500000)})
	if err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if inc.ID != 1 || inc.Category != core.DefaultIncomeCategory {
		t.Fatalf("unexpected income %+v", inc)
	}

	edited, err := b.EditIncome(inc.ID, core.IncomeEntry{Date: inc.Date, Description: "Empresa", Amount: core.Cents(550000), Category: "Bônus"})
	if err != nil {
		t.Fatalf("EditIncome: %v", err)
	}
	if edited.ID != inc.ID || edited.Amount.Cents != 550000 {
		t.Fatalf("unexpected edit %+v", edited)
	}

	if _, err := b.EditIncome(inc.ID, core.IncomeEntry{Date: inc.Date, Description: "x", Amount: core.Cents(0)}); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if got, _ := b.Incomes.Get(inc.ID); got.Amount.Cents != 550000 {
		t.Fatal("failed edit must leave the row unchanged")
	}

	if err := b.DeleteIncome(inc.ID); err != nil {
		t.Fatalf("DeleteIncome: %v", err)
	}
	if err := b.DeleteIncome(inc.ID); !errors.Is(err, core.ErrMissingResource) {
		t.Fatalf("expected missing resource, got %v", err)
	}
}

func TestBook_FailedOperationLeavesBookUsable(t *testing.T) {
	b := NewBook("ana")
	if _, err := b.AddExpense(core.ExpenseEntry{Date: core.NewDate(2025, 1, 5), Description: "x", Amount: core.Cents(-1), Category: "c"}); err == nil {
		t.Fatal("expected error")
	}
	exp, err := b.AddExpense(core.ExpenseEntry{Date: core.NewDate(2025, 1, 5), Description: "pão", Amount: core.Cents(700), Category: "Mercado"})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if exp.ID != 1 || exp.PaymentMethod != core.DefaultPaymentMethod {
		t.Fatalf("unexpected expense %+v", exp)
	}
}

func TestBook_DefineCardUpserts(t *testing.T) {
	b := NewBook("ana")
	first, err := b.DefineCard("Nubank", 10)
	if err != nil {
		t.Fatalf("DefineCard: %v", err)
	}
	second, err := b.DefineCard(" nubank ", 15)
	if err != nil {
		t.Fatalf("DefineCard: %v", err)
	}
	if b.Cards.Len() != 1 || second.ID != first.ID || second.DueDay != 15 {
		t.Fatalf("expected in-place update, got %+v (len %d)", second, b.Cards.Len())
	}
	if _, err := b.DefineCard("Inter", 0); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Fatalf("expected ErrInvalidDueDay, got %v", err)
	}
}

func TestBook_AddCardPurchase(t *testing.T) {
	b := NewBook("ana")
	if _, err := b.DefineCard("Nubank", 10); err != nil {
		t.Fatal(err)
	}

	res, err := b.AddCardPurchase(PurchaseRequest{
		Date:         core.NewDate(2025, 3, 15),
		Description:  "Geladeira",
		Total:        core.Cents(30000),
		Installments: 3,
		Card:         "nubank",
	})
	if err != nil {
		t.Fatalf("AddCardPurchase: %v", err)
	}
	if len(res.Rows) != 3 || b.CardPurchases.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}
	for i, r := range res.Rows {
		if r.ID != int64(i+1) || r.Card != "Nubank" || r.DueDay != 10 {
			t.Errorf("row %d unexpected %+v", i, r)
		}
	}
	if !res.Rows[0].DueDate.Equal(core.NewDate(2025, 4, 10).Time) {
		t.Errorf("first due = %s", res.Rows[0].DueDate)
	}
	if res.BudgetWarning != nil {
		t.Errorf("no budget defined, got warning %+v", res.BudgetWarning)
	}
}

func TestBook_AddCardPurchaseUnknownCard(t *testing.T) {
	b := NewBook("ana")
	_, err := b.AddCardPurchase(PurchaseRequest{
		Date:         core.NewDate(2025, 3, 15),
		Description:  "x",
		Total:        core.Cents(100),
		Installments: 1,
		Card:         "Fantasma",
	})
	if !errors.Is(err, core.ErrMissingResource) {
		t.Fatalf("expected missing resource, got %v", err)
	}

	// An explicit due day does not need a definition.
	if _, err := b.AddCardPurchase(PurchaseRequest{
		Date:         core.NewDate(2025, 3, 15),
		Description:  "x",
		Total:        core.Cents(100),
		Installments: 1,
		Card:         "Fantasma",
		DueDay:       5,
	}); err != nil {
		t.Fatalf("explicit due day: %v", err)
	}
}

func TestBook_AddCardPurchaseBudgetWarning(t *testing.T) {
	b := NewBook("ana")
	b.SeedDefaultBudget(core.Cents(150000))
	req := PurchaseRequest{
		Date:           core.NewDate(2025, 3, 1),
		Description:    "Notebook",
		Total:          core.Cents(300000),
		Installments:   2,
		Card:           "Inter",
		DueDay:         10,
		StatementMonth: core.YearMonth{Year: 2025, Month: time.May},
	}
	res, err := b.AddCardPurchase(req)
	if err != nil {
		t.Fatalf("AddCardPurchase: %v", err)
	}
	if res.BudgetWarning != nil {
		t.Fatalf("1500.00 does not exceed the limit, got %+v", res.BudgetWarning)
	}
	req.Total = core.Cents(1000)
	req.Installments = 1
	res, err = b.AddCardPurchase(req)
	if err != nil {
		t.Fatalf("AddCardPurchase: %v", err)
	}
	w := res.BudgetWarning
	if w == nil {
		t.Fatal("expected budget warning")
	}
	if w.Month != (core.YearMonth{Year: 2025, Month: time.May}) || w.Total.Cents != 151000 || w.Excess.Cents != 1000 {
		t.Fatalf("unexpected warning %+v", w)
	}
}

func TestBook_MarkStatementPaid(t *testing.T) {
	b := NewBook("ana")
	add := func(card string, total int64, n int) {
		t.Helper()
		if _, err := b.AddCardPurchase(PurchaseRequest{
			Date: core.NewDate(2025, 1, 5), Description: "x", Total: core.Cents(total),
			Installments: n, Card: card, DueDay: 10,
		}); err != nil {
			t.Fatal(err)
		}
	}
	add("Nubank", 20000, 2) // Jan, Feb
	add("Inter", 5000, 1)   // Jan

	jan := core.YearMonth{Year: 2025, Month: time.January}
	res, err := b.MarkStatementPaid(jan, "nubank", true)
	if err != nil {
		t.Fatalf("MarkStatementPaid: %v", err)
	}
	if res.Count != 1 || res.Total.Cents != 10000 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := b.StatementTotal(jan, "", true); got.Cents != 5000 {
		t.Fatalf("unpaid January total = %d, want 5000", got.Cents)
	}

	res, err = b.MarkStatementPaid(jan, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 2 {
		t.Fatalf("all cards: count = %d", res.Count)
	}
	if _, err := b.MarkStatementPaid(core.YearMonth{}, "", true); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid month error, got %v", err)
	}
}

func TestBook_SetInstallmentPaidAndDeletePurchase(t *testing.T) {
	b := NewBook("ana")
	res, err := b.AddCardPurchase(PurchaseRequest{
		Date: core.NewDate(2025, 1, 5), Description: "TV", Total: core.Cents(90000),
		Installments: 3, Card: "Inter", DueDay: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	paid, err := b.SetInstallmentPaid(res.Rows[1].ID, true)
	if err != nil || !paid.Paid {
		t.Fatalf("SetInstallmentPaid = %+v, %v", paid, err)
	}
	if err := b.DeleteCardPurchase(res.Rows[0].ID); err != nil {
		t.Fatal(err)
	}
	n, err := b.DeletePurchase(res.Rows[0].PurchaseID)
	if err != nil || n != 2 {
		t.Fatalf("DeletePurchase = %d, %v", n, err)
	}
	if _, err := b.DeletePurchase(res.Rows[0].PurchaseID); !errors.Is(err, core.ErrMissingResource) {
		t.Fatalf("expected missing resource, got %v", err)
	}
}

func TestBook_Budget(t *testing.T) {
	b := NewBook("ana")
	b.SeedDefaultBudget(core.Cents(150000))
	b.SeedDefaultBudget(core.Cents(1))
	if b.Budget.Len() != 1 {
		t.Fatalf("seed must only apply to an empty budget")
	}

	first, err := b.SetBudget("Lazer", core.Cents(30000))
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.SetBudget("lazer", core.Cents(40000))
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || b.Budget.Len() != 2 {
		t.Fatalf("expected in-place update, got %+v (len %d)", second, b.Budget.Len())
	}
	if _, err := b.SetBudget("Lazer", core.Cents(0)); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := b.DeleteBudget("LAZER"); err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteBudget("Lazer"); !errors.Is(err, core.ErrMissingResource) {
		t.Fatalf("expected missing resource, got %v", err)
	}
}

func TestBook_AddCardPurchaseRejectsUnstorableRows(t *testing.T) {
	tests := []struct {
		name string
		req  PurchaseRequest
	}{
		{"due dates past year 9999", PurchaseRequest{Date: core.NewDate(9999, 12, 20), Description: "TV", Total: core.Cents(1000), Installments: 2, Card: "Nubank", DueDay: 10}},
		{"too many installments", PurchaseRequest{Date: core.NewDate(2025, 1, 5), Description: "TV", Total: core.Cents(1000), Installments: 100000, Card: "Nubank", DueDay: 10}},
		{"labelled description too long", PurchaseRequest{Date: core.NewDate(2025, 1, 5), Description: strings.Repeat("x", 200), Total: core.Cents(1000), Installments: 2, Card: "Nubank", DueDay: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook("ana")
			if _, err := b.AddCardPurchase(tt.req); !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
			if b.CardPurchases.Len() != 0 {
				t.Fatalf("book changed: %d rows", b.CardPurchases.Len())
			}
		})
	}
}
