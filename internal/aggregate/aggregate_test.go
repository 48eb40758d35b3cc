package aggregate

import (
	"testing"
	"time"

	"financas/internal/core"
)

func expense(d core.Date, cat string, cents int64) core.ExpenseEntry {
	return core.ExpenseEntry{Date: d, Category: cat, Description: "x", Amount: core.Cents(cents), PaymentMethod: "Pix"}
}

func expDate(e core.ExpenseEntry) core.Date    { return e.Date }
func expAmount(e core.ExpenseEntry) core.Money { return e.Amount }

func TestSumByMonth_OrderedWithGaps(t *testing.T) {
	rows := []core.ExpenseEntry{
		expense(core.NewDate(2025, 3, 2), "A", 100),
		expense(core.NewDate(2025, 1, 5), "A", 50),
		expense(core.NewDate(2025, 3, 30), "B", 25),
		expense(core.NewDate(2024, 12, 31), "B", 10),
		expense(core.Date{}, "B", 999),
	}
	got := SumByMonth(rows, expDate, expAmount)
	want := []MonthTotal{
		{Month: core.YearMonth{Year: 2024, Month: time.December}, Amount: core.Cents(10)},
		{Month: core.YearMonth{Year: 2025, Month: time.January}, Amount: core.Cents(50)},
		{Month: core.YearMonth{Year: 2025, Month: time.March}, Amount: core.Cents(125)},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSumByMonth_Empty(t *testing.T) {
	if got := SumByMonth(nil, expDate, expAmount); len(got) != 0 {
		t.Fatalf("expected empty series, got %+v", got)
	}
}

func TestZeroFill(t *testing.T) {
	series := []MonthTotal{
		{Month: core.YearMonth{Year: 2025, Month: time.January}, Amount: core.Cents(50)},
		{Month: core.YearMonth{Year: 2025, Month: time.March}, Amount: core.Cents(125)},
		{Month: core.YearMonth{Year: 2025, Month: time.July}, Amount: core.Cents(1)},
	}
	from := core.YearMonth{Year: 2024, Month: time.December}
	to := core.YearMonth{Year: 2025, Month: time.April}
	got := ZeroFill(series, from, to)
	wantCents := []int64{0, 50, 0, 125, 0}
	if len(got) != len(wantCents) {
		t.Fatalf("got %d months", len(got))
	}
	for i, w := range wantCents {
		if got[i].Amount.Cents != w {
			t.Errorf("month %s = %d, want %d", got[i].Month, got[i].Amount.Cents, w)
		}
		if want := from.Add(i); got[i].Month != want {
			t.Errorf("month %d = %s, want %s", i, got[i].Month, want)
		}
	}
}

func TestZeroFill_EmptyRange(t *testing.T) {
	from := core.YearMonth{Year: 2025, Month: time.May}
	if got := ZeroFill(nil, from, from.Add(-1)); len(got) != 0 {
		t.Fatalf("expected nothing, got %+v", got)
	}
}

func TestSumByKey(t *testing.T) {
	rows := []core.ExpenseEntry{
		expense(core.NewDate(2025, 1, 1), "Mercado", 100),
		expense(core.NewDate(2025, 1, 2), "Lazer", 300),
		expense(core.NewDate(2025, 1, 3), "Mercado", 250),
		expense(core.NewDate(2025, 1, 4), "Casa", 300),
	}
	got := SumByKey(rows, func(e core.ExpenseEntry) string { return e.Category }, expAmount)
	want := []KeyTotal{{"Mercado", core.Cents(350)}, {"Casa", core.Cents(300)}, {"Lazer", core.Cents(300)}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if total := Sum(rows, expAmount); total.Cents != 950 {
		t.Errorf("Sum = %d", total.Cents)
	}
}
