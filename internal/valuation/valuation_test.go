package valuation

import (
	"errors"
	"testing"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

func entry(id int64, date core.Date, cents int64, rate, goal string) core.InvestmentEntry {
	return core.InvestmentEntry{
		ID:          id,
		Date:        date,
		Instrument:  "CDB",
		Goal:        goal,
		Principal:   core.Cents(cents),
		MonthlyRate: decimal.RequireFromString(rate),
	}
}

func TestValue(t *testing.T) {
	ref := core.NewDate(2025, 6, 15)
	tests := []struct {
		name       string
		entry      core.InvestmentEntry
		wantMonths int
		wantValue  int64
		wantYield  int64
	}{
		{
			name:       "twelve months at one percent",
			entry:      entry(1, core.NewDate(2024, 6, 15), 100000, "1.0", "Reserva"),
			wantMonths: 12,
			wantValue:  112683,
			wantYield:  12683,
		},
		{
			name:       "same month - no growth",
			entry:      entry(2, core.NewDate(2025, 6, 1), 50000, "0.7", "Reserva"),
			wantMonths: 0,
			wantValue:  50000,
			wantYield:  0,
		},
		{
			name:       "partial month does not count",
			entry:      entry(3, core.NewDate(2025, 5, 16), 50000, "2", "Reserva"),
			wantMonths: 0,
			wantValue:  50000,
			wantYield:  0,
		},
		{
			name:       "future entry clamps to zero",
			entry:      entry(4, core.NewDate(2025, 9, 1), 10000, "1", "Casa"),
			wantMonths: 0,
			wantValue:  10000,
			wantYield:  0,
		},
		{
			name:       "negative rate loses value",
			entry:      entry(5, core.NewDate(2025, 4, 15), 10000, "-1", "Casa"),
			wantMonths: 2,
			wantValue:  9801,
			wantYield:  -199,
		},
		{
			name:       "zero rate",
			entry:      entry(6, core.NewDate(2020, 1, 1), 10000, "0", "Casa"),
			wantMonths: 65,
			wantValue:  10000,
			wantYield:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.entry, ref)
			if err != nil {
				t.Fatalf("Value: %v", err)
			}
			if got.Months != tt.wantMonths {
				t.Errorf("Months = %d, want %d", got.Months, tt.wantMonths)
			}
			if got.CurrentValue.Cents != tt.wantValue {
				t.Errorf("CurrentValue = %d, want %d", got.CurrentValue.Cents, tt.wantValue)
			}
			if got.Yield.Cents != tt.wantYield {
				t.Errorf("Yield = %d, want %d", got.Yield.Cents, tt.wantYield)
			}
		})
	}
}

func TestValueAsOf_PreservesOrderAndRejectsZeroDates(t *testing.T) {
	entries := []core.InvestmentEntry{
		entry(9, core.NewDate(2025, 1, 1), 100, "1", "A"),
		entry(3, core.NewDate(2024, 1, 1), 200, "1", "B"),
	}
	vals, err := ValueAsOf(entries, core.NewDate(2025, 1, 1))
	if err != nil {
		t.Fatalf("ValueAsOf: %v", err)
	}
	if len(vals) != 2 || vals[0].Entry.ID != 9 || vals[1].Entry.ID != 3 {
		t.Fatalf("unexpected order %+v", vals)
	}

	if _, err := ValueAsOf(entries, core.Date{}); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("zero reference: expected invalid input, got %v", err)
	}
	bad := append(entries, core.InvestmentEntry{ID: 4, Principal: core.Cents(1)})
	if _, err := ValueAsOf(bad, core.NewDate(2025, 1, 1)); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("zero entry date: expected invalid input, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	vals := []Valuation{
		{Entry: entry(1, core.NewDate(2024, 1, 1), 100000, "1", "A"), CurrentValue: core.Cents(110000), Yield: core.Cents(10000)},
		{Entry: entry(2, core.NewDate(2024, 1, 1), 100000, "1", "B"), CurrentValue: core.Cents(105000), Yield: core.Cents(5000)},
	}
	p := Totals(vals)
	if p.Principal.Cents != 200000 || p.CurrentValue.Cents != 215000 || p.Yield.Cents != 15000 {
		t.Fatalf("unexpected totals %+v", p)
	}
	if !p.YieldPercent.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("YieldPercent = %s", p.YieldPercent)
	}
}

func TestTotals_ZeroPrincipal(t *testing.T) {
	p := Totals(nil)
	if !p.YieldPercent.IsZero() {
		t.Fatalf("expected 0%%, got %s", p.YieldPercent)
	}
}

func TestByGoal(t *testing.T) {
	ref := core.NewDate(2025, 1, 1)
	vals, err := ValueAsOf([]core.InvestmentEntry{
		entry(1, ref, 100, "0", "Casa"),
		entry(2, ref, 500, "0", "Reserva"),
		entry(3, ref, 300, "0", "Casa"),
	}, ref)
	if err != nil {
		t.Fatal(err)
	}
	goals := ByGoal(vals)
	if len(goals) != 2 {
		t.Fatalf("got %d goals", len(goals))
	}
	if goals[0].Goal != "Reserva" || goals[0].CurrentValue.Cents != 500 {
		t.Errorf("first goal = %+v", goals[0])
	}
	if goals[1].Goal != "Casa" || goals[1].Principal.Cents != 400 {
		t.Errorf("second goal = %+v", goals[1])
	}
}

func TestGrow(t *testing.T) {
	got := Grow(core.Cents(100000), decimal.RequireFromString("0.7"), 24)
	// 1000 * 1.007^24 = 1182.244...
	if got.Cents != 118224 {
		t.Fatalf("Grow = %d", got.Cents)
	}
	if Grow(core.Cents(5), decimal.NewFromInt(50), 0).Cents != 5 {
		t.Fatal("zero months should return principal")
	}
}
