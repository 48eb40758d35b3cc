// Package valuation derives the current value of investment contributions
// from their monthly compound rate. Nothing here is persisted; valuations
// are recomputed on demand.
package valuation

import (
	"fmt"
	"sort"

	"financas/internal/core"

	"github.com/shopspring/decimal"
)

// workingPlaces bounds intermediate precision while compounding.
const workingPlaces = 12

var hundred = decimal.NewFromInt(100)

// Valuation is an investment entry valued at a reference date.
type Valuation struct {
	Entry        core.InvestmentEntry `json:"entry"`
	Months       int                  `json:"months"`
	CurrentValue core.Money           `json:"current_value"`
	Yield        core.Money           `json:"yield"`
}

// Portfolio aggregates a set of valuations.
type Portfolio struct {
	Principal    core.Money      `json:"principal"`
	CurrentValue core.Money      `json:"current_value"`
	Yield        core.Money      `json:"yield"`
	YieldPercent decimal.Decimal `json:"yield_percent"`
}

// GoalTotal is the portfolio restricted to one goal tag.
type GoalTotal struct {
	Goal string `json:"goal"`
	Portfolio
}

// ValueAsOf values every entry at ref, preserving input order.
//
// Elapsed months are whole completed calendar months. Entries dated after
// ref count as zero months, so their value equals the principal.
func ValueAsOf(entries []core.InvestmentEntry, ref core.Date) ([]Valuation, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: reference date is zero", core.ErrInvalidDate)
	}
	out := make([]Valuation, 0, len(entries))
	for _, e := range entries {
		v, err := Value(e, ref)
		if err != nil {
			return nil, fmt.Errorf("investment %d: %w", e.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Value values a single entry at ref.
func Value(e core.InvestmentEntry, ref core.Date) (Valuation, error) {
	if e.Date.IsZero() {
		return Valuation{}, fmt.Errorf("%w: entry date is zero", core.ErrInvalidDate)
	}
	months := core.MonthsBetween(e.Date, ref)
	if months < 0 {
		months = 0
	}
	current := Grow(e.Principal, e.MonthlyRate, months)
	return Valuation{
		Entry:        e,
		Months:       months,
		CurrentValue: current,
		Yield:        current.Sub(e.Principal),
	}, nil
}

// Grow compounds principal at a monthly percentage rate for the given
// number of months, rounding the result half-up to cents.
func Grow(principal core.Money, monthlyRate decimal.Decimal, months int) core.Money {
	if months <= 0 {
		return principal
	}
	factor := decimal.NewFromInt(1).Add(monthlyRate.Div(hundred))
	value := principal.Decimal()
	for i := 0; i < months; i++ {
		value = value.Mul(factor).Round(workingPlaces)
	}
	return core.MoneyFromDecimal(value)
}

// Totals sums a set of valuations. The yield percentage is 0 when there is
// no principal.
func Totals(vals []Valuation) Portfolio {
	var p Portfolio
	for _, v := range vals {
		p.Principal = p.Principal.Add(v.Entry.Principal)
		p.CurrentValue = p.CurrentValue.Add(v.CurrentValue)
		p.Yield = p.Yield.Add(v.Yield)
	}
	p.YieldPercent = Percent(p.Yield, p.Principal)
	return p
}

// ByGoal groups valuations by goal tag, largest current value first.
func ByGoal(vals []Valuation) []GoalTotal {
	groups := make(map[string][]Valuation)
	for _, v := range vals {
		groups[v.Entry.Goal] = append(groups[v.Entry.Goal], v)
	}
	out := make([]GoalTotal, 0, len(groups))
	for goal, vs := range groups {
		out = append(out, GoalTotal{Goal: goal, Portfolio: Totals(vs)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrentValue.Cents != out[j].CurrentValue.Cents {
			return out[i].CurrentValue.Cents > out[j].CurrentValue.Cents
		}
		return out[i].Goal < out[j].Goal
	})
	return out
}

// Percent returns part/whole*100 rounded to two places, or 0 when whole is 0.
func Percent(part, whole core.Money) decimal.Decimal {
	if whole.Cents == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part.Cents).Mul(hundred).DivRound(decimal.NewFromInt(whole.Cents), 2)
}
