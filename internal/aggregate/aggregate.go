// Package aggregate groups ledger rows by calendar month or by tag and sums
// an amount column.
package aggregate

import (
	"sort"

	"financas/internal/core"
)

// MonthTotal is the sum of one month.
type MonthTotal struct {
	Month  core.YearMonth `json:"month"`
	Amount core.Money     `json:"amount"`
}

// KeyTotal is the sum of one tag value (category, goal, card).
type KeyTotal struct {
	Key    string     `json:"key"`
	Amount core.Money `json:"amount"`
}

// SumByMonth groups rows by the year-month of dateOf and sums amountOf.
// The result is ordered by month; months without rows are absent and rows
// with a zero date are skipped.
func SumByMonth[T any](rows []T, dateOf func(T) core.Date, amountOf func(T) core.Money) []MonthTotal {
	sums := make(map[core.YearMonth]core.Money)
	for _, r := range rows {
		d := dateOf(r)
		if d.IsZero() {
			continue
		}
		ym := d.YearMonth()
		sums[ym] = sums[ym].Add(amountOf(r))
	}
	out := make([]MonthTotal, 0, len(sums))
	for ym, amt := range sums {
		out = append(out, MonthTotal{Month: ym, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// ZeroFill returns one entry per month from..to inclusive, taking amounts
// from series and zero elsewhere. Months of series outside the range are
// dropped.
func ZeroFill(series []MonthTotal, from, to core.YearMonth) []MonthTotal {
	byMonth := make(map[core.YearMonth]core.Money, len(series))
	for _, m := range series {
		byMonth[m.Month] = m.Amount
	}
	var out []MonthTotal
	for ym := from; !to.Before(ym); ym = ym.Add(1) {
		out = append(out, MonthTotal{Month: ym, Amount: byMonth[ym]})
	}
	return out
}

// SumByKey groups rows by keyOf and sums amountOf, largest total first
// with ties broken by key.
func SumByKey[T any](rows []T, keyOf func(T) string, amountOf func(T) core.Money) []KeyTotal {
	sums := make(map[string]core.Money)
	for _, r := range rows {
		k := keyOf(r)
		sums[k] = sums[k].Add(amountOf(r))
	}
	out := make([]KeyTotal, 0, len(sums))
	for k, amt := range sums {
		out = append(out, KeyTotal{Key: k, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Sum totals amountOf over rows.
func Sum[T any](rows []T, amountOf func(T) core.Money) core.Money {
	var total core.Money
	for _, r := range rows {
		total = total.Add(amountOf(r))
	}
	return total
}

// Filter returns the rows matching keep.
func Filter[T any](rows []T, keep func(T) bool) []T {
	var out []T
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
