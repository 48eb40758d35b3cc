// Package reports derives summaries from a user's book: monthly and annual
// summaries, the annual projection, card statement status, budget status
// and the dashboard. Every report is computed on demand and never stored.
package reports

import (
	"strings"

	"financas/internal/aggregate"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/valuation"

	"github.com/shopspring/decimal"
)

// budgetWarnPercent is the share of a limit above which a category is flagged.
var budgetWarnPercent = decimal.NewFromInt(90)

// MonthlySummary is the cash picture of one calendar month.
type MonthlySummary struct {
	Month         core.YearMonth   `json:"month"`
	Income        core.Money       `json:"income"`
	Expenses      core.Money       `json:"expenses"`
	Investments   core.Money       `json:"investments"`
	CardStatement core.Money       `json:"card_statement"`
	Balance       core.Money       `json:"balance"`
	Categories    []CategoryStatus `json:"categories"`
}

// CategoryStatus is spending of one category compared to its budget.
type CategoryStatus struct {
	Category string          `json:"category"`
	Spent    core.Money      `json:"spent"`
	Limit    core.Money      `json:"limit"`
	HasLimit bool            `json:"has_limit"`
	Percent  decimal.Decimal `json:"percent"`
	Warning  bool            `json:"warning"`
}

// flows holds the month totals shared by several reports.
type flows struct {
	Income      core.Money
	Expenses    core.Money
	Investments core.Money
}

func (f flows) balance() core.Money {
	return f.Income.Sub(f.Expenses).Sub(f.Investments)
}

func monthFlows(b *ledger.Book, ym core.YearMonth) flows {
	return flows{
		Income: aggregate.Sum(b.Incomes.All(), func(e core.IncomeEntry) core.Money {
			return inMonth(ym, e.Date, e.Amount)
		}),
		Expenses: aggregate.Sum(b.Expenses.All(), func(e core.ExpenseEntry) core.Money {
			return inMonth(ym, e.Date, e.Amount)
		}),
		Investments: aggregate.Sum(b.Investments.All(), func(e core.InvestmentEntry) core.Money {
			return inMonth(ym, e.Date, e.Principal)
		}),
	}
}

func inMonth(ym core.YearMonth, d core.Date, m core.Money) core.Money {
	if ym.Contains(d) {
		return m
	}
	return core.Money{}
}

// Monthly summarises ym. The card statement counts only unpaid
// installments due in ym, and is subtracted from the balance.
func Monthly(b *ledger.Book, ym core.YearMonth) MonthlySummary {
	f := monthFlows(b, ym)
	card := b.StatementTotal(ym, "", true)
	s := MonthlySummary{
		Month:         ym,
		Income:        f.Income,
		Expenses:      f.Expenses,
		Investments:   f.Investments,
		CardStatement: card,
		Balance:       f.balance().Sub(card),
	}

	expenses := aggregate.Filter(b.Expenses.All(), func(e core.ExpenseEntry) bool { return ym.Contains(e.Date) })
	byCategory := aggregate.SumByKey(expenses,
		func(e core.ExpenseEntry) string { return e.Category },
		func(e core.ExpenseEntry) core.Money { return e.Amount })
	for _, kt := range byCategory {
		cs := CategoryStatus{Category: kt.Key, Spent: kt.Amount}
		if limit, ok := b.BudgetFor(kt.Key); ok {
			cs.Limit = limit.Limit
			cs.HasLimit = true
			cs.Percent = valuation.Percent(kt.Amount, limit.Limit)
			cs.Warning = cs.Percent.GreaterThan(budgetWarnPercent)
		}
		s.Categories = append(s.Categories, cs)
	}
	return s
}

// BudgetLine is one budget category for a month.
type BudgetLine struct {
	Category  string          `json:"category"`
	Limit     core.Money      `json:"limit"`
	Spent     core.Money      `json:"spent"`
	Remaining core.Money      `json:"remaining"`
	Percent   decimal.Decimal `json:"percent"`
	Warning   bool            `json:"warning"`
	Exceeded  bool            `json:"exceeded"`
}

// Budget compares every budget category with what was spent in ym. The card
// category is measured against the whole statement due in ym.
func Budget(b *ledger.Book, ym core.YearMonth) []BudgetLine {
	var lines []BudgetLine
	for _, limit := range b.Budget.All() {
		var spent core.Money
		if strings.EqualFold(limit.Category, core.CardBudgetCategory) {
			spent = b.StatementTotal(ym, "", false)
		} else {
			spent = aggregate.Sum(b.Expenses.All(), func(e core.ExpenseEntry) core.Money {
				if !strings.EqualFold(e.Category, limit.Category) {
					return core.Money{}
				}
				return inMonth(ym, e.Date, e.Amount)
			})
		}
		pct := valuation.Percent(spent, limit.Limit)
		lines = append(lines, BudgetLine{
			Category:  limit.Category,
			Limit:     limit.Limit,
			Spent:     spent,
			Remaining: limit.Limit.Sub(spent),
			Percent:   pct,
			Warning:   pct.GreaterThan(budgetWarnPercent),
			Exceeded:  spent.Cents > limit.Limit.Cents,
		})
	}
	return lines
}
