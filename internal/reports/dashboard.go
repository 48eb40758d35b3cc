package reports

import (
	"fmt"

	"financas/internal/aggregate"
	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/valuation"
)

const cashFlowMonths = 6

// CashFlow is one month of the dashboard cash-flow chart.
type CashFlow struct {
	Month       core.YearMonth `json:"month"`
	Income      core.Money     `json:"income"`
	Expenses    core.Money     `json:"expenses"`
	Investments core.Money     `json:"investments"`
	Balance     core.Money     `json:"balance"`
}

// Dashboard gathers the headline figures of a month.
type Dashboard struct {
	Date               core.Date              `json:"date"`
	Month              MonthlySummary         `json:"month"`
	Portfolio          valuation.Portfolio    `json:"portfolio"`
	ExpensesByCategory []aggregate.KeyTotal   `json:"expenses_by_category"`
	InvestmentsByGoal  []valuation.GoalTotal  `json:"investments_by_goal"`
	InvestedOverTime   []aggregate.MonthTotal `json:"invested_over_time"`
	CashFlow           []CashFlow             `json:"cash_flow"`
	Budget             []BudgetLine           `json:"budget"`
	PendingStatements  []Statement            `json:"pending_statements"`
	Valuations         []valuation.Valuation  `json:"-"`
}

// DashboardAt builds the dashboard for now's month. Cash flow covers the
// six months ending with now's month with empty months zero-filled;
// investments are valued at now.
func DashboardAt(b *ledger.Book, now core.Date) (Dashboard, error) {
	ym := now.YearMonth()
	vals, err := valuation.ValueAsOf(b.Investments.All(), now)
	if err != nil {
		return Dashboard{}, fmt.Errorf("value investments: %w", err)
	}
	summary := Monthly(b, ym)

	d := Dashboard{
		Date:              now,
		Month:             summary,
		Portfolio:         valuation.Totals(vals),
		InvestmentsByGoal: valuation.ByGoal(vals),
		Budget:            Budget(b, ym),
		PendingStatements: CardStatusAt(b, now).Statements,
		Valuations:        vals,
	}
	for _, c := range summary.Categories {
		d.ExpensesByCategory = append(d.ExpensesByCategory, aggregate.KeyTotal{Key: c.Category, Amount: c.Spent})
	}

	var running core.Money
	for _, m := range aggregate.SumByMonth(b.Investments.All(),
		func(e core.InvestmentEntry) core.Date { return e.Date },
		func(e core.InvestmentEntry) core.Money { return e.Principal }) {
		running = running.Add(m.Amount)
		d.InvestedOverTime = append(d.InvestedOverTime, aggregate.MonthTotal{Month: m.Month, Amount: running})
	}

	d.CashFlow = CashFlowSeries(b, ym.Add(-(cashFlowMonths - 1)), ym)
	return d, nil
}

// CashFlowSeries returns one zero-filled row per month from..to.
func CashFlowSeries(b *ledger.Book, from, to core.YearMonth) []CashFlow {
	income := aggregate.ZeroFill(aggregate.SumByMonth(b.Incomes.All(),
		func(e core.IncomeEntry) core.Date { return e.Date },
		func(e core.IncomeEntry) core.Money { return e.Amount }), from, to)
	expenses := aggregate.ZeroFill(aggregate.SumByMonth(b.Expenses.All(),
		func(e core.ExpenseEntry) core.Date { return e.Date },
		func(e core.ExpenseEntry) core.Money { return e.Amount }), from, to)
	investments := aggregate.ZeroFill(aggregate.SumByMonth(b.Investments.All(),
		func(e core.InvestmentEntry) core.Date { return e.Date },
		func(e core.InvestmentEntry) core.Money { return e.Principal }), from, to)

	out := make([]CashFlow, len(income))
	for i := range income {
		out[i] = CashFlow{
			Month:       income[i].Month,
			Income:      income[i].Amount,
			Expenses:    expenses[i].Amount,
			Investments: investments[i].Amount,
		}
		out[i].Balance = out[i].Income.Sub(out[i].Expenses).Sub(out[i].Investments)
	}
	return out
}
