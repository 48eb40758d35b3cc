package reports

import (
	"time"

	"financas/internal/aggregate"
	"financas/internal/core"
	"financas/internal/ledger"

	"github.com/shopspring/decimal"
)

// projectionWindowDays is how far back the projection averages look.
const projectionWindowDays = 90

// Savings rate ratings.
const (
	RatingLow       = "low"
	RatingOK        = "ok"
	RatingExcellent = "excellent"
)

var (
	lowSavingsRate       = decimal.NewFromInt(10)
	excellentSavingsRate = decimal.NewFromInt(20)
)

// MonthRow is one month of the annual summary.
type MonthRow struct {
	Month       core.YearMonth `json:"month"`
	Income      core.Money     `json:"income"`
	Expenses    core.Money     `json:"expenses"`
	Investments core.Money     `json:"investments"`
	Balance     core.Money     `json:"balance"`
}

// AnnualSummary has one row per calendar month plus totals and averages.
type AnnualSummary struct {
	Year     int        `json:"year"`
	Months   []MonthRow `json:"months"`
	Totals   MonthRow   `json:"totals"`
	Averages MonthRow   `json:"averages"`
}

// Annual summarises the twelve months of year. Card statements are not part
// of the annual balance.
func Annual(b *ledger.Book, year int) AnnualSummary {
	s := AnnualSummary{Year: year, Months: make([]MonthRow, 0, 12)}
	for m := time.January; m <= time.December; m++ {
		ym := core.YearMonth{Year: year, Month: m}
		f := monthFlows(b, ym)
		row := MonthRow{
			Month:       ym,
			Income:      f.Income,
			Expenses:    f.Expenses,
			Investments: f.Investments,
			Balance:     f.balance(),
		}
		s.Months = append(s.Months, row)
		s.Totals.Income = s.Totals.Income.Add(row.Income)
		s.Totals.Expenses = s.Totals.Expenses.Add(row.Expenses)
		s.Totals.Investments = s.Totals.Investments.Add(row.Investments)
		s.Totals.Balance = s.Totals.Balance.Add(row.Balance)
	}
	s.Averages = MonthRow{
		Income:      divide(s.Totals.Income, 12),
		Expenses:    divide(s.Totals.Expenses, 12),
		Investments: divide(s.Totals.Investments, 12),
		Balance:     divide(s.Totals.Balance, 12),
	}
	return s
}

// Projection extrapolates the recent monthly averages over a year.
type Projection struct {
	Year               int             `json:"year"`
	Since              core.Date       `json:"since"`
	AverageIncome      core.Money      `json:"average_income"`
	AverageExpenses    core.Money      `json:"average_expenses"`
	AverageInvestments core.Money      `json:"average_investments"`
	MonthlySurplus     core.Money      `json:"monthly_surplus"`
	AnnualIncome       core.Money      `json:"annual_income"`
	AnnualExpenses     core.Money      `json:"annual_expenses"`
	AnnualInvestments  core.Money      `json:"annual_investments"`
	AnnualSavings      core.Money      `json:"annual_savings"`
	RemainingMonths    int             `json:"remaining_months"`
	SavingsToYearEnd   core.Money      `json:"savings_to_year_end"`
	HasSavingsRate     bool            `json:"has_savings_rate"`
	SavingsRate        decimal.Decimal `json:"savings_rate"`
	Rating             string          `json:"rating,omitempty"`
}

// AnnualProjection averages each flow over the last 90 days, dividing by the
// number of distinct months that have rows of that flow, and projects the
// averages over twelve months and over the rest of now's year (the current
// month included).
func AnnualProjection(b *ledger.Book, now core.Date) Projection {
	since := now.AddDays(-projectionWindowDays)
	recent := func(d core.Date) bool { return !d.Before(since) }

	p := Projection{
		Year:  now.Year(),
		Since: since,
		AverageIncome: monthlyAverage(aggregate.SumByMonth(
			aggregate.Filter(b.Incomes.All(), func(e core.IncomeEntry) bool { return recent(e.Date) }),
			func(e core.IncomeEntry) core.Date { return e.Date },
			func(e core.IncomeEntry) core.Money { return e.Amount })),
		AverageExpenses: monthlyAverage(aggregate.SumByMonth(
			aggregate.Filter(b.Expenses.All(), func(e core.ExpenseEntry) bool { return recent(e.Date) }),
			func(e core.ExpenseEntry) core.Date { return e.Date },
			func(e core.ExpenseEntry) core.Money { return e.Amount })),
		AverageInvestments: monthlyAverage(aggregate.SumByMonth(
			aggregate.Filter(b.Investments.All(), func(e core.InvestmentEntry) bool { return recent(e.Date) }),
			func(e core.InvestmentEntry) core.Date { return e.Date },
			func(e core.InvestmentEntry) core.Money { return e.Principal })),
		RemainingMonths: 12 - now.Month() + 1,
	}
	p.MonthlySurplus = p.AverageIncome.Sub(p.AverageExpenses).Sub(p.AverageInvestments)
	p.AnnualIncome = times(p.AverageIncome, 12)
	p.AnnualExpenses = times(p.AverageExpenses, 12)
	p.AnnualInvestments = times(p.AverageInvestments, 12)
	p.AnnualSavings = times(p.MonthlySurplus, 12)
	p.SavingsToYearEnd = times(p.MonthlySurplus, p.RemainingMonths)

	if p.AverageIncome.Cents > 0 {
		p.HasSavingsRate = true
		p.SavingsRate = decimal.NewFromInt(p.MonthlySurplus.Cents).
			Mul(decimal.NewFromInt(100)).
			DivRound(decimal.NewFromInt(p.AverageIncome.Cents), 1)
		switch {
		case p.SavingsRate.LessThan(lowSavingsRate):
			p.Rating = RatingLow
		case p.SavingsRate.GreaterThanOrEqual(excellentSavingsRate):
			p.Rating = RatingExcellent
		default:
			p.Rating = RatingOK
		}
	}
	return p
}

func monthlyAverage(series []aggregate.MonthTotal) core.Money {
	if len(series) == 0 {
		return core.Money{}
	}
	total := aggregate.Sum(series, func(m aggregate.MonthTotal) core.Money { return m.Amount })
	return divide(total, len(series))
}

// divide splits m into n parts rounded half-up to cents.
func divide(m core.Money, n int) core.Money {
	return core.MoneyFromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

func times(m core.Money, n int) core.Money {
	return core.Cents(m.Cents * int64(n))
}
