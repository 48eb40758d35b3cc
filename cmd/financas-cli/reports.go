package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/reports"
	"financas/internal/valuation"

	"github.com/google/subcommands"
)

type summaryCmd struct {
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the monthly summary and budget usage" }
func (*summaryCmd) Usage() string {
	return `financas-cli summary [-m <YYYY-MM>]

  Displays income, expenses, investments and the card statement of a month,
  followed by the budget of each category.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Month to summarise (defaults to the current month)")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		ym := today().YearMonth()
		if c.month != "" {
			var err error
			if ym, err = core.ParseYearMonth(c.month); err != nil {
				return err
			}
		}
		return a.view(ctx, func(b *ledger.Book) error {
			var out strings.Builder
			out.WriteString(a.render.Monthly(reports.Monthly(b, ym)))
			out.WriteString("\n")
			out.WriteString(a.render.Budget(ym, reports.Budget(b, ym)))
			printMarkdown(out.String())
			return nil
		})
	})
}

type annualCmd struct {
	year int
}

func (*annualCmd) Name() string     { return "annual" }
func (*annualCmd) Synopsis() string { return "display the month by month summary of a year" }
func (*annualCmd) Usage() string {
	return `financas-cli annual [-y <year>]
`
}

func (c *annualCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", time.Now().Year(), "Year to summarise")
}

func (c *annualCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		return a.view(ctx, func(b *ledger.Book) error {
			printMarkdown(a.render.Annual(reports.Annual(b, c.year)))
			return nil
		})
	})
}

type projectionCmd struct{}

func (*projectionCmd) Name() string     { return "projection" }
func (*projectionCmd) Synopsis() string { return "project recent averages over the year" }
func (*projectionCmd) Usage() string {
	return `financas-cli projection

  Averages the last 90 days and projects them over twelve months and over
  the rest of the current year.
`
}

func (*projectionCmd) SetFlags(*flag.FlagSet) {}

func (*projectionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		return a.view(ctx, func(b *ledger.Book) error {
			printMarkdown(a.render.Projection(reports.AnnualProjection(b, today())))
			return nil
		})
	})
}

type cardsCmd struct{}

func (*cardsCmd) Name() string     { return "cards" }
func (*cardsCmd) Synopsis() string { return "display open card statements and upcoming installments" }
func (*cardsCmd) Usage() string {
	return `financas-cli cards
`
}

func (*cardsCmd) SetFlags(*flag.FlagSet) {}

func (*cardsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		return a.view(ctx, func(b *ledger.Book) error {
			printMarkdown(a.render.CardStatus(reports.CardStatusAt(b, today())))
			return nil
		})
	})
}

type portfolioCmd struct {
	date string
}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "value investments at a date" }
func (*portfolioCmd) Usage() string {
	return `financas-cli portfolio [-d <YYYY-MM-DD>]
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Reference date (defaults to today)")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		ref := today()
		if c.date != "" {
			var err error
			if ref, err = core.ParseDate(c.date); err != nil {
				return err
			}
		}
		return a.view(ctx, func(b *ledger.Book) error {
			vals, err := valuation.ValueAsOf(b.Investments.All(), ref)
			if err != nil {
				return err
			}
			printMarkdown(a.render.Portfolio(ref, vals))
			return nil
		})
	})
}
