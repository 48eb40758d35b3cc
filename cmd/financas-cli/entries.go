package main

import (
	"context"
	"flag"
	"fmt"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/storage"

	"github.com/google/subcommands"
)

// entryFlags are the flags shared by the add commands.
type entryFlags struct {
	date        string
	description string
	amount      string
	category    string
}

func (e *entryFlags) set(f *flag.FlagSet, amountUsage string) {
	f.StringVar(&e.date, "d", "", "Date YYYY-MM-DD (defaults to today)")
	f.StringVar(&e.description, "desc", "", "Description")
	f.StringVar(&e.amount, "a", "", amountUsage)
	f.StringVar(&e.category, "c", "", "Category")
}

func (e *entryFlags) parse() (core.Date, core.Money, error) {
	d := today()
	if e.date != "" {
		var err error
		if d, err = core.ParseDate(e.date); err != nil {
			return core.Date{}, core.Money{}, err
		}
	}
	m, err := core.ParseMoney(e.amount)
	return d, m, err
}

type addExpenseCmd struct {
	entryFlags
	method string
}

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense" }
func (*addExpenseCmd) Usage() string {
	return `financas-cli add-expense -c <category> -desc <description> -a <amount> [-d <date>] [-p <method>]
`
}

func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f, "Amount, e.g. 45,90")
	f.StringVar(&c.method, "p", "Pix", "Payment method")
}

func (c *addExpenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		d, amount, err := c.parse()
		if err != nil {
			return err
		}
		return a.update(ctx, string(storage.TableExpenses), log.OpCreate, func(b *ledger.Book) error {
			e, err := b.AddExpense(core.ExpenseEntry{
				Date: d, Category: c.category, Description: c.description, Amount: amount, PaymentMethod: c.method,
			})
			if err == nil {
				fmt.Printf("Expense %d recorded: %s %s\n", e.ID, e.Description, amount.Format(a.cfg.Currency))
			}
			return err
		})
	})
}

type addIncomeCmd struct {
	entryFlags
}

func (*addIncomeCmd) Name() string     { return "add-income" }
func (*addIncomeCmd) Synopsis() string { return "record an income" }
func (*addIncomeCmd) Usage() string {
	return `financas-cli add-income -c <category> -desc <description> -a <amount> [-d <date>]
`
}

func (c *addIncomeCmd) SetFlags(f *flag.FlagSet) {
	c.entryFlags.set(f, "Amount, e.g. 5000,00")
}

func (c *addIncomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		d, amount, err := c.parse()
		if err != nil {
			return err
		}
		return a.update(ctx, string(storage.TableIncome), log.OpCreate, func(b *ledger.Book) error {
			e, err := b.AddIncome(core.IncomeEntry{
				Date: d, Description: c.description, Amount: amount, Category: c.category,
			})
			if err == nil {
				fmt.Printf("Income %d recorded: %s %s\n", e.ID, e.Description, amount.Format(a.cfg.Currency))
			}
			return err
		})
	})
}

type addInvestmentCmd struct {
	date       string
	instrument string
	goal       string
	principal  string
	rate       string
}

func (*addInvestmentCmd) Name() string     { return "add-investment" }
func (*addInvestmentCmd) Synopsis() string { return "record an investment contribution" }
func (*addInvestmentCmd) Usage() string {
	return `financas-cli add-investment -t <type> -g <goal> -a <principal> -r <monthly rate %> [-d <date>]
`
}

func (c *addInvestmentCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date YYYY-MM-DD (defaults to today)")
	f.StringVar(&c.instrument, "t", "", "Instrument type, e.g. CDB")
	f.StringVar(&c.goal, "g", "", "Goal tag")
	f.StringVar(&c.principal, "a", "", "Principal amount")
	f.StringVar(&c.rate, "r", "0", "Monthly rate in percent, e.g. 0,8")
}

func (c *addInvestmentCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		flags := entryFlags{date: c.date, amount: c.principal}
		d, principal, err := flags.parse()
		if err != nil {
			return err
		}
		rate, err := core.ParseRate(c.rate)
		if err != nil {
			return err
		}
		return a.update(ctx, string(storage.TableInvestments), log.OpCreate, func(b *ledger.Book) error {
			e, err := b.AddInvestment(core.InvestmentEntry{
				Date: d, Instrument: c.instrument, Goal: c.goal, Principal: principal, MonthlyRate: rate,
			})
			if err == nil {
				fmt.Printf("Investment %d recorded: %s %s at %s%% a month\n",
					e.ID, e.Instrument, principal.Format(a.cfg.Currency), rate.String())
			}
			return err
		})
	})
}

type setBudgetCmd struct {
	category string
	limit    string
	remove   bool
}

func (*setBudgetCmd) Name() string     { return "set-budget" }
func (*setBudgetCmd) Synopsis() string { return "set or remove a category's monthly limit" }
func (*setBudgetCmd) Usage() string {
	return `financas-cli set-budget -c <category> (-l <limit> | -rm)
`
}

func (c *setBudgetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "c", "", "Category")
	f.StringVar(&c.limit, "l", "", "Monthly limit")
	f.BoolVar(&c.remove, "rm", false, "Remove the limit instead of setting it")
}

func (c *setBudgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		if c.remove {
			return a.update(ctx, string(storage.TableBudget), log.OpDelete, func(b *ledger.Book) error {
				return b.DeleteBudget(c.category)
			})
		}
		limit, err := core.ParseMoney(c.limit)
		if err != nil {
			return err
		}
		return a.update(ctx, string(storage.TableBudget), log.OpSetBudget, func(b *ledger.Book) error {
			l, err := b.SetBudget(c.category, limit)
			if err == nil {
				fmt.Printf("Budget for %s set to %s\n", l.Category, l.Limit.Format(a.cfg.Currency))
			}
			return err
		})
	})
}
