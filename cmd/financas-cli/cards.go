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

type addPurchaseCmd struct {
	date         string
	description  string
	total        string
	installments int
	card         string
	dueDay       int
	statement    string
	firstDue     string
}

func (*addPurchaseCmd) Name() string     { return "add-purchase" }
func (*addPurchaseCmd) Synopsis() string { return "record a card purchase split in installments" }
func (*addPurchaseCmd) Usage() string {
	return `financas-cli add-purchase -card <card> -desc <description> -a <total> [-n <installments>]
    [-d <date>] [-due-day <day> | -statement <YYYY-MM> | -first-due <YYYY-MM-DD>]

  Splits the total into installments due monthly. Without -due-day the card's
  defined due day is used.
`
}

func (c *addPurchaseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Purchase date YYYY-MM-DD (defaults to today)")
	f.StringVar(&c.description, "desc", "", "Description")
	f.StringVar(&c.total, "a", "", "Total amount")
	f.IntVar(&c.installments, "n", 1, "Number of installments")
	f.StringVar(&c.card, "card", "", "Card name")
	f.IntVar(&c.dueDay, "due-day", 0, "Due day of the card")
	f.StringVar(&c.statement, "statement", "", "Statement month of the first installment")
	f.StringVar(&c.firstDue, "first-due", "", "Exact due date of the first installment")
}

func (c *addPurchaseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		flags := entryFlags{date: c.date, amount: c.total}
		d, total, err := flags.parse()
		if err != nil {
			return err
		}
		req := ledger.PurchaseRequest{
			Date: d, Description: c.description, Total: total,
			Installments: c.installments, Card: c.card, DueDay: c.dueDay,
		}
		if c.statement != "" {
			if req.StatementMonth, err = core.ParseYearMonth(c.statement); err != nil {
				return err
			}
		}
		if c.firstDue != "" {
			if req.FirstDue, err = core.ParseDate(c.firstDue); err != nil {
				return err
			}
		}
		return a.update(ctx, string(storage.TableCardPurchases), log.OpCreate, func(b *ledger.Book) error {
			res, err := b.AddCardPurchase(req)
			if err != nil {
				return err
			}
			for _, p := range res.Rows {
				fmt.Printf("%d/%d due %s: %s\n", p.Index, p.Installments, p.DueDate, p.Amount.Format(a.cfg.Currency))
			}
			if res.BudgetWarning != nil {
				fmt.Printf("Warning: %s\n", res.BudgetWarning)
			}
			return nil
		})
	})
}

type defineCardCmd struct {
	name   string
	dueDay int
}

func (*defineCardCmd) Name() string     { return "define-card" }
func (*defineCardCmd) Synopsis() string { return "define a card and its due day" }
func (*defineCardCmd) Usage() string {
	return `financas-cli define-card -card <name> -due-day <day>
`
}

func (c *defineCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "card", "", "Card name")
	f.IntVar(&c.dueDay, "due-day", 0, "Due day, 1 to 31")
}

func (c *defineCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		return a.update(ctx, string(storage.TableCards), log.OpDefineCard, func(b *ledger.Book) error {
			def, err := b.DefineCard(c.name, c.dueDay)
			if err == nil {
				fmt.Printf("Card %s due on day %d\n", def.Name, def.DueDay)
			}
			return err
		})
	})
}

type payStatementCmd struct {
	month  string
	card   string
	unpaid bool
}

func (*payStatementCmd) Name() string     { return "pay-statement" }
func (*payStatementCmd) Synopsis() string { return "mark every installment of a statement as paid" }
func (*payStatementCmd) Usage() string {
	return `financas-cli pay-statement -m <YYYY-MM> [-card <card>] [-unpaid]

  Without -card every card's installments due in the month are marked.
`
}

func (c *payStatementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "m", "", "Statement month")
	f.StringVar(&c.card, "card", "", "Card name (all cards when empty)")
	f.BoolVar(&c.unpaid, "unpaid", false, "Mark the installments as unpaid instead")
}

func (c *payStatementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		ym, err := core.ParseYearMonth(c.month)
		if err != nil {
			return err
		}
		return a.update(ctx, string(storage.TableCardPurchases), log.OpMarkPaid, func(b *ledger.Book) error {
			res, err := b.MarkStatementPaid(ym, c.card, !c.unpaid)
			if err == nil {
				fmt.Printf("%d installments of %s updated (%s)\n", res.Count, res.Month, res.Total.Format(a.cfg.Currency))
			}
			return err
		})
	})
}
