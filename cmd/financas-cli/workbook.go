package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/session"
	"financas/internal/storage"

	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
	charts bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the book to an xlsx workbook" }
func (*exportCmd) Usage() string {
	return `financas-cli export [-o <file.xlsx>] [-charts=false]
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file (defaults to financas_<user>_<date>.xlsx)")
	f.BoolVar(&c.charts, "charts", true, "Add charts to the dashboard sheets")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		now := today()
		path := c.output
		if path == "" {
			path = fmt.Sprintf("financas_%s_%s.xlsx", session.Slugify(*userName), now.Time.Format("20060102"))
		}
		err := a.view(ctx, func(b *ledger.Book) error {
			return export.WriteWorkbookFile(path, b, now, export.Options{Currency: a.cfg.Currency, Charts: c.charts})
		})
		if err == nil {
			fmt.Printf("Workbook written to %s\n", path)
		}
		return err
	})
}

type importCmd struct {
	mode string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load an xlsx workbook into the book" }
func (*importCmd) Usage() string {
	return `financas-cli import [-mode replace|merge] <file.xlsx>

  replace makes the workbook the source of truth for the tables it holds;
  merge appends rows that are not already in the book. A backup of the
  current data is taken first when the backend supports it.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.mode, "mode", "replace", "Import mode: replace or merge")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return run(ctx, func(a *app) error {
		mode, err := export.ParseMode(c.mode)
		if err != nil {
			return err
		}
		tables, err := export.ReadWorkbookFile(f.Arg(0))
		if err != nil {
			return err
		}
		res, backup, err := a.books.Import(ctx, *userName, tables, mode)
		if err != nil {
			return err
		}
		if backup != "" {
			fmt.Printf("Backup written to %s\n", backup)
		}
		names := make([]string, 0, len(res))
		for t := range res {
			names = append(names, string(t))
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s: %d rows (%s)\n", name, res[storage.Table(name)], mode)
		}
		return nil
	})
}
