package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&summaryCmd{}, "reports")
	commander.Register(&annualCmd{}, "reports")
	commander.Register(&projectionCmd{}, "reports")
	commander.Register(&cardsCmd{}, "reports")
	commander.Register(&portfolioCmd{}, "reports")

	commander.Register(&addExpenseCmd{}, "entries")
	commander.Register(&addIncomeCmd{}, "entries")
	commander.Register(&addInvestmentCmd{}, "entries")
	commander.Register(&addPurchaseCmd{}, "cards")
	commander.Register(&defineCardCmd{}, "cards")
	commander.Register(&payStatementCmd{}, "cards")
	commander.Register(&setBudgetCmd{}, "entries")

	commander.Register(&exportCmd{}, "workbook")
	commander.Register(&importCmd{}, "workbook")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
