package sheets

import (
	"context"
	"strconv"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/reports"
	"financas/internal/storage"
)

// Table is a named grid published as one spreadsheet tab.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Ports for outbound adapters.
type (
	// BookPublisher mirrors a user's book into an external spreadsheet.
	// Every call replaces the contents of the named tables.
	BookPublisher interface {
		Publish(ctx context.Context, user string, tables []Table) error
	}
)

// SummaryTable is the name of the annual summary table.
const SummaryTable = "summary"

// TablesFor projects b into publishable tables: the six ledgers with the
// storage column layout plus the annual summary of now's year.
func TablesFor(b *ledger.Book, now core.Date) []Table {
	out := make([]Table, 0, len(storage.Tables)+1)
	for _, t := range storage.Tables {
		records := storage.Encode(b, t)
		rows := make([][]any, 0, len(records))
		for _, rec := range records {
			row := make([]any, len(rec))
			for i, v := range rec {
				row[i] = v
			}
			rows = append(rows, row)
		}
		out = append(out, Table{Name: string(t), Header: storage.Headers[t], Rows: rows})
	}

	annual := reports.Annual(b, now.Year())
	summary := Table{
		Name:   SummaryTable,
		Header: []string{"month", "income", "expenses", "investments", "balance"},
	}
	for _, m := range annual.Months {
		summary.Rows = append(summary.Rows, []any{
			m.Month.String(), m.Income.String(), m.Expenses.String(), m.Investments.String(), m.Balance.String(),
		})
	}
	summary.Rows = append(summary.Rows, []any{
		"total " + strconv.Itoa(annual.Year), annual.Totals.Income.String(), annual.Totals.Expenses.String(),
		annual.Totals.Investments.String(), annual.Totals.Balance.String(),
	})
	return append(out, summary)
}

// Grid returns the header followed by the rows.
func (t Table) Grid() [][]any {
	grid := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	return append(append(grid, header), t.Rows...)
}
