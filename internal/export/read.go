package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/storage"

	"github.com/xuri/excelize/v2"
)

// Tables holds the data sheets read from a workbook.
type Tables struct {
	Incomes       []core.IncomeEntry
	Expenses      []core.ExpenseEntry
	Investments   []core.InvestmentEntry
	CardPurchases []core.CardPurchase
	Cards         []core.CardDefinition
	Budget        []core.BudgetLimit
	// Present lists the tables whose sheet exists in the workbook.
	Present map[storage.Table]bool
}

// ReadWorkbookFile reads the workbook at path. A missing file is
// core.ErrFileNotFound.
func ReadWorkbookFile(path string) (*Tables, error) {
	in, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()
	return ReadWorkbook(in)
}

// ReadWorkbook parses the data sheets of a workbook written by
// WriteWorkbook. Report sheets and computed columns are ignored; sheets
// that are missing leave their table absent from Present.
func ReadWorkbook(r io.Reader) (*Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: not a workbook: %v", core.ErrInvalidInput, err)
	}
	defer f.Close()

	var rs storage.Rows
	t := &Tables{Present: make(map[storage.Table]bool)}
	for _, ds := range dataSheets {
		if idx, err := f.GetSheetIndex(ds.Name); err != nil || idx < 0 {
			continue
		}
		rows, err := f.GetRows(ds.Name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", ds.Name, err)
		}
		header, records := sheetRecords(ds, rows)
		if err := storage.DecodeRows(&rs, ds.Table, header, records); err != nil {
			return nil, fmt.Errorf("%w: sheet %s: %v", core.ErrInvalidInput, ds.Name, err)
		}
		t.Present[ds.Table] = true
	}

	t.Incomes = rs.Incomes
	t.Expenses = rs.Expenses
	t.Investments = rs.Investments
	t.CardPurchases = rs.CardPurchases
	t.Cards = rs.Cards
	t.Budget = rs.Budget
	return t, nil
}

// sheetRecords finds the header row of ds in rows and returns it translated
// to storage column names, followed by the non-empty data rows.
func sheetRecords(ds dataSheet, rows [][]string) ([]string, [][]string) {
	byLabel := make(map[string]column, len(ds.Cols))
	for _, c := range ds.Cols {
		byLabel[strings.ToLower(c.Label)] = c
	}

	// The header is the first row led by a known column; sheets edited by
	// hand may drop the ID column.
	start := -1
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if c, ok := byLabel[strings.ToLower(strings.TrimSpace(row[0]))]; ok && c.Key != "" {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, nil
	}

	var header []string
	var kinds []kind
	for _, label := range rows[start] {
		c := byLabel[strings.ToLower(strings.TrimSpace(label))]
		header = append(header, c.Key)
		kinds = append(kinds, c.Kind)
	}

	var records [][]string
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		rec := make([]string, len(row))
		for i, v := range row {
			if i < len(kinds) && kinds[i] == kindDate {
				v = serialToDate(v)
			}
			rec[i] = v
		}
		records = append(records, rec)
	}
	return header, records
}

// serialToDate converts an Excel date serial to ISO form. Other values are
// returned unchanged.
func serialToDate(v string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(math.Round(serial), false)
	if err != nil {
		return v
	}
	return core.DateOf(t).String()
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
