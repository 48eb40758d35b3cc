package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/reports"
	"financas/internal/storage"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Options controls workbook output.
type Options struct {
	// Currency is the ISO code whose symbol prefixes amounts. Defaults to BRL.
	Currency string
	// Charts adds the dashboard, annual and budget charts.
	Charts bool
}

type styles struct {
	title, header, currency, date, percent, rate int
}

// WriteWorkbook writes b as an XLSX workbook to w. now picks the dashboard
// month, the annual summary year and the investment valuation date.
func WriteWorkbook(w io.Writer, b *ledger.Book, now core.Date, opts Options) error {
	f, err := build(b, now, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteWorkbookFile writes b to the XLSX file at path.
func WriteWorkbookFile(path string, b *ledger.Book, now core.Date, opts Options) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteWorkbook(out, b, now, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func build(b *ledger.Book, now core.Date, opts Options) (*excelize.File, error) {
	dash, err := reports.DashboardAt(b, now)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	st, err := newStyles(f, opts.Currency)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", SheetDashboard); err != nil {
		f.Close()
		return nil, err
	}

	steps := []func() error{
		func() error { return writeDashboard(f, st, dash, opts.Charts) },
		func() error { return writeAnnual(f, st, reports.Annual(b, now.Year()), opts.Charts) },
	}
	for _, ds := range dataSheets {
		steps = append(steps, func() error { return writeData(f, st, ds, b, dash) })
	}
	steps = append(steps, func() error {
		if !opts.Charts || b.Budget.Len() == 0 {
			return nil
		}
		return budgetChart(f, b.Budget.Len())
	})

	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, fmt.Errorf("build workbook: %w", err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func newStyles(f *excelize.File, currency string) (styles, error) {
	if currency == "" {
		currency = core.DefaultCurrency
	}
	symbol := currency
	if c := money.GetCurrency(currency); c != nil {
		symbol = c.Grapheme
	}
	currencyFmt := fmt.Sprintf(`"%s" #,##0.00`, symbol)
	rateFmt := "0.00"

	var st styles
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{&st.header, &excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		}},
		{&st.currency, &excelize.Style{CustomNumFmt: &currencyFmt}},
		{&st.date, &excelize.Style{NumFmt: 14}},
		{&st.percent, &excelize.Style{NumFmt: 10}},
		{&st.rate, &excelize.Style{CustomNumFmt: &rateFmt}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return styles{}, fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return st, nil
}

func (st styles) forKind(k kind) int {
	switch k {
	case kindMoney:
		return st.currency
	case kindDate:
		return st.date
	case kindPercent:
		return st.percent
	case kindRate:
		return st.rate
	}
	return 0
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func colName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}

// ref is an absolute range reference to column col, rows from..to of sheet.
func ref(sheet string, col, from, to int) string {
	c := colName(col)
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", sheet, c, from, c, to)
}

func writeTitle(f *excelize.File, st styles, sheet, title string) error {
	if err := f.SetCellValue(sheet, cell(1, titleRow), title); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, titleRow), cell(1, titleRow), st.title)
}

func writeHeader(f *excelize.File, st styles, sheet string, row int, labels []string) error {
	values := make([]any, len(labels))
	for i, l := range labels {
		values[i] = l
	}
	if err := f.SetSheetRow(sheet, cell(1, row), &values); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell(1, row), cell(len(labels), row), st.header)
}

// styleColumns applies each column's number format to rows from..to.
func styleColumns(f *excelize.File, st styles, sheet string, cols []column, from, to int) error {
	if to < from {
		return nil
	}
	for i, c := range cols {
		id := st.forKind(c.Kind)
		if id == 0 {
			continue
		}
		if err := f.SetCellStyle(sheet, cell(i+1, from), cell(i+1, to), id); err != nil {
			return err
		}
	}
	return nil
}

func writeDashboard(f *excelize.File, st styles, d reports.Dashboard, charts bool) error {
	sheet := SheetDashboard
	if err := writeTitle(f, st, sheet, "Dashboard "+d.Month.Month.String()); err != nil {
		return err
	}
	if err := writeHeader(f, st, sheet, headerRow, []string{"Indicator", "Value"}); err != nil {
		return err
	}
	indicators := []struct {
		label string
		value any
		kind  kind
	}{
		{"Income", d.Month.Income.Float64(), kindMoney},
		{"Expenses", d.Month.Expenses.Float64(), kindMoney},
		{"Investments", d.Month.Investments.Float64(), kindMoney},
		{"Card Statement", d.Month.CardStatement.Float64(), kindMoney},
		{"Balance", d.Month.Balance.Float64(), kindMoney},
		{"Invested", d.Portfolio.Principal.Float64(), kindMoney},
		{"Current Value", d.Portfolio.CurrentValue.Float64(), kindMoney},
		{"Yield", d.Portfolio.Yield.Float64(), kindMoney},
		{"Yield %", fraction(d.Portfolio.YieldPercent), kindPercent},
	}
	row := firstRow
	for _, ind := range indicators {
		if err := f.SetSheetRow(sheet, cell(1, row), &[]any{ind.label, ind.value}); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell(2, row), cell(2, row), st.forKind(ind.kind)); err != nil {
			return err
		}
		row++
	}

	row++
	catHeader := row
	if err := writeHeader(f, st, sheet, catHeader, []string{"Category", "Spent"}); err != nil {
		return err
	}
	for _, c := range d.ExpensesByCategory {
		row++
		if err := f.SetSheetRow(sheet, cell(1, row), &[]any{c.Key, c.Amount.Float64()}); err != nil {
			return err
		}
	}
	if err := styleColumns(f, st, sheet, []column{{Kind: kindText}, {Kind: kindMoney}}, catHeader+1, row); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 16); err != nil {
		return err
	}

	if !charts || len(d.ExpensesByCategory) == 0 {
		return nil
	}
	return f.AddChart(sheet, "D3", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       "Expenses by category",
			Categories: ref(sheet, 1, catHeader+1, row),
			Values:     ref(sheet, 2, catHeader+1, row),
		}},
		Title:  []excelize.RichTextRun{{Text: "Expenses by category"}},
		Legend: excelize.ChartLegend{Position: "right"},
	})
}

func writeAnnual(f *excelize.File, st styles, a reports.AnnualSummary, charts bool) error {
	sheet := SheetAnnual
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeTitle(f, st, sheet, "Annual Summary "+strconv.Itoa(a.Year)); err != nil {
		return err
	}
	cols := []column{
		{"Month", "", kindText, 10},
		{"Income", "", kindMoney, 14},
		{"Expenses", "", kindMoney, 14},
		{"Investments", "", kindMoney, 14},
		{"Balance", "", kindMoney, 14},
	}
	if err := writeHeader(f, st, sheet, headerRow, labels(cols)); err != nil {
		return err
	}
	rows := append(append([]reports.MonthRow{}, a.Months...), a.Totals, a.Averages)
	for i, m := range rows {
		label := m.Month.String()
		switch i {
		case len(a.Months):
			label = "Total"
		case len(a.Months) + 1:
			label = "Average"
		}
		values := []any{label, m.Income.Float64(), m.Expenses.Float64(), m.Investments.Float64(), m.Balance.Float64()}
		if err := f.SetSheetRow(sheet, cell(1, firstRow+i), &values); err != nil {
			return err
		}
	}
	last := firstRow + len(rows) - 1
	if err := styleColumns(f, st, sheet, cols, firstRow, last); err != nil {
		return err
	}
	if err := setWidths(f, sheet, cols); err != nil {
		return err
	}

	if !charts {
		return nil
	}
	lastMonth := firstRow + len(a.Months) - 1
	var series []excelize.ChartSeries
	for _, c := range []int{2, 3, 5} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$%d", sheet, colName(c), headerRow),
			Categories: ref(sheet, 1, firstRow, lastMonth),
			Values:     ref(sheet, c, firstRow, lastMonth),
		})
	}
	return f.AddChart(sheet, "G3", &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Income, expenses and balance"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

// writeData writes one table of b. Values go through the storage encoding
// so the sheet and the flat files share a single column vocabulary.
func writeData(f *excelize.File, st styles, ds dataSheet, b *ledger.Book, d reports.Dashboard) error {
	if _, err := f.NewSheet(ds.Name); err != nil {
		return err
	}
	if err := writeTitle(f, st, ds.Name, ds.Title); err != nil {
		return err
	}
	if err := writeHeader(f, st, ds.Name, headerRow, labels(ds.Cols)); err != nil {
		return err
	}

	index := make(map[string]int)
	for i, h := range storage.Headers[ds.Table] {
		index[h] = i
	}
	extra := computed(ds.Table, b, d)

	records := storage.Encode(b, ds.Table)
	for n, rec := range records {
		values := make([]any, 0, len(ds.Cols))
		for _, c := range ds.Cols {
			if c.Key == "" {
				values = append(values, extra[n][c.Label])
				continue
			}
			v, err := typed(c.Kind, rec[index[c.Key]])
			if err != nil {
				return fmt.Errorf("%s row %d column %s: %w", ds.Name, n+1, c.Label, err)
			}
			values = append(values, v)
		}
		if err := f.SetSheetRow(ds.Name, cell(1, firstRow+n), &values); err != nil {
			return err
		}
	}
	if err := styleColumns(f, st, ds.Name, ds.Cols, firstRow, firstRow+len(records)-1); err != nil {
		return err
	}
	return setWidths(f, ds.Name, ds.Cols)
}

// computed returns the export-only columns of each row of table t.
func computed(t storage.Table, b *ledger.Book, d reports.Dashboard) []map[string]any {
	switch t {
	case storage.TableInvestments:
		out := make([]map[string]any, 0, len(d.Valuations))
		for _, v := range d.Valuations {
			out = append(out, map[string]any{
				"Months":        v.Months,
				"Current Value": v.CurrentValue.Float64(),
				"Yield":         v.Yield.Float64(),
			})
		}
		return out
	case storage.TableBudget:
		lines := reports.Budget(b, d.Date.YearMonth())
		out := make([]map[string]any, 0, len(lines))
		for _, l := range lines {
			out = append(out, map[string]any{
				"Spent":     l.Spent.Float64(),
				"Remaining": l.Remaining.Float64(),
				"Used":      fraction(l.Percent),
			})
		}
		return out
	}
	return nil
}

func budgetChart(f *excelize.File, n int) error {
	sheet := SheetBudget
	last := firstRow + n - 1
	var series []excelize.ChartSeries
	for _, c := range []int{3, 4} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$%d", sheet, colName(c), headerRow),
			Categories: ref(sheet, 2, firstRow, last),
			Values:     ref(sheet, c, firstRow, last),
		})
	}
	return f.AddChart(sheet, "H3", &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Budget: limit vs spent"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

func typed(k kind, s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	switch k {
	case kindInt:
		return strconv.Atoi(s)
	case kindDate:
		d, err := core.ParseDate(s)
		if err != nil {
			return nil, err
		}
		return d.Time, nil
	case kindMoney:
		m, err := core.ParseMoney(s)
		if err != nil {
			return nil, err
		}
		return m.Float64(), nil
	case kindRate:
		r, err := core.ParseRate(s)
		if err != nil {
			return nil, err
		}
		return r.InexactFloat64(), nil
	case kindBool:
		return strconv.ParseBool(s)
	}
	return s, nil
}

// fraction turns a percentage into the fraction Excel percent formats expect.
func fraction(pct decimal.Decimal) float64 {
	return pct.Div(decimal.NewFromInt(100)).InexactFloat64()
}

func labels(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

func setWidths(f *excelize.File, sheet string, cols []column) error {
	for i, c := range cols {
		if c.Width == 0 {
			continue
		}
		name := colName(i + 1)
		if err := f.SetColWidth(sheet, name, name, c.Width); err != nil {
			return err
		}
	}
	return nil
}
