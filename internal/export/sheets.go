// Package export writes a book to an XLSX workbook and reads the data
// sheets of such a workbook back.
package export

import "financas/internal/storage"

// Sheet names.
const (
	SheetDashboard   = "Dashboard"
	SheetAnnual      = "Annual Summary"
	SheetExpenses    = "Expenses"
	SheetIncome      = "Income"
	SheetInvestments = "Investments"
	SheetCreditCard  = "Credit Card"
	SheetBudget      = "Budget"
	SheetCards       = "Cards"
)

// Every sheet has a title in row 1, a blank row and its header in row 3.
const (
	titleRow  = 1
	headerRow = 3
	firstRow  = headerRow + 1
)

type kind int

const (
	kindText kind = iota
	kindInt
	kindDate
	kindMoney
	kindRate
	kindPercent
	kindBool
)

// column maps a sheet header to the storage column it round-trips through.
// Columns without a key are computed on export and ignored on import.
type column struct {
	Label string
	Key   string
	Kind  kind
	Width float64
}

type dataSheet struct {
	Name  string
	Title string
	Table storage.Table
	Cols  []column
}

var dataSheets = []dataSheet{
	{
		Name: SheetExpenses, Title: "Expenses", Table: storage.TableExpenses,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Date", "date", kindDate, 12},
			{"Category", "category", kindText, 18},
			{"Description", "description", kindText, 36},
			{"Amount", "amount", kindMoney, 14},
			{"Payment Method", "payment_method", kindText, 16},
		},
	},
	{
		Name: SheetIncome, Title: "Income", Table: storage.TableIncome,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Date", "date", kindDate, 12},
			{"Description", "description", kindText, 36},
			{"Amount", "amount", kindMoney, 14},
			{"Category", "category", kindText, 18},
		},
	},
	{
		Name: SheetInvestments, Title: "Investments", Table: storage.TableInvestments,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Date", "date", kindDate, 12},
			{"Type", "instrument", kindText, 16},
			{"Goal", "goal", kindText, 16},
			{"Principal", "principal", kindMoney, 14},
			{"Monthly Rate (%)", "monthly_rate", kindRate, 16},
			{"Months", "", kindInt, 8},
			{"Current Value", "", kindMoney, 14},
			{"Yield", "", kindMoney, 14},
		},
	},
	{
		Name: SheetCreditCard, Title: "Credit Card", Table: storage.TableCardPurchases,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Purchase ID", "purchase_id", kindText, 38},
			{"Purchase Date", "purchase_date", kindDate, 13},
			{"Description", "description", kindText, 36},
			{"Amount", "amount", kindMoney, 14},
			{"Installments", "installments", kindInt, 12},
			{"Installment", "index", kindInt, 11},
			{"Due Date", "due_date", kindDate, 12},
			{"Paid", "paid", kindBool, 8},
			{"Card", "card", kindText, 16},
			{"Due Day", "due_day", kindInt, 9},
		},
	},
	{
		Name: SheetBudget, Title: "Budget", Table: storage.TableBudget,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Category", "category", kindText, 20},
			{"Limit", "limit", kindMoney, 14},
			{"Spent", "", kindMoney, 14},
			{"Remaining", "", kindMoney, 14},
			{"Used", "", kindPercent, 10},
		},
	},
	{
		Name: SheetCards, Title: "Cards", Table: storage.TableCards,
		Cols: []column{
			{"ID", "id", kindInt, 6},
			{"Name", "name", kindText, 20},
			{"Due Day", "due_day", kindInt, 9},
		},
	},
}
