package storage

import (
	"fmt"
	"strconv"
	"strings"

	"financas/internal/core"
	"financas/internal/ledger"

	"github.com/google/uuid"
)

// Table names one of the six ledgers of a book.
type Table string

const (
	TableIncome        Table = "income"
	TableExpenses      Table = "expenses"
	TableInvestments   Table = "investments"
	TableCardPurchases Table = "card_purchases"
	TableCards         Table = "cards"
	TableBudget        Table = "budget"
)

// Tables lists every table in a stable order.
var Tables = []Table{TableIncome, TableExpenses, TableInvestments, TableCardPurchases, TableCards, TableBudget}

// Headers is the column schema of each table.
var Headers = map[Table][]string{
	TableIncome:        {"id", "date", "description", "amount", "category"},
	TableExpenses:      {"id", "date", "category", "description", "amount", "payment_method"},
	TableInvestments:   {"id", "date", "instrument", "goal", "principal", "monthly_rate"},
	TableCardPurchases: {"id", "purchase_id", "purchase_date", "description", "amount", "installments", "index", "due_date", "paid", "card", "due_day"},
	TableCards:         {"id", "name", "due_day"},
	TableBudget:        {"id", "category", "limit"},
}

// Encode returns the rows of table t as string records in header order.
func Encode(b *ledger.Book, t Table) [][]string {
	switch t {
	case TableIncome:
		return encodeAll(b.Incomes.All(), func(e core.IncomeEntry) []string {
			return []string{id(e.ID), e.Date.String(), e.Description, e.Amount.String(), e.Category}
		})
	case TableExpenses:
		return encodeAll(b.Expenses.All(), func(e core.ExpenseEntry) []string {
			return []string{id(e.ID), e.Date.String(), e.Category, e.Description, e.Amount.String(), e.PaymentMethod}
		})
	case TableInvestments:
		return encodeAll(b.Investments.All(), func(e core.InvestmentEntry) []string {
			return []string{id(e.ID), e.Date.String(), e.Instrument, e.Goal, e.Principal.String(), e.MonthlyRate.String()}
		})
	case TableCardPurchases:
		return encodeAll(b.CardPurchases.All(), func(p core.CardPurchase) []string {
			return []string{
				id(p.ID), p.PurchaseID.String(), p.PurchaseDate.String(), p.Description, p.Amount.String(),
				strconv.Itoa(p.Installments), strconv.Itoa(p.Index), p.DueDate.String(),
				strconv.FormatBool(p.Paid), p.Card, strconv.Itoa(p.DueDay),
			}
		})
	case TableCards:
		return encodeAll(b.Cards.All(), func(c core.CardDefinition) []string {
			return []string{id(c.ID), c.Name, strconv.Itoa(c.DueDay)}
		})
	case TableBudget:
		return encodeAll(b.Budget.All(), func(l core.BudgetLimit) []string {
			return []string{id(l.ID), l.Category, l.Limit.String()}
		})
	}
	return nil
}

// Rows holds decoded rows of each table with ids as written; a row whose
// id column is empty or missing keeps ID 0.
type Rows struct {
	Incomes       []core.IncomeEntry
	Expenses      []core.ExpenseEntry
	Investments   []core.InvestmentEntry
	CardPurchases []core.CardPurchase
	Cards         []core.CardDefinition
	Budget        []core.BudgetLimit
}

// DecodeRows parses records of table t, laid out by header, into rs.
// Columns are matched by name so files with reordered or missing optional
// columns load.
func DecodeRows(rs *Rows, t Table, header []string, records [][]string) error {
	var err error
	switch t {
	case TableIncome:
		rs.Incomes, err = decodeAll(header, records, func(r *row) core.IncomeEntry {
			return core.IncomeEntry{
				ID: r.integer64("id"), Date: r.date("date"), Description: r.str("description"),
				Amount: r.money("amount"), Category: r.str("category"),
			}
		})
	case TableExpenses:
		rs.Expenses, err = decodeAll(header, records, func(r *row) core.ExpenseEntry {
			return core.ExpenseEntry{
				ID: r.integer64("id"), Date: r.date("date"), Category: r.str("category"),
				Description: r.str("description"), Amount: r.money("amount"), PaymentMethod: r.str("payment_method"),
			}
		})
	case TableInvestments:
		rs.Investments, err = decodeAll(header, records, func(r *row) core.InvestmentEntry {
			e := core.InvestmentEntry{
				ID: r.integer64("id"), Date: r.date("date"), Instrument: r.str("instrument"),
				Goal: r.str("goal"), Principal: r.money("principal"),
			}
			rate, err := core.ParseRate(r.str("monthly_rate"))
			if err != nil {
				r.fail("monthly_rate", err)
			}
			e.MonthlyRate = rate
			return e
		})
	case TableCardPurchases:
		rs.CardPurchases, err = decodeAll(header, records, func(r *row) core.CardPurchase {
			return core.CardPurchase{
				ID: r.integer64("id"), PurchaseID: r.uuidOf("purchase_id"), PurchaseDate: r.date("purchase_date"),
				Description: r.str("description"), Amount: r.money("amount"),
				Installments: r.integer("installments"), Index: r.integer("index"), DueDate: r.date("due_date"),
				Paid: r.boolean("paid"), Card: r.str("card"), DueDay: r.integer("due_day"),
			}
		})
	case TableCards:
		rs.Cards, err = decodeAll(header, records, func(r *row) core.CardDefinition {
			return core.CardDefinition{ID: r.integer64("id"), Name: r.str("name"), DueDay: r.integer("due_day")}
		})
	case TableBudget:
		rs.Budget, err = decodeAll(header, records, func(r *row) core.BudgetLimit {
			return core.BudgetLimit{ID: r.integer64("id"), Category: r.str("category"), Limit: r.money("limit")}
		})
	default:
		err = fmt.Errorf("unknown table %q", t)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", t, err)
	}
	return nil
}

// Decode parses records of table t into b. Rows without an id are numbered
// after the highest id present and the sequence resumes at nextID or later.
func Decode(b *ledger.Book, t Table, header []string, records [][]string, nextID int64) error {
	var rs Rows
	if err := DecodeRows(&rs, t, header, records); err != nil {
		return err
	}
	switch t {
	case TableIncome:
		b.Incomes.Restore(rs.Incomes, nextID)
	case TableExpenses:
		b.Expenses.Restore(rs.Expenses, nextID)
	case TableInvestments:
		b.Investments.Restore(rs.Investments, nextID)
	case TableCardPurchases:
		b.CardPurchases.Restore(rs.CardPurchases, nextID)
	case TableCards:
		b.Cards.Restore(rs.Cards, nextID)
	case TableBudget:
		b.Budget.Restore(rs.Budget, nextID)
	}
	return nil
}

// NextID returns the id the next row of table t will receive.
func NextID(b *ledger.Book, t Table) int64 {
	switch t {
	case TableIncome:
		return b.Incomes.NextID()
	case TableExpenses:
		return b.Expenses.NextID()
	case TableInvestments:
		return b.Investments.NextID()
	case TableCardPurchases:
		return b.CardPurchases.NextID()
	case TableCards:
		return b.Cards.NextID()
	case TableBudget:
		return b.Budget.NextID()
	}
	return 1
}

func encodeAll[T any](rows []T, enc func(T) []string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, enc(r))
	}
	return out
}

func decodeAll[T any](header []string, records [][]string, dec func(*row) T) ([]T, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	rows := make([]T, 0, len(records))
	for n, rec := range records {
		r := &row{cols: cols, rec: rec}
		v := dec(r)
		if r.err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, r.err)
		}
		rows = append(rows, v)
	}
	return rows, nil
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// row reads typed cells by column name, keeping the first parse error.
type row struct {
	cols map[string]int
	rec  []string
	err  error
}

func (r *row) str(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r *row) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
}

func (r *row) integer64(col string) int64 {
	s := r.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *row) integer(col string) int { return int(r.integer64(col)) }

func (r *row) boolean(col string) bool {
	switch strings.ToLower(r.str(col)) {
	case "true", "1", "sim", "yes":
		return true
	}
	return false
}

func (r *row) date(col string) core.Date {
	s := r.str(col)
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		r.fail(col, err)
	}
	return d
}

func (r *row) money(col string) core.Money {
	s := r.str(col)
	if s == "" {
		return core.Money{}
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		r.fail(col, err)
	}
	return m
}

func (r *row) uuidOf(col string) uuid.UUID {
	s := r.str(col)
	if s == "" {
		return uuid.Nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		r.fail(col, err)
	}
	return u
}
