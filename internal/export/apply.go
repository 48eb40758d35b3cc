package export

import (
	"fmt"
	"strings"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/storage"
)

// Mode selects how imported tables combine with a book.
type Mode int

const (
	// ModeReplace makes the workbook the source of truth for every table
	// it contains.
	ModeReplace Mode = iota
	// ModeMerge appends rows whose key is not already in the book.
	ModeMerge
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return ModeReplace, nil
	case "merge":
		return ModeMerge, nil
	}
	return 0, fmt.Errorf("%w: unknown import mode %q", core.ErrInvalidInput, s)
}

func (m Mode) String() string {
	if m == ModeMerge {
		return "merge"
	}
	return "replace"
}

// Result counts the rows written per table.
type Result map[storage.Table]int

// Apply imports t into b. Every imported row is validated first; on error
// b is left untouched.
func Apply(b *ledger.Book, t *Tables, mode Mode) (Result, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	res := make(Result)
	if mode == ModeReplace {
		if t.Present[storage.TableIncome] {
			res[storage.TableIncome] = replace(b.Incomes, t.Incomes)
		}
		if t.Present[storage.TableExpenses] {
			res[storage.TableExpenses] = replace(b.Expenses, t.Expenses)
		}
		if t.Present[storage.TableInvestments] {
			res[storage.TableInvestments] = replace(b.Investments, t.Investments)
		}
		if t.Present[storage.TableCardPurchases] {
			res[storage.TableCardPurchases] = replace(b.CardPurchases, t.CardPurchases)
		}
		if t.Present[storage.TableCards] {
			res[storage.TableCards] = replace(b.Cards, t.Cards)
		}
		if t.Present[storage.TableBudget] {
			res[storage.TableBudget] = replace(b.Budget, t.Budget)
		}
		return res, nil
	}

	res[storage.TableIncome] = merge(b.Incomes, t.Incomes, func(e core.IncomeEntry) string {
		return key(e.Date, e.Description, e.Amount, e.Category)
	})
	res[storage.TableExpenses] = merge(b.Expenses, t.Expenses, func(e core.ExpenseEntry) string {
		return key(e.Date, e.Description, e.Amount, e.Category)
	})
	res[storage.TableInvestments] = merge(b.Investments, t.Investments, func(e core.InvestmentEntry) string {
		return key(e.Date, e.Instrument, e.Goal, e.Principal)
	})
	res[storage.TableCardPurchases] = merge(b.CardPurchases, t.CardPurchases, func(p core.CardPurchase) string {
		return key(p.PurchaseDate, p.Description, p.Amount, p.Index)
	})
	res[storage.TableCards] = merge(b.Cards, t.Cards, func(c core.CardDefinition) string {
		return strings.ToLower(c.Name)
	})
	res[storage.TableBudget] = merge(b.Budget, t.Budget, func(l core.BudgetLimit) string {
		return strings.ToLower(l.Category)
	})
	return res, nil
}

func (t *Tables) validate() error {
	for i := range t.Incomes {
		t.Incomes[i] = t.Incomes[i].Normalize()
		if err := t.Incomes[i].Validate(); err != nil {
			return fmt.Errorf("income row %d: %w", i+1, err)
		}
	}
	for i := range t.Expenses {
		t.Expenses[i] = t.Expenses[i].Normalize()
		if err := t.Expenses[i].Validate(); err != nil {
			return fmt.Errorf("expense row %d: %w", i+1, err)
		}
	}
	for i := range t.Investments {
		t.Investments[i] = t.Investments[i].Normalize()
		if err := t.Investments[i].Validate(); err != nil {
			return fmt.Errorf("investment row %d: %w", i+1, err)
		}
	}
	for i, p := range t.CardPurchases {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("card purchase row %d: %w", i+1, err)
		}
	}
	for i, c := range t.Cards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("card row %d: %w", i+1, err)
		}
	}
	for i, l := range t.Budget {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("budget row %d: %w", i+1, err)
		}
	}
	return nil
}

// replace swaps the contents of l for rows. Rows without an id are
// numbered from the ledger's sequence, which never moves backwards.
func replace[T ledger.Record[T]](l *ledger.Ledger[T], rows []T) int {
	next := l.NextID()
	for _, r := range rows {
		if r.RowID() >= next {
			next = r.RowID() + 1
		}
	}
	out := make([]T, len(rows))
	for i, r := range rows {
		if r.RowID() <= 0 {
			r = r.WithID(next)
			next++
		}
		out[i] = r
	}
	l.Restore(out, next)
	return len(rows)
}

// merge adds the rows whose key is new to l, with fresh ids.
func merge[T ledger.Record[T]](l *ledger.Ledger[T], rows []T, keyOf func(T) string) int {
	seen := make(map[string]bool, l.Len())
	for _, r := range l.All() {
		seen[keyOf(r)] = true
	}
	added := 0
	for _, r := range rows {
		k := keyOf(r)
		if seen[k] {
			continue
		}
		seen[k] = true
		l.Add(r)
		added++
	}
	return added
}

func key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "\x1f")
}
