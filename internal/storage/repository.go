package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financas/internal/core"
	"financas/internal/ledger"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every user's book in one SQLite database. Rows are
// keyed by (user_slug, id) and keep their insertion order in position.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads the book of user in one read transaction.
func (s *SQLiteStore) Load(ctx context.Context, user string) (*ledger.Book, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	seqs, err := loadSequences(ctx, tx, user)
	if err != nil {
		return nil, err
	}

	b := ledger.NewBook(user)

	incomes, err := queryRows(ctx, tx, `SELECT id, date, description, amount_cents, category
		FROM incomes WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.IncomeEntry, error) {
			var e core.IncomeEntry
			var date string
			err := sc.Scan(&e.ID, &date, &e.Description, &e.Amount.Cents, &e.Category)
			if err == nil {
				e.Date, err = parseStoredDate(date)
			}
			return e, err
		})
	if err != nil {
		return nil, fmt.Errorf("load incomes: %w", err)
	}
	b.Incomes.Restore(incomes, seqs[TableIncome])

	expenses, err := queryRows(ctx, tx, `SELECT id, date, category, description, amount_cents, payment_method
		FROM expenses WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.ExpenseEntry, error) {
			var e core.ExpenseEntry
			var date string
			err := sc.Scan(&e.ID, &date, &e.Category, &e.Description, &e.Amount.Cents, &e.PaymentMethod)
			if err == nil {
				e.Date, err = parseStoredDate(date)
			}
			return e, err
		})
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	b.Expenses.Restore(expenses, seqs[TableExpenses])

	investments, err := queryRows(ctx, tx, `SELECT id, date, instrument, goal, principal_cents, monthly_rate
		FROM investments WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.InvestmentEntry, error) {
			var e core.InvestmentEntry
			var date, rate string
			err := sc.Scan(&e.ID, &date, &e.Instrument, &e.Goal, &e.Principal.Cents, &rate)
			if err == nil {
				e.Date, err = parseStoredDate(date)
			}
			if err == nil {
				e.MonthlyRate, err = core.ParseRate(rate)
			}
			return e, err
		})
	if err != nil {
		return nil, fmt.Errorf("load investments: %w", err)
	}
	b.Investments.Restore(investments, seqs[TableInvestments])

	purchases, err := queryRows(ctx, tx, `SELECT id, purchase_id, purchase_date, description, amount_cents,
		installments, installment, due_date, paid, card, due_day
		FROM card_purchases WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.CardPurchase, error) {
			var p core.CardPurchase
			var purchaseID, purchaseDate, dueDate string
			err := sc.Scan(&p.ID, &purchaseID, &purchaseDate, &p.Description, &p.Amount.Cents,
				&p.Installments, &p.Index, &dueDate, &p.Paid, &p.Card, &p.DueDay)
			if err == nil {
				p.PurchaseID, err = uuid.Parse(purchaseID)
			}
			if err == nil {
				p.PurchaseDate, err = parseStoredDate(purchaseDate)
			}
			if err == nil {
				p.DueDate, err = parseStoredDate(dueDate)
			}
			return p, err
		})
	if err != nil {
		return nil, fmt.Errorf("load card purchases: %w", err)
	}
	b.CardPurchases.Restore(purchases, seqs[TableCardPurchases])

	cards, err := queryRows(ctx, tx, `SELECT id, name, due_day FROM cards WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.CardDefinition, error) {
			var c core.CardDefinition
			return c, sc.Scan(&c.ID, &c.Name, &c.DueDay)
		})
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	b.Cards.Restore(cards, seqs[TableCards])

	budget, err := queryRows(ctx, tx, `SELECT id, category, limit_cents FROM budget WHERE user_slug = ? ORDER BY position`, user,
		func(sc scanner) (core.BudgetLimit, error) {
			var l core.BudgetLimit
			return l, sc.Scan(&l.ID, &l.Category, &l.Limit.Cents)
		})
	if err != nil {
		return nil, fmt.Errorf("load budget: %w", err)
	}
	b.Budget.Restore(budget, seqs[TableBudget])

	slog.DebugContext(ctx, "Book loaded from SQLite", "user", user)
	return b, nil
}

// Save replaces every row of user in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, user string, b *ledger.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"incomes", "expenses", "investments", "card_purchases", "cards", "budget", "ledger_sequences"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_slug = ?", user); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertRows(ctx, tx, `INSERT INTO incomes
		(user_slug, id, position, date, description, amount_cents, category) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Incomes.All(), func(i int, e core.IncomeEntry) []any {
			return []any{user, e.ID, i, e.Date.String(), e.Description, e.Amount.Cents, e.Category}
		}); err != nil {
		return fmt.Errorf("save incomes: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO expenses
		(user_slug, id, position, date, category, description, amount_cents, payment_method) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Expenses.All(), func(i int, e core.ExpenseEntry) []any {
			return []any{user, e.ID, i, e.Date.String(), e.Category, e.Description, e.Amount.Cents, e.PaymentMethod}
		}); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO investments
		(user_slug, id, position, date, instrument, goal, principal_cents, monthly_rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Investments.All(), func(i int, e core.InvestmentEntry) []any {
			return []any{user, e.ID, i, e.Date.String(), e.Instrument, e.Goal, e.Principal.Cents, e.MonthlyRate.String()}
		}); err != nil {
		return fmt.Errorf("save investments: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO card_purchases
		(user_slug, id, position, purchase_id, purchase_date, description, amount_cents,
		 installments, installment, due_date, paid, card, due_day) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.CardPurchases.All(), func(i int, p core.CardPurchase) []any {
			return []any{user, p.ID, i, p.PurchaseID.String(), p.PurchaseDate.String(), p.Description, p.Amount.Cents,
				p.Installments, p.Index, p.DueDate.String(), p.Paid, p.Card, p.DueDay}
		}); err != nil {
		return fmt.Errorf("save card purchases: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO cards (user_slug, id, position, name, due_day) VALUES (?, ?, ?, ?, ?)`,
		b.Cards.All(), func(i int, c core.CardDefinition) []any {
			return []any{user, c.ID, i, c.Name, c.DueDay}
		}); err != nil {
		return fmt.Errorf("save cards: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO budget (user_slug, id, position, category, limit_cents) VALUES (?, ?, ?, ?, ?)`,
		b.Budget.All(), func(i int, l core.BudgetLimit) []any {
			return []any{user, l.ID, i, l.Category, l.Limit.Cents}
		}); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	if err := insertRows(ctx, tx, `INSERT INTO ledger_sequences (user_slug, table_name, next_id) VALUES (?, ?, ?)`,
		Tables, func(_ int, t Table) []any {
			return []any{user, string(t), NextID(b, t)}
		}); err != nil {
		return fmt.Errorf("save sequences: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.InfoContext(ctx, "Book saved to SQLite",
		"user", user,
		"incomes", b.Incomes.Len(),
		"expenses", b.Expenses.Len(),
		"investments", b.Investments.Len(),
		"card_purchases", b.CardPurchases.Len())
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func queryRows[T any](ctx context.Context, tx *sql.Tx, query, user string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := tx.QueryContext(ctx, query, user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func insertRows[T any](ctx context.Context, tx *sql.Tx, query string, rows []T, args func(int, T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, args(i, r)...); err != nil {
			return err
		}
	}
	return nil
}

func loadSequences(ctx context.Context, tx *sql.Tx, user string) (map[Table]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT table_name, next_id FROM ledger_sequences WHERE user_slug = ?`, user)
	if err != nil {
		return nil, fmt.Errorf("load sequences: %w", err)
	}
	defer rows.Close()

	seqs := make(map[Table]int64)
	for rows.Next() {
		var name string
		var next int64
		if err := rows.Scan(&name, &next); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		seqs[Table(name)] = next
	}
	return seqs, rows.Err()
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
