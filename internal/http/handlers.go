package http

import (
	"net/http"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/storage"
)

// mutate runs fn on the user's book through the registry, which saves the
// book on success, and writes fn's result with status.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, table storage.Table, op string, status int, fn func(*ledger.Book) (any, error)) {
	var out any
	err := s.books.Update(r.Context(), r.PathValue("user"), string(table), op, func(b *ledger.Book) error {
		var err error
		out, err = fn(b)
		return err
	})
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if out == nil {
		w.WriteHeader(status)
		return
	}
	NewResponse().Status(status).JSON(out).Write(w)
}

// view runs fn on the user's book and writes its result as JSON.
func (s *Server) view(w http.ResponseWriter, r *http.Request, fn func(*ledger.Book) (any, error)) {
	var out any
	err := s.books.View(r.Context(), r.PathValue("user"), func(b *ledger.Book) error {
		var err error
		out, err = fn(b)
		return err
	})
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)
	if status := StatusFor(err); status == http.StatusInternalServerError {
		logger.ErrorContext(ctx, "Request failed",
			log.FieldOperation, op,
			log.FieldUser, r.PathValue("user"),
			log.FieldError, err)
	} else {
		logger.DebugContext(ctx, "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, status,
			log.FieldError, err)
	}
	FromError(err).Write(w)
}

// bookView is the JSON shape of a whole book.
type bookView struct {
	User          string                 `json:"user"`
	Incomes       []core.IncomeEntry     `json:"incomes"`
	Expenses      []core.ExpenseEntry    `json:"expenses"`
	Investments   []core.InvestmentEntry `json:"investments"`
	CardPurchases []core.CardPurchase    `json:"card_purchases"`
	Cards         []core.CardDefinition  `json:"cards"`
	Budget        []core.BudgetLimit     `json:"budget"`
}

func newBookView(b *ledger.Book) bookView {
	return bookView{
		User:          b.User,
		Incomes:       b.Incomes.All(),
		Expenses:      b.Expenses.All(),
		Investments:   b.Investments.All(),
		CardPurchases: b.CardPurchases.All(),
		Cards:         b.Cards.All(),
		Budget:        b.Budget.All(),
	}
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return newBookView(b), nil
	})
}

// entryRoutes holds the add/edit/delete trio of one entry table.
type entryRoutes[T any] struct {
	table  storage.Table
	add    func(*ledger.Book, T) (T, error)
	edit   func(*ledger.Book, int64, T) (T, error)
	delete func(*ledger.Book, int64) error
}

func (e entryRoutes[T]) handleAdd(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := DecodeJSON[T](r)
		if err != nil {
			s.fail(w, r, log.OpCreate, err)
			return
		}
		s.mutate(w, r, e.table, log.OpCreate, http.StatusCreated, func(b *ledger.Book) (any, error) {
			return e.add(b, row)
		})
	}
}

func (e entryRoutes[T]) handleEdit(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r)
		if err != nil {
			s.fail(w, r, log.OpUpdate, err)
			return
		}
		row, err := DecodeJSON[T](r)
		if err != nil {
			s.fail(w, r, log.OpUpdate, err)
			return
		}
		s.mutate(w, r, e.table, log.OpUpdate, http.StatusOK, func(b *ledger.Book) (any, error) {
			return e.edit(b, id, row)
		})
	}
}

func (e entryRoutes[T]) handleDelete(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r)
		if err != nil {
			s.fail(w, r, log.OpDelete, err)
			return
		}
		s.mutate(w, r, e.table, log.OpDelete, http.StatusNoContent, func(b *ledger.Book) (any, error) {
			return nil, e.delete(b, id)
		})
	}
}

var (
	incomeRoutes = entryRoutes[core.IncomeEntry]{
		table:  storage.TableIncome,
		add:    (*ledger.Book).AddIncome,
		edit:   (*ledger.Book).EditIncome,
		delete: (*ledger.Book).DeleteIncome,
	}
	expenseRoutes = entryRoutes[core.ExpenseEntry]{
		table:  storage.TableExpenses,
		add:    (*ledger.Book).AddExpense,
		edit:   (*ledger.Book).EditExpense,
		delete: (*ledger.Book).DeleteExpense,
	}
	investmentRoutes = entryRoutes[core.InvestmentEntry]{
		table:  storage.TableInvestments,
		add:    (*ledger.Book).AddInvestment,
		edit:   (*ledger.Book).EditInvestment,
		delete: (*ledger.Book).DeleteInvestment,
	}
)

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	incomeRoutes.handleAdd(s)(w, r)
}

func (s *Server) handleEditIncome(w http.ResponseWriter, r *http.Request) {
	incomeRoutes.handleEdit(s)(w, r)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	incomeRoutes.handleDelete(s)(w, r)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	expenseRoutes.handleAdd(s)(w, r)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	expenseRoutes.handleEdit(s)(w, r)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseRoutes.handleDelete(s)(w, r)
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	investmentRoutes.handleAdd(s)(w, r)
}

func (s *Server) handleEditInvestment(w http.ResponseWriter, r *http.Request) {
	investmentRoutes.handleEdit(s)(w, r)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	investmentRoutes.handleDelete(s)(w, r)
}
