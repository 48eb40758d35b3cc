package http

import (
	"fmt"
	"net/http"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/storage"

	"github.com/google/uuid"
)

type cardRequest struct {
	Name   string `json:"name"`
	DueDay int    `json:"due_day"`
}

type paidRequest struct {
	Paid *bool `json:"paid"`
}

func (p paidRequest) value() (bool, error) {
	if p.Paid == nil {
		return false, fmt.Errorf("%w: missing paid flag", core.ErrInvalidInput)
	}
	return *p.Paid, nil
}

type statementRequest struct {
	Month core.YearMonth `json:"month"`
	Card  string         `json:"card"`
	Paid  *bool          `json:"paid"`
}

type budgetRequest struct {
	Limit core.Money `json:"limit"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return b.Cards.All(), nil
	})
}

func (s *Server) handleDefineCard(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[cardRequest](r)
	if err != nil {
		s.fail(w, r, log.OpDefineCard, err)
		return
	}
	s.mutate(w, r, storage.TableCards, log.OpDefineCard, http.StatusOK, func(b *ledger.Book) (any, error) {
		return b.DefineCard(sanitizeInput(req.Name), req.DueDay)
	})
}

func (s *Server) handleAddCardPurchase(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[ledger.PurchaseRequest](r)
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	req.Description = sanitizeInput(req.Description)
	req.Card = sanitizeInput(req.Card)
	s.mutate(w, r, storage.TableCardPurchases, log.OpCreate, http.StatusCreated, func(b *ledger.Book) (any, error) {
		res, err := b.AddCardPurchase(req)
		if err != nil {
			return nil, err
		}
		if res.BudgetWarning != nil {
			log.FromContext(r.Context()).InfoContext(r.Context(), "Card budget exceeded",
				log.FieldUser, b.User,
				log.FieldMonth, res.BudgetWarning.Month.String(),
				log.FieldAmountCents, res.BudgetWarning.Excess.Cents)
		}
		return res, nil
	})
}

func (s *Server) handleDeleteCardPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.mutate(w, r, storage.TableCardPurchases, log.OpDelete, http.StatusNoContent, func(b *ledger.Book) (any, error) {
		return nil, b.DeleteCardPurchase(id)
	})
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := uuid.Parse(r.PathValue("purchase"))
	if err != nil {
		s.fail(w, r, log.OpDelete, fmt.Errorf("%w: invalid purchase id", core.ErrInvalidInput))
		return
	}
	s.mutate(w, r, storage.TableCardPurchases, log.OpDelete, http.StatusOK, func(b *ledger.Book) (any, error) {
		n, err := b.DeletePurchase(purchaseID)
		if err != nil {
			return nil, err
		}
		return map[string]int{"deleted": n}, nil
	})
}

func (s *Server) handleSetInstallmentPaid(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.fail(w, r, log.OpMarkPaid, err)
		return
	}
	req, err := DecodeJSON[paidRequest](r)
	if err != nil {
		s.fail(w, r, log.OpMarkPaid, err)
		return
	}
	paid, err := req.value()
	if err != nil {
		s.fail(w, r, log.OpMarkPaid, err)
		return
	}
	s.mutate(w, r, storage.TableCardPurchases, log.OpMarkPaid, http.StatusOK, func(b *ledger.Book) (any, error) {
		return b.SetInstallmentPaid(id, paid)
	})
}

func (s *Server) handleMarkStatementPaid(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[statementRequest](r)
	if err != nil {
		s.fail(w, r, log.OpMarkPaid, err)
		return
	}
	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}
	s.mutate(w, r, storage.TableCardPurchases, log.OpMarkPaid, http.StatusOK, func(b *ledger.Book) (any, error) {
		return b.MarkStatementPaid(req.Month, sanitizeInput(req.Card), paid)
	})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	req, err := DecodeJSON[budgetRequest](r)
	if err != nil {
		s.fail(w, r, log.OpSetBudget, err)
		return
	}
	category := sanitizeInput(r.PathValue("category"))
	s.mutate(w, r, storage.TableBudget, log.OpSetBudget, http.StatusOK, func(b *ledger.Book) (any, error) {
		return b.SetBudget(category, req.Limit)
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := sanitizeInput(r.PathValue("category"))
	s.mutate(w, r, storage.TableBudget, log.OpDelete, http.StatusNoContent, func(b *ledger.Book) (any, error) {
		return nil, b.DeleteBudget(category)
	})
}
