package ledger

import (
	"fmt"
	"strings"

	"financas/internal/aggregate"
	"financas/internal/core"
	"financas/internal/installment"

	"github.com/google/uuid"
)

// Book is the set of tables owned by one user.
type Book struct {
	User          string
	Incomes       *Ledger[core.IncomeEntry]
	Expenses      *Ledger[core.ExpenseEntry]
	Investments   *Ledger[core.InvestmentEntry]
	CardPurchases *Ledger[core.CardPurchase]
	Cards         *Ledger[core.CardDefinition]
	Budget        *Ledger[core.BudgetLimit]
}

// PurchaseRequest describes a card purchase to expand into installments.
// DueDay, StatementMonth and FirstDue are optional; see AddCardPurchase.
type PurchaseRequest struct {
	Date           core.Date      `json:"date"`
	Description    string         `json:"description"`
	Total          core.Money     `json:"total"`
	Installments   int            `json:"installments"`
	Card           string         `json:"card"`
	DueDay         int            `json:"due_day,omitempty"`
	StatementMonth core.YearMonth `json:"statement_month,omitempty"`
	FirstDue       core.Date      `json:"first_due,omitempty"`
}

// PurchaseResult is the outcome of AddCardPurchase.
type PurchaseResult struct {
	Rows []core.CardPurchase `json:"rows"`
	// BudgetWarning is set when the first statement month now exceeds the
	// card budget.
	BudgetWarning *BudgetWarning `json:"budget_warning,omitempty"`
}

// BudgetWarning reports a card statement above its budget limit.
type BudgetWarning struct {
	Month  core.YearMonth `json:"month"`
	Total  core.Money     `json:"total"`
	Limit  core.Money     `json:"limit"`
	Excess core.Money     `json:"excess"`
}

func (w BudgetWarning) String() string {
	return fmt.Sprintf("card budget exceeded by %s for the %s statement", w.Excess, w.Month)
}

// StatementResult is the outcome of MarkStatementPaid.
type StatementResult struct {
	Month core.YearMonth `json:"month"`
	Card  string         `json:"card,omitempty"`
	Paid  bool           `json:"paid"`
	Count int            `json:"count"`
	Total core.Money     `json:"total"`
}

// NewBook returns an empty book for user.
func NewBook(user string) *Book {
	return &Book{
		User:          user,
		Incomes:       New[core.IncomeEntry](),
		Expenses:      New[core.ExpenseEntry](),
		Investments:   New[core.InvestmentEntry](),
		CardPurchases: New[core.CardPurchase](),
		Cards:         New[core.CardDefinition](),
		Budget:        New[core.BudgetLimit](),
	}
}

// IsEmpty reports whether every table is empty.
func (b *Book) IsEmpty() bool {
	return b.Incomes.Len()+b.Expenses.Len()+b.Investments.Len()+
		b.CardPurchases.Len()+b.Cards.Len()+b.Budget.Len() == 0
}

// SeedDefaultBudget adds the card budget category when the budget is empty.
func (b *Book) SeedDefaultBudget(limit core.Money) {
	if b.Budget.Len() > 0 || limit.Cents <= 0 {
		return
	}
	b.Budget.Add(core.BudgetLimit{Category: core.CardBudgetCategory, Limit: limit})
}

type entry[T any] interface {
	Record[T]
	Normalize() T
	Validate() error
}

func addEntry[T entry[T]](l *Ledger[T], row T) (T, error) {
	row = row.Normalize()
	if err := row.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return l.Add(row), nil
}

func editEntry[T entry[T]](l *Ledger[T], id int64, row T) (T, error) {
	row = row.Normalize()
	if err := row.Validate(); err != nil {
		var zero T
		return zero, err
	}
	return l.Update(id, func(T) (T, error) { return row, nil })
}

func (b *Book) AddIncome(e core.IncomeEntry) (core.IncomeEntry, error) {
	return addEntry(b.Incomes, e)
}

func (b *Book) EditIncome(id int64, e core.IncomeEntry) (core.IncomeEntry, error) {
	return editEntry(b.Incomes, id, e)
}

func (b *Book) DeleteIncome(id int64) error {
	_, err := b.Incomes.Delete(id)
	return err
}

func (b *Book) AddExpense(e core.ExpenseEntry) (core.ExpenseEntry, error) {
	return addEntry(b.Expenses, e)
}

func (b *Book) EditExpense(id int64, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	return editEntry(b.Expenses, id, e)
}

func (b *Book) DeleteExpense(id int64) error {
	_, err := b.Expenses.Delete(id)
	return err
}

func (b *Book) AddInvestment(e core.InvestmentEntry) (core.InvestmentEntry, error) {
	return addEntry(b.Investments, e)
}

func (b *Book) EditInvestment(id int64, e core.InvestmentEntry) (core.InvestmentEntry, error) {
	return editEntry(b.Investments, id, e)
}

func (b *Book) DeleteInvestment(id int64) error {
	_, err := b.Investments.Delete(id)
	return err
}

// DefineCard creates or updates the card with the given name.
func (b *Book) DefineCard(name string, dueDay int) (core.CardDefinition, error) {
	def := core.CardDefinition{Name: strings.TrimSpace(name), DueDay: dueDay}
	if err := def.Validate(); err != nil {
		return core.CardDefinition{}, err
	}
	if existing, ok := b.Card(def.Name); ok {
		return b.Cards.Update(existing.ID, func(core.CardDefinition) (core.CardDefinition, error) {
			return def, nil
		})
	}
	return b.Cards.Add(def), nil
}

// Card looks a card up by name, ignoring case and surrounding space.
func (b *Book) Card(name string) (core.CardDefinition, bool) {
	name = strings.TrimSpace(name)
	return b.Cards.Find(func(c core.CardDefinition) bool {
		return strings.EqualFold(c.Name, name)
	})
}

// AddCardPurchase expands a purchase into installments and appends them.
//
// The due-day rule comes from the request when given, otherwise from the
// card definition; an undefined card without a due day is a missing
// resource. The first due date follows installment.RuleFor precedence.
func (b *Book) AddCardPurchase(req PurchaseRequest) (PurchaseResult, error) {
	card := strings.TrimSpace(req.Card)
	if card == "" {
		return PurchaseResult{}, core.ErrEmptyCardName
	}
	dueDay := req.DueDay
	if dueDay == 0 && req.FirstDue.IsZero() {
		def, ok := b.Card(card)
		if !ok {
			return PurchaseResult{}, fmt.Errorf("%w: %q", core.ErrUnknownCard, card)
		}
		dueDay = def.DueDay
		card = def.Name
	}

	rows, err := installment.Expand(installment.Purchase{
		Date:         req.Date,
		Description:  req.Description,
		Total:        req.Total,
		Installments: req.Installments,
		Card:         card,
		Rule:         installment.RuleFor(dueDay, req.StatementMonth, req.FirstDue),
	})
	if err != nil {
		return PurchaseResult{}, err
	}
	for i := range rows {
		rows[i] = b.CardPurchases.Add(rows[i])
	}
	return PurchaseResult{
		Rows:          rows,
		BudgetWarning: b.cardBudgetWarning(rows[0].DueDate.YearMonth()),
	}, nil
}

func (b *Book) cardBudgetWarning(month core.YearMonth) *BudgetWarning {
	limit, ok := b.BudgetFor(core.CardBudgetCategory)
	if !ok {
		return nil
	}
	total := b.StatementTotal(month, "", false)
	if total.Cents <= limit.Limit.Cents {
		return nil
	}
	return &BudgetWarning{Month: month, Total: total, Limit: limit.Limit, Excess: total.Sub(limit.Limit)}
}

// StatementTotal sums the installments due in month for card (all cards
// when empty). With unpaidOnly, paid installments are excluded.
func (b *Book) StatementTotal(month core.YearMonth, card string, unpaidOnly bool) core.Money {
	rows := aggregate.Filter(b.CardPurchases.All(), func(p core.CardPurchase) bool {
		return inStatement(p, month, card) && (!unpaidOnly || !p.Paid)
	})
	return aggregate.Sum(rows, func(p core.CardPurchase) core.Money { return p.Amount })
}

func inStatement(p core.CardPurchase, month core.YearMonth, card string) bool {
	if !month.Contains(p.DueDate) {
		return false
	}
	return card == "" || strings.EqualFold(p.Card, strings.TrimSpace(card))
}

// SetInstallmentPaid sets the paid flag of one installment.
func (b *Book) SetInstallmentPaid(id int64, paid bool) (core.CardPurchase, error) {
	return b.CardPurchases.Update(id, func(p core.CardPurchase) (core.CardPurchase, error) {
		p.Paid = paid
		return p, nil
	})
}

// MarkStatementPaid sets the paid flag of every installment due in month
// for card, or for all cards when card is empty.
func (b *Book) MarkStatementPaid(month core.YearMonth, card string, paid bool) (StatementResult, error) {
	if err := month.Validate(); err != nil {
		return StatementResult{}, err
	}
	changed := b.CardPurchases.UpdateWhere(
		func(p core.CardPurchase) bool { return inStatement(p, month, card) },
		func(p core.CardPurchase) core.CardPurchase { p.Paid = paid; return p },
	)
	return StatementResult{
		Month: month,
		Card:  strings.TrimSpace(card),
		Paid:  paid,
		Count: len(changed),
		Total: aggregate.Sum(changed, func(p core.CardPurchase) core.Money { return p.Amount }),
	}, nil
}

// DeleteCardPurchase removes a single installment row.
func (b *Book) DeleteCardPurchase(id int64) error {
	_, err := b.CardPurchases.Delete(id)
	return err
}

// DeletePurchase removes every installment of a purchase.
func (b *Book) DeletePurchase(purchaseID uuid.UUID) (int, error) {
	n := b.CardPurchases.DeleteWhere(func(p core.CardPurchase) bool { return p.PurchaseID == purchaseID })
	if n == 0 {
		return 0, fmt.Errorf("%w: purchase %s", core.ErrRowNotFound, purchaseID)
	}
	return n, nil
}

// SetBudget creates or replaces the limit of a category in place.
func (b *Book) SetBudget(category string, limit core.Money) (core.BudgetLimit, error) {
	row := core.BudgetLimit{Category: strings.TrimSpace(category), Limit: limit}
	if err := row.Validate(); err != nil {
		return core.BudgetLimit{}, err
	}
	if existing, ok := b.BudgetFor(row.Category); ok {
		return b.Budget.Update(existing.ID, func(core.BudgetLimit) (core.BudgetLimit, error) {
			return row, nil
		})
	}
	return b.Budget.Add(row), nil
}

// DeleteBudget removes the limit of a category.
func (b *Book) DeleteBudget(category string) error {
	existing, ok := b.BudgetFor(category)
	if !ok {
		return fmt.Errorf("%w: budget category %q", core.ErrRowNotFound, category)
	}
	_, err := b.Budget.Delete(existing.ID)
	return err
}

// BudgetFor looks up the limit of a category, ignoring case.
func (b *Book) BudgetFor(category string) (core.BudgetLimit, bool) {
	category = strings.TrimSpace(category)
	return b.Budget.Find(func(l core.BudgetLimit) bool {
		return strings.EqualFold(l.Category, category)
	})
}
