package core

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Defaults applied when a tag is left blank.
const (
	DefaultPaymentMethod  = "Débito"
	DefaultIncomeCategory = "Salário"
	DefaultGoal           = "Geral"
	// CardBudgetCategory is the budget category checked against card statements.
	CardBudgetCategory = "Cartão de Crédito"
	// DefaultDueDay is used when a card is referenced without a definition.
	DefaultDueDay = 10

	// MaxDescriptionLen bounds every description, in runes.
	MaxDescriptionLen = 200
	// MaxInstallments bounds the installments of one card purchase (35 years).
	MaxInstallments = 420
)

type (
	IncomeEntry struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
	}

	ExpenseEntry struct {
		ID            int64  `json:"id"`
		Date          Date   `json:"date"`
		Category      string `json:"category"`
		Description   string `json:"description"`
		Amount        Money  `json:"amount"`
		PaymentMethod string `json:"payment_method"`
	}

	// InvestmentEntry is a contribution. Its current value is always derived.
	InvestmentEntry struct {
		ID          int64           `json:"id"`
		Date        Date            `json:"date"`
		Instrument  string          `json:"instrument"`
		Goal        string          `json:"goal"`
		Principal   Money           `json:"principal"`
		MonthlyRate decimal.Decimal `json:"monthly_rate"` // percent per month, 0.7 = 0.7%
	}

	// CardPurchase is one installment of a card purchase. Installments of the
	// same purchase share PurchaseID and PurchaseDate.
	CardPurchase struct {
		ID           int64     `json:"id"`
		PurchaseID   uuid.UUID `json:"purchase_id"`
		PurchaseDate Date      `json:"purchase_date"`
		Description  string    `json:"description"`
		Amount       Money     `json:"amount"`
		Installments int       `json:"installments"`
		Index        int       `json:"index"`
		DueDate      Date      `json:"due_date"`
		Paid         bool      `json:"paid"`
		Card         string    `json:"card"`
		DueDay       int       `json:"due_day"`
	}

	CardDefinition struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		DueDay int    `json:"due_day"`
	}

	BudgetLimit struct {
		ID       int64  `json:"id"`
		Category string `json:"category"`
		Limit    Money  `json:"limit"`
	}
)

func validateDescription(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// ValidateDueDay checks a day-of-month rule.
func ValidateDueDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDueDay
	}
	return nil
}

// Normalize trims text fields and fills blank tags with defaults.
func (e IncomeEntry) Normalize() IncomeEntry {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = orDefault(e.Category, DefaultIncomeCategory)
	return e
}

func (e IncomeEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (e ExpenseEntry) Normalize() ExpenseEntry {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.PaymentMethod = orDefault(e.PaymentMethod, DefaultPaymentMethod)
	return e
}

func (e ExpenseEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.PaymentMethod) == "" {
		return ErrEmptyPaymentMethod
	}
	return nil
}

func (e InvestmentEntry) Normalize() InvestmentEntry {
	e.Instrument = strings.TrimSpace(e.Instrument)
	e.Goal = orDefault(e.Goal, DefaultGoal)
	return e
}

func (e InvestmentEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Instrument) == "" {
		return ErrEmptyInstrument
	}
	if strings.TrimSpace(e.Goal) == "" {
		return ErrEmptyGoal
	}
	return e.Principal.Validate()
}

func (p CardPurchase) Validate() error {
	if err := p.PurchaseDate.Validate(); err != nil {
		return err
	}
	if err := p.DueDate.Validate(); err != nil {
		return err
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.Installments < 1 || p.Installments > MaxInstallments || p.Index < 1 || p.Index > p.Installments {
		return ErrInvalidInstallments
	}
	if strings.TrimSpace(p.Card) == "" {
		return ErrEmptyCardName
	}
	return nil
}

func (c CardDefinition) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyCardName
	}
	return ValidateDueDay(c.DueDay)
}

func (b BudgetLimit) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	return b.Limit.Validate()
}

// Row identity, used by the generic ledger.

func (e IncomeEntry) RowID() int64     { return e.ID }
func (e ExpenseEntry) RowID() int64    { return e.ID }
func (e InvestmentEntry) RowID() int64 { return e.ID }
func (p CardPurchase) RowID() int64    { return p.ID }
func (c CardDefinition) RowID() int64  { return c.ID }
func (b BudgetLimit) RowID() int64     { return b.ID }

func (e IncomeEntry) WithID(id int64) IncomeEntry         { e.ID = id; return e }
func (e ExpenseEntry) WithID(id int64) ExpenseEntry       { e.ID = id; return e }
func (e InvestmentEntry) WithID(id int64) InvestmentEntry { e.ID = id; return e }
func (p CardPurchase) WithID(id int64) CardPurchase       { p.ID = id; return p }
func (c CardDefinition) WithID(id int64) CardDefinition   { c.ID = id; return c }
func (b BudgetLimit) WithID(id int64) BudgetLimit         { b.ID = id; return b }

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
