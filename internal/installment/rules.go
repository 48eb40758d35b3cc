// Package installment expands a card purchase into its monthly installments.
//
// This file implements the Strategy Pattern for deriving the first due date
// of a purchase. Each rule encapsulates one way the billing cycle can be
// specified: a card's cut-off day, an explicit statement month, or an
// explicit due date.
package installment

import (
	"fmt"

	"financas/internal/core"
)

// DueRule is the strategy interface for deriving a purchase's first due date.
type DueRule interface {
	// FirstDue returns the due date of installment 1 for a purchase made on
	// the given day.
	FirstDue(purchase core.Date) (core.Date, error)
	// DueDay returns the day-of-month recorded on the installments.
	DueDay() int
}

// CutOff derives the due date from the card's due day: purchases on or
// before the due day land on this month's statement, later ones roll to
// the next month.
type CutOff struct {
	Day int
}

func (c CutOff) FirstDue(purchase core.Date) (core.Date, error) {
	if err := core.ValidateDueDay(c.Day); err != nil {
		return core.Date{}, err
	}
	month := purchase.YearMonth()
	if purchase.Day() > c.Day {
		month = month.Add(1)
	}
	return month.Day(c.Day), nil
}

func (c CutOff) DueDay() int { return c.Day }

// Statement places the first installment on an explicitly chosen
// statement month at the card's due day.
type Statement struct {
	Month core.YearMonth
	Day   int
}

func (s Statement) FirstDue(core.Date) (core.Date, error) {
	if err := core.ValidateDueDay(s.Day); err != nil {
		return core.Date{}, err
	}
	if err := s.Month.Validate(); err != nil {
		return core.Date{}, fmt.Errorf("statement month: %w", err)
	}
	return s.Month.Day(s.Day), nil
}

func (s Statement) DueDay() int { return s.Day }

// Explicit uses the given date as the first due date.
type Explicit struct {
	Due core.Date
}

func (e Explicit) FirstDue(core.Date) (core.Date, error) {
	if err := e.Due.Validate(); err != nil {
		return core.Date{}, fmt.Errorf("first due date: %w", err)
	}
	return e.Due, nil
}

func (e Explicit) DueDay() int { return e.Due.Day() }

// RuleFor picks the rule by precedence: an explicit due date wins over an
// explicit statement month, which wins over the cut-off rule.
func RuleFor(dueDay int, statement core.YearMonth, due core.Date) DueRule {
	switch {
	case !due.IsZero():
		return Explicit{Due: due}
	case !statement.IsZero():
		return Statement{Month: statement, Day: dueDay}
	default:
		return CutOff{Day: dueDay}
	}
}
