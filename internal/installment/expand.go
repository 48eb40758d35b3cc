package installment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"financas/internal/core"

	"github.com/google/uuid"
)

// Purchase is a card purchase before expansion.
type Purchase struct {
	Date         core.Date
	Description  string
	Total        core.Money
	Installments int
	Card         string
	Rule         DueRule
}

// Expand splits a purchase into one row per installment.
//
// Amounts are split in whole cents and the remainder goes to the last
// installment, so the rows always sum to the total (100.00 in 3 gives
// 33.33, 33.33, 33.34). Installment i is due i-1 calendar months after
// the first due date. Rows are unpaid and share a fresh PurchaseID.
func Expand(p Purchase) ([]core.CardPurchase, error) {
	if p.Installments < 1 || p.Installments > core.MaxInstallments {
		return nil, core.ErrInvalidInstallments
	}
	if p.Total.Cents < 0 {
		return nil, fmt.Errorf("%w: total must not be negative", core.ErrInvalidAmount)
	}
	if err := p.Date.Validate(); err != nil {
		return nil, fmt.Errorf("purchase date: %w", err)
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		return nil, core.ErrEmptyDescription
	}
	// The longest label is the last one.
	if utf8.RuneCountInString(Label(description, p.Installments, p.Installments)) > core.MaxDescriptionLen {
		return nil, core.ErrDescriptionTooLong
	}
	if p.Rule == nil {
		return nil, core.ErrInvalidDueDay
	}
	first, err := p.Rule.FirstDue(p.Date)
	if err != nil {
		return nil, err
	}
	if err := first.AddMonths(p.Installments - 1).Validate(); err != nil {
		return nil, fmt.Errorf("last due date: %w", err)
	}

	amounts := Split(p.Total, p.Installments)
	id := uuid.New()
	rows := make([]core.CardPurchase, p.Installments)
	for i := range rows {
		rows[i] = core.CardPurchase{
			PurchaseID:   id,
			PurchaseDate: p.Date,
			Description:  Label(description, i+1, p.Installments),
			Amount:       amounts[i],
			Installments: p.Installments,
			Index:        i + 1,
			DueDate:      first.AddMonths(i),
			Card:         strings.TrimSpace(p.Card),
			DueDay:       p.Rule.DueDay(),
		}
	}
	return rows, nil
}

// Split divides total into n whole-cent parts; the last part absorbs the
// remainder. n must be at least 1.
func Split(total core.Money, n int) []core.Money {
	base := total.Cents / int64(n)
	parts := make([]core.Money, n)
	for i := range parts {
		parts[i] = core.Cents(base)
	}
	parts[n-1] = core.Cents(total.Cents - base*int64(n-1))
	return parts
}

// Label annotates a description with "(i/N)" when N > 1.
func Label(description string, i, n int) string {
	if n <= 1 {
		return description
	}
	return fmt.Sprintf("%s (%d/%d)", description, i, n)
}
