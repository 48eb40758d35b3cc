package reports

import (
	"sort"
	"strings"
	"time"

	"financas/internal/aggregate"
	"financas/internal/core"
	"financas/internal/ledger"
)

// Statement states.
const (
	StatusOverdue = "overdue"
	StatusDueSoon = "due_soon"
	StatusOpen    = "open"
)

const (
	dueSoonDays      = 5
	upcomingListSize = 10
)

// Statement is the open (unpaid) part of one card's statement for a month.
type Statement struct {
	Month    core.YearMonth `json:"month"`
	Card     string         `json:"card"`
	DueDate  core.Date      `json:"due_date"`
	Total    core.Money     `json:"total"`
	Count    int            `json:"count"`
	DaysLeft int            `json:"days_left"`
	Status   string         `json:"status"`
}

// CardStatus lists open statements and the next installments to pay.
type CardStatus struct {
	Statements []Statement         `json:"statements"`
	TotalOwed  core.Money          `json:"total_owed"`
	Upcoming   []core.CardPurchase `json:"upcoming"`
}

// AllPaid reports whether there is nothing left to pay.
func (s CardStatus) AllPaid() bool { return len(s.Statements) == 0 }

// CardStatusAt groups unpaid installments by due month and card. A
// statement is overdue once its due date has passed and due soon within
// five days of it.
//
// A statement of a defined card is due on the card's current due day. For
// other cards the most recently added unpaid installment sets the date.
func CardStatusAt(b *ledger.Book, now core.Date) CardStatus {
	open := aggregate.Filter(b.CardPurchases.All(), func(p core.CardPurchase) bool { return !p.Paid })
	sort.SliceStable(open, func(i, j int) bool { return open[i].DueDate.Before(open[j].DueDate) })

	type key struct {
		month core.YearMonth
		card  string
	}
	index := make(map[key]int)
	latest := make(map[key]int64)
	var s CardStatus
	for _, p := range open {
		k := key{month: p.DueDate.YearMonth(), card: strings.ToLower(p.Card)}
		i, ok := index[k]
		if !ok {
			i = len(s.Statements)
			index[k] = i
			s.Statements = append(s.Statements, Statement{Month: k.month, Card: p.Card, DueDate: p.DueDate})
		}
		if p.ID > latest[k] {
			latest[k] = p.ID
			s.Statements[i].DueDate = p.DueDate
		}
		s.Statements[i].Total = s.Statements[i].Total.Add(p.Amount)
		s.Statements[i].Count++
		s.TotalOwed = s.TotalOwed.Add(p.Amount)
	}
	sort.SliceStable(s.Statements, func(i, j int) bool {
		x, y := s.Statements[i], s.Statements[j]
		if x.Month != y.Month {
			return x.Month.Before(y.Month)
		}
		return x.Card < y.Card
	})
	for i := range s.Statements {
		st := &s.Statements[i]
		if def, ok := b.Card(st.Card); ok {
			st.DueDate = st.Month.Day(def.DueDay)
		}
		st.DaysLeft = daysBetween(now, st.DueDate)
		switch {
		case st.DaysLeft < 0:
			st.Status = StatusOverdue
		case st.DaysLeft <= dueSoonDays:
			st.Status = StatusDueSoon
		default:
			st.Status = StatusOpen
		}
	}

	if len(open) > upcomingListSize {
		open = open[:upcomingListSize]
	}
	s.Upcoming = open
	return s
}

func daysBetween(from, to core.Date) int {
	return int(to.Sub(from.Time) / (24 * time.Hour))
}
