// Package render formats reports as Markdown for the command line.
package render

import (
	"bytes"
	"fmt"
	"strconv"

	"financas/internal/core"
	"financas/internal/reports"
	"financas/internal/valuation"

	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// Renderer formats amounts in one currency.
type Renderer struct {
	currency string
}

func New(currency string) Renderer {
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return Renderer{currency: currency}
}

func (r Renderer) money(m core.Money) string { return m.Format(r.currency) }

func percent(d decimal.Decimal) string { return d.StringFixed(1) + "%" }

var statusLabels = map[string]string{
	reports.StatusOverdue: "VENCIDA",
	reports.StatusDueSoon: "vence em breve",
	reports.StatusOpen:    "em aberto",
}

var ratingLabels = map[string]string{
	reports.RatingLow:       "baixa",
	reports.RatingOK:        "boa",
	reports.RatingExcellent: "excelente",
}

// Monthly renders the cash picture of one month with its category budgets.
func (r Renderer) Monthly(s reports.MonthlySummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Resumo de %s", s.Month))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", "Valor"},
		Rows: [][]string{
			{"Receitas", r.money(s.Income)},
			{"Despesas", r.money(s.Expenses)},
			{"Investimentos", r.money(s.Investments)},
			{"Fatura do cartão", r.money(s.CardStatement)},
			{md.Bold("Saldo"), md.Bold(r.money(s.Balance))},
		},
	})

	if len(s.Categories) > 0 {
		doc.H2("Despesas por categoria")
		rows := make([][]string, 0, len(s.Categories))
		for _, c := range s.Categories {
			limit, used := "-", "-"
			if c.HasLimit {
				limit, used = r.money(c.Limit), percent(c.Percent)
			}
			if c.Warning {
				used += " ⚠"
			}
			rows = append(rows, []string{c.Category, r.money(c.Spent), limit, used})
		}
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Categoria", "Gasto", "Limite", "Uso"},
			Rows:      rows,
		})
	}
	return doc.String()
}

// Annual renders one row per month followed by totals and averages.
func (r Renderer) Annual(a reports.AnnualSummary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Resumo anual de %d", a.Year))
	row := func(label string, m reports.MonthRow) []string {
		return []string{label, r.money(m.Income), r.money(m.Expenses), r.money(m.Investments), r.money(m.Balance)}
	}
	rows := make([][]string, 0, len(a.Months)+2)
	for _, m := range a.Months {
		rows = append(rows, row(m.Month.String(), m))
	}
	rows = append(rows, row(md.Bold("Total"), a.Totals), row("Média", a.Averages))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Mês", "Receitas", "Despesas", "Investimentos", "Saldo"},
		Rows:      rows,
	})
	return doc.String()
}

// Projection renders the annual projection and the savings rating.
func (r Renderer) Projection(p reports.Projection) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Projeção para %d", p.Year))
	doc.PlainText(fmt.Sprintf("Médias desde %s.", p.Since))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Mensal", "Anual"},
		Rows: [][]string{
			{"Receitas", r.money(p.AverageIncome), r.money(p.AnnualIncome)},
			{"Despesas", r.money(p.AverageExpenses), r.money(p.AnnualExpenses)},
			{"Investimentos", r.money(p.AverageInvestments), r.money(p.AnnualInvestments)},
			{md.Bold("Sobra"), r.money(p.MonthlySurplus), r.money(p.AnnualSavings)},
		},
	})
	doc.PlainText(fmt.Sprintf("Até o fim do ano (%d meses): %s", p.RemainingMonths, r.money(p.SavingsToYearEnd)))
	if p.HasSavingsRate {
		doc.PlainText(fmt.Sprintf("Taxa de poupança: %s (%s)", percent(p.SavingsRate), ratingLabels[p.Rating]))
	}
	return doc.String()
}

// CardStatus renders open statements and the next installments.
func (r Renderer) CardStatus(s reports.CardStatus) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Cartões")
	if s.AllPaid() {
		doc.PlainText("Nenhuma fatura em aberto.")
		return doc.String()
	}

	rows := make([][]string, 0, len(s.Statements))
	for _, st := range s.Statements {
		rows = append(rows, []string{
			st.Month.String(), st.Card, st.DueDate.String(),
			strconv.Itoa(st.Count), r.money(st.Total), statusLabels[st.Status],
		})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Fatura", "Cartão", "Vencimento", "Parcelas", "Total", "Situação"},
		Rows:      rows,
	})
	doc.PlainText(fmt.Sprintf("Total em aberto: %s", md.Bold(r.money(s.TotalOwed))))

	if len(s.Upcoming) > 0 {
		doc.H2("Próximas parcelas")
		items := make([]string, 0, len(s.Upcoming))
		for _, p := range s.Upcoming {
			items = append(items, fmt.Sprintf("%s %s %d/%d (%s) %s",
				p.DueDate, p.Description, p.Index, p.Installments, p.Card, r.money(p.Amount)))
		}
		doc.OrderedList(items...)
	}
	return doc.String()
}

// Portfolio renders investment valuations, totals and the per-goal split.
func (r Renderer) Portfolio(ref core.Date, vals []valuation.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Carteira em %s", ref))
	if len(vals) == 0 {
		doc.PlainText("Nenhum investimento registrado.")
		return doc.String()
	}

	rows := make([][]string, 0, len(vals))
	for _, v := range vals {
		rows = append(rows, []string{
			v.Entry.Date.String(), v.Entry.Instrument, v.Entry.Goal,
			r.money(v.Entry.Principal), strconv.Itoa(v.Months), r.money(v.CurrentValue),
		})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Data", "Tipo", "Objetivo", "Aplicado", "Meses", "Atual"},
		Rows:      rows,
	})

	total := valuation.Totals(vals)
	doc.PlainText(fmt.Sprintf("Aplicado %s, atual %s, rendimento %s (%s)",
		r.money(total.Principal), r.money(total.CurrentValue), r.money(total.Yield), percent(total.YieldPercent)))

	doc.H2("Por objetivo")
	goals := valuation.ByGoal(vals)
	goalRows := make([][]string, 0, len(goals))
	for _, g := range goals {
		goalRows = append(goalRows, []string{g.Goal, r.money(g.Principal), r.money(g.CurrentValue), percent(g.YieldPercent)})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Objetivo", "Aplicado", "Atual", "Rendimento"},
		Rows:      goalRows,
	})
	return doc.String()
}

// Budget renders budget usage for a month.
func (r Renderer) Budget(ym core.YearMonth, lines []reports.BudgetLine) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Orçamento de %s", ym))
	if len(lines) == 0 {
		doc.PlainText("Nenhum limite definido.")
		return doc.String()
	}
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		state := "ok"
		switch {
		case l.Exceeded:
			state = "estourado"
		case l.Warning:
			state = "atenção"
		}
		rows = append(rows, []string{l.Category, r.money(l.Limit), r.money(l.Spent), r.money(l.Remaining), percent(l.Percent), state})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Categoria", "Limite", "Gasto", "Restante", "Uso", "Situação"},
		Rows:      rows,
	})
	return doc.String()
}
