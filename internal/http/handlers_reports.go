package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/export"
	"financas/internal/ledger"
	"financas/internal/log"
	"financas/internal/reports"
	"financas/internal/session"
	"financas/internal/valuation"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// maxImportBytes bounds uploaded workbooks.
	maxImportBytes = 20 << 20
)

func (s *Server) today() core.Date { return core.DateOf(s.now()) }

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	ym, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.Monthly(b, ym), nil
	})
}

func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.Annual(b, year), nil
	})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.AnnualProjection(b, now), nil
	})
}

func (s *Server) handleCardStatus(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.CardStatusAt(b, now), nil
	})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	ym, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.Budget(b, ym), nil
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	s.view(w, r, func(b *ledger.Book) (any, error) {
		return reports.DashboardAt(b, now)
	})
}

type valuationView struct {
	Date       core.Date             `json:"date"`
	Valuations []valuation.Valuation `json:"valuations"`
	Portfolio  valuation.Portfolio   `json:"portfolio"`
	ByGoal     []valuation.GoalTotal `json:"by_goal"`
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	ref := s.today()
	if v := strings.TrimSpace(r.URL.Query().Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			s.fail(w, r, log.OpRead, err)
			return
		}
		ref = d
	}
	s.view(w, r, func(b *ledger.Book) (any, error) {
		vals, err := valuation.ValueAsOf(b.Investments.All(), ref)
		if err != nil {
			return nil, err
		}
		return valuationView{
			Date:       ref,
			Valuations: vals,
			Portfolio:  valuation.Totals(vals),
			ByGoal:     valuation.ByGoal(vals),
		}, nil
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	now := s.today()
	var buf bytes.Buffer
	err := s.books.View(r.Context(), r.PathValue("user"), func(b *ledger.Book) error {
		return export.WriteWorkbook(&buf, b, now, export.Options{Currency: s.currency, Charts: true})
	})
	if err != nil {
		s.fail(w, r, log.OpExport, err)
		return
	}
	name := fmt.Sprintf("financas_%s_%s.xlsx", session.Slugify(r.PathValue("user")), s.now().Format("20060102"))
	NewResponse().
		Header("Content-Disposition", `attachment; filename="`+name+`"`).
		Header("Content-Length", itoa(int64(buf.Len()))).
		Body(xlsxContentType, buf.Bytes()).
		Write(w)
}

type importView struct {
	Mode   string        `json:"mode"`
	Rows   export.Result `json:"rows"`
	Backup string        `json:"backup,omitempty"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := export.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		s.fail(w, r, log.OpImport, fmt.Errorf("%w: read upload: %v", core.ErrInvalidInput, err))
		return
	}
	if len(body) > maxImportBytes {
		s.fail(w, r, log.OpImport, fmt.Errorf("%w: workbook larger than %d bytes", core.ErrInvalidInput, maxImportBytes))
		return
	}
	tables, err := export.ReadWorkbook(bytes.NewReader(body))
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}

	start := time.Now()
	res, backup, err := s.books.Import(r.Context(), r.PathValue("user"), tables, mode)
	if err != nil {
		s.fail(w, r, log.OpImport, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Workbook imported",
		log.FieldUser, session.Slugify(r.PathValue("user")),
		"mode", mode.String(),
		log.FieldDuration, time.Since(start).Milliseconds())
	NewResponse().JSON(importView{Mode: mode.String(), Rows: res, Backup: backup}).Write(w)
}
