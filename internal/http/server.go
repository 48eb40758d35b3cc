package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"financas/internal/log"
	"financas/internal/session"
)

// Options tunes a Server.
type Options struct {
	// Currency is the ISO code used by workbook exports.
	Currency string
	// RateLimit caps mutating requests per client per minute.
	RateLimit int
	Logger    *log.Logger
	// Ready reports whether dependencies are reachable. Nil means ready.
	Ready func(context.Context) error
}

type Server struct {
	http.Server
	books    *session.Registry
	currency string
	ready    func(context.Context) error
	now      func() time.Time

	logger      *log.Logger
	sl          *log.StructuredLogger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, books *session.Registry, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		books:       books,
		currency:    opts.Currency,
		ready:       opts.Ready,
		now:         time.Now,
		logger:      logger,
		sl:          log.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(opts.RateLimit, true),
		metrics:     &securityMetrics{},
	}

	mux := http.NewServeMux()
	s.routes(mux)

	handler := log.Middleware(logger)(
		log.RequestIDMiddleware(func(r *http.Request) string {
			id := requestID(r)
			r.Header.Set("X-Request-ID", id)
			return id
		})(s.guard(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	const u = "/api/users/{user}"
	mux.HandleFunc("GET "+u+"/book", s.handleBook)

	mux.HandleFunc("POST "+u+"/incomes", s.handleAddIncome)
	mux.HandleFunc("PUT "+u+"/incomes/{id}", s.handleEditIncome)
	mux.HandleFunc("DELETE "+u+"/incomes/{id}", s.handleDeleteIncome)
	mux.HandleFunc("POST "+u+"/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT "+u+"/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE "+u+"/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST "+u+"/investments", s.handleAddInvestment)
	mux.HandleFunc("PUT "+u+"/investments/{id}", s.handleEditInvestment)
	mux.HandleFunc("DELETE "+u+"/investments/{id}", s.handleDeleteInvestment)

	mux.HandleFunc("GET "+u+"/cards", s.handleListCards)
	mux.HandleFunc("POST "+u+"/cards", s.handleDefineCard)
	mux.HandleFunc("POST "+u+"/card-purchases", s.handleAddCardPurchase)
	mux.HandleFunc("DELETE "+u+"/card-purchases/{id}", s.handleDeleteCardPurchase)
	mux.HandleFunc("PUT "+u+"/card-purchases/{id}/paid", s.handleSetInstallmentPaid)
	mux.HandleFunc("DELETE "+u+"/purchases/{purchase}", s.handleDeletePurchase)
	mux.HandleFunc("POST "+u+"/statements/paid", s.handleMarkStatementPaid)
	mux.HandleFunc("PUT "+u+"/budget/{category}", s.handleSetBudget)
	mux.HandleFunc("DELETE "+u+"/budget/{category}", s.handleDeleteBudget)

	mux.HandleFunc("GET "+u+"/summary/monthly", s.handleMonthly)
	mux.HandleFunc("GET "+u+"/summary/annual", s.handleAnnual)
	mux.HandleFunc("GET "+u+"/projection", s.handleProjection)
	mux.HandleFunc("GET "+u+"/card-status", s.handleCardStatus)
	mux.HandleFunc("GET "+u+"/budget-status", s.handleBudgetStatus)
	mux.HandleFunc("GET "+u+"/dashboard", s.handleDashboard)
	mux.HandleFunc("GET "+u+"/valuation", s.handleValuation)
	mux.HandleFunc("GET "+u+"/export.xlsx", s.handleExport)
	mux.HandleFunc("POST "+u+"/import", s.handleImport)
}

// guard applies security headers and rate limiting, and logs request
// completion.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		clientIP := extractClientIP(r)
		logger := log.FromContext(ctx)

		setSecurityHeaders(w, r)
		w.Header().Set("X-Request-ID", r.Header.Get("X-Request-ID"))

		if detectSuspiciousRequest(r, s.metrics) {
			logger.WarnContext(ctx, "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, clientIP, log.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").
				Header("Retry-After", "60").
				Write(rw)
		} else {
			next.ServeHTTP(rw, r)
		}

		s.sl.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// Stats returns the security counters.
func (s *Server) Stats() SecurityStats {
	return s.metrics.snapshot()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
