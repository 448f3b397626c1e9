package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"matumizi/internal/backend"
	"matumizi/internal/log"
	"matumizi/internal/middleware/ratelimit"
	"matumizi/internal/middleware/security"
	"matumizi/internal/middleware/trace"
)

// Options tunes the server.
type Options struct {
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	svc      *backend.Services
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

func NewServer(addr string, svc *backend.Services, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		svc:      svc,
		logger:   logger,
		detector: detector,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(logger, detector.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("GET /api/subcategories", s.handleListSubcategories)
	mux.HandleFunc("POST /api/subcategories", s.handleAddSubcategory)

	mux.HandleFunc("GET /api/wallets", s.handleListWallets)
	mux.HandleFunc("POST /api/wallets", s.handleAddWallet)
	mux.HandleFunc("GET /api/wallets/table", s.handleWalletTable)
	mux.HandleFunc("GET /api/wallets/{id}", s.handleGetWallet)
	mux.HandleFunc("GET /api/wallets/{id}/unused", s.handleWalletUnused)
	mux.HandleFunc("POST /api/wallets/{id}/archive", s.handleSetArchived(true))
	mux.HandleFunc("POST /api/wallets/{id}/unarchive", s.handleSetArchived(false))
	mux.HandleFunc("DELETE /api/wallets/{id}", s.handleDeleteWallet)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleRecordExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/summary/categories", s.handleSpendingByCategory)
	mux.HandleFunc("GET /api/summary/months", s.handleMonthlySpending)
	mux.HandleFunc("GET /api/reconcile", s.handleReconcile)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ClientIP, isMutation, s.handleRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func isMutation(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorJSON{Error: "rate limit exceeded", Type: "rate_limit"})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports 503 until the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Repo.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) Stats() (trace.Metrics, ratelimit.Metrics, security.DetectionMetrics) {
	return s.tracer.GetMetrics(), s.limiter.GetMetrics(), s.detector.GetMetrics()
}
