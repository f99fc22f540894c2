// Package http is the JSON API surface. Handlers stay thin: they parse the
// request, call the data backend, run the aggregation functions and write a
// view model.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"khata/internal/cache"
	"khata/internal/datastore"
	"khata/internal/middleware/ratelimit"
	"khata/internal/middleware/security"
	"khata/internal/middleware/trace"
)

type Server struct {
	http.Server

	store datastore.Store

	ledgerCache *cache.LRUCache[LedgerView]
	reviewCache *cache.LRUCache[ReviewView]
	cacheMgr    *cache.Manager

	rateLimiter *ratelimit.Limiter
	ipResolver  *security.IPResolver

	shutdownOnce sync.Once
}

// NewServer wires routes, middleware and read caches around a data backend.
func NewServer(addr string, store datastore.Store) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:       store,
		ledgerCache: cache.NewLRUCache[LedgerView](16, 5*time.Minute),
		reviewCache: cache.NewLRUCache[ReviewView](100, 5*time.Minute),
		cacheMgr:    cache.NewManager(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		ipResolver:  security.NewIPResolver(),
	}
	s.cacheMgr.Register(s.ledgerCache)
	s.cacheMgr.Register(s.reviewCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /api/ledger", s.handleLedger)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/review", s.handleReview)
	mux.HandleFunc("GET /api/recurring", s.handleRecurring)
	mux.HandleFunc("GET /api/budgets", s.handleBudgets)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.ipResolver.ExtractClientIP)

	s.Server = http.Server{
		Addr:    addr,
		Handler: headers.Middleware(tracer.Middleware(s.limitWrites(mux))),
	}
	return s
}

// limitWrites applies the per-IP rate limit to mutating methods only; reads
// are served from cache and stay cheap.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			if !s.rateLimiter.Allow(s.ipResolver.ExtractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateViews drops cached read models after any write.
func (s *Server) invalidateViews() {
	s.ledgerCache.Purge()
	s.reviewCache.Purge()
}

// Shutdown stops the background goroutines along with the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady verifies the data backend answers before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.ListBudgets(ctx); err != nil {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
