// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"finbook/internal/cache"
	"finbook/internal/currency"
	"finbook/internal/finance"
)

type Server struct {
	http.Server
	svc   *finance.Service
	rates *currency.Table

	// Display currency is runtime-mutable via the settings endpoint.
	settingsMu      sync.RWMutex
	displayCurrency string

	// Report caches, invalidated wholesale on any ledger mutation.
	summaryCache *cache.LRUCache[summaryResponse]
	seriesCache  *cache.LRUCache[[]seriesPoint]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, svc *finance.Service, rates *currency.Table, displayCurrency string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:             svc,
		rates:           rates,
		displayCurrency: displayCurrency,
		summaryCache:    cache.NewLRUCache[summaryResponse](100, 5*time.Minute),
		seriesCache:     cache.NewLRUCache[[]seriesPoint](50, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.seriesCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/transactions", s.withRequestLog(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withRequestLog(s.handleTransactionByID))
	mux.HandleFunc("/api/accounts", s.withRequestLog(s.handleAccounts))
	mux.HandleFunc("/api/accounts/", s.withRequestLog(s.handleAccountByID))
	mux.HandleFunc("/api/budgets", s.withRequestLog(s.handleBudgets))
	mux.HandleFunc("/api/budgets/", s.withRequestLog(s.handleBudgetByID))
	mux.HandleFunc("/api/goals", s.withRequestLog(s.handleGoals))
	mux.HandleFunc("/api/goals/", s.withRequestLog(s.handleGoalByID))
	mux.HandleFunc("/api/reports/summary", s.withRequestLog(s.handleSummary))
	mux.HandleFunc("/api/reports/series", s.withRequestLog(s.handleSeries))
	mux.HandleFunc("/api/categories", s.withRequestLog(s.handleCategories))
	mux.HandleFunc("/api/settings/currency", s.withRequestLog(s.handleSettingsCurrency))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog tags each request with an ID and logs start and
// completion.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateReports drops every cached report. Mutations are rare next to
// reads, so wholesale purging beats per-key bookkeeping.
func (s *Server) invalidateReports() {
	s.summaryCache.Purge()
	s.seriesCache.Purge()
}

func (s *Server) currentDisplayCurrency() string {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.displayCurrency
}

func (s *Server) setDisplayCurrency(code string) {
	s.settingsMu.Lock()
	s.displayCurrency = code
	s.settingsMu.Unlock()
	s.invalidateReports()
}

// summaryCacheKey includes the rate-table timestamp, so a rate refresh
// invalidates converted figures without an explicit purge.
func summaryCacheKey(year, month int, code string, ratesAt time.Time) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month) + "-" + code +
		"-" + strconv.FormatInt(ratesAt.UnixNano(), 10)
}
