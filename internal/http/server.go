package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"duit/internal/auth"
	"duit/internal/middleware/ratelimit"
	"duit/internal/middleware/security"
	"duit/internal/middleware/trace"
	"duit/internal/services"
	"duit/internal/storage"
)

// Server is the HTTP API over the account and ledger services.
type Server struct {
	http.Server

	accounts *services.AccountService
	ledger   *services.LedgerService
	tokens   *auth.TokenCodec
	storage  *storage.SQLiteRepository

	secureCookie bool
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// Options carries everything NewServer needs; the signing secret lives
// inside the token codec, never as a package-level value.
type Options struct {
	Addr         string
	Accounts     *services.AccountService
	Ledger       *services.LedgerService
	Tokens       *auth.TokenCodec
	Storage      *storage.SQLiteRepository
	SecureCookie bool
	RateLimit    ratelimit.Config
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		accounts:     opts.Accounts,
		ledger:       opts.Ledger,
		tokens:       opts.Tokens,
		storage:      opts.Storage,
		secureCookie: opts.SecureCookie,
		limiter:      ratelimit.NewLimiter(opts.RateLimit),
	}

	mux.HandleFunc("POST /api/register", s.withRateLimit(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.withRateLimit(s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("POST /api/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	traceMW := trace.NewMiddleware(extractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: traceMW.Middleware(headersMW.Middleware(mux)),
	}

	return s
}

// withRateLimit guards the credential endpoints against brute force.
func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	limited := s.limiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "Rate limit exceeded",
			"client_ip", extractClientIP(r),
			"path", r.URL.Path)
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, envelope{Message: "too many requests, try again later"})
	})(next)
	return limited.ServeHTTP
}

// extractClientIP resolves the client address, preferring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Stop drains in-flight requests and releases the rate limiter.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
