package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"

	"github.com/dukerupert/pizzeria/internal/handler"
	"github.com/dukerupert/pizzeria/internal/middleware"
	"github.com/dukerupert/pizzeria/internal/session"
	"github.com/dukerupert/pizzeria/internal/shop"
	ws "github.com/dukerupert/pizzeria/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Options struct {
	// AllowedOrigins are extra websocket origin patterns.
	AllowedOrigins []string
	// Proxies decides whose forwarding headers key the rate limiter. Nil
	// keys on the peer address.
	Proxies *middleware.ProxyTrust
}

type Server struct {
	hub         *ws.Hub
	accountH    *handler.AccountHandler
	menuH       *handler.MenuHandler
	orderH      *handler.OrderHandler
	sessions    *session.Store
	rateLimiter *middleware.RateLimiter
	proxies     *middleware.ProxyTrust
	origins     []string
	logger      *slog.Logger
}

func New(svc *shop.Service, hub *ws.Hub, opts Options, logger *slog.Logger) *Server {
	return &Server{
		hub:         hub,
		accountH:    handler.NewAccountHandler(svc, logger.With("component", "account")),
		menuH:       handler.NewMenuHandler(svc, logger.With("component", "menu")),
		orderH:      handler.NewOrderHandler(svc, logger.With("component", "order")),
		sessions:    svc.Sessions(),
		rateLimiter: middleware.NewRateLimiter(),
		proxies:     opts.Proxies,
		origins:     opts.AllowedOrigins,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *session.Store {
	return s.sessions
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.rateLimitedHandler(s.accountH.Register))
	mux.HandleFunc("POST /login", s.rateLimitedHandler(s.accountH.Login))
	mux.HandleFunc("POST /logout", s.accountH.Logout)
	mux.HandleFunc("GET /whoami", s.accountH.WhoAmI)

	mux.HandleFunc("GET /menu", s.menuH.List)
	mux.HandleFunc("POST /menu", s.menuH.Create)
	mux.HandleFunc("DELETE /menu/{id}", s.menuH.Delete)

	mux.HandleFunc("POST /order", s.orderH.Place)
	mux.HandleFunc("GET /order/status", s.orderH.Status)
	mux.HandleFunc("GET /order/{id}", s.orderH.Get)
	mux.HandleFunc("DELETE /order/{id}", s.orderH.Cancel)
	mux.HandleFunc("GET /orders", s.orderH.List)
	mux.HandleFunc("GET /my/orders", s.orderH.Mine)

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.origins, s.logger.With("component", "websocket")))
	mux.HandleFunc("/", s.notFound)

	var h http.Handler = mux
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.LoadSession(s.sessions)(h)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok", "clients": s.hub.ClientCount()})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "Invalid endpoint."})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	return middleware.RateLimit(s.rateLimiter, s.proxies.ClientIP, authRateLimit, authRateWindow)(h).ServeHTTP
}

// recoveryLogger sends recovered panics to slog.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("panic recovered", "panic", fmt.Sprint(v...))
}
