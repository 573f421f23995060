package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/pizzeria/internal/app"
	"github.com/dukerupert/pizzeria/internal/config"
	"github.com/dukerupert/pizzeria/internal/logging"
	"github.com/dukerupert/pizzeria/internal/middleware"
	"github.com/dukerupert/pizzeria/internal/server"
	"github.com/dukerupert/pizzeria/internal/session"
	"github.com/dukerupert/pizzeria/internal/shop"
	"github.com/dukerupert/pizzeria/internal/store"
	"github.com/dukerupert/pizzeria/internal/token"
	ws "github.com/dukerupert/pizzeria/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	st, err := app.OpenStorage(cfg, logger.With("component", "storage"))
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	hasher, err := app.Hasher(cfg)
	if err != nil {
		slog.Error("failed to load salt", "error", err)
		os.Exit(1)
	}

	storeLogger := logger.With("component", "store")
	hub := ws.NewHub(logger.With("component", "websocket"))
	svc := shop.New(shop.Deps{
		Menu:     store.NewMenuStore(st.Backend, storeLogger),
		Users:    store.NewUserStore(st.Backend, storeLogger),
		Orders:   store.NewOrderStore(st.Backend, storeLogger),
		Tokens:   token.NewAuthority(st.Backend, hasher, logger.With("component", "token")),
		Hasher:   hasher,
		Sessions: session.NewStore(cfg.SessionTTL),
		Notifier: hub,
		Logger:   logger.With("component", "shop"),
	})

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Error("invalid trusted proxies", "error", err)
		os.Exit(1)
	}

	srv := server.New(svc, hub, server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Proxies:        proxies,
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sessions := srv.SessionStore()
				if n := sessions.DeleteExpired(); n > 0 {
					slog.Info("cleaned up expired sessions", "count", n, "active", sessions.Len())
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("pizzeria starting", "addr", ":"+cfg.Port, "storage", cfg.Storage)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
