package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/cache"
	"github.com/MrJamesThe3rd/dashboard/internal/config"
	"github.com/MrJamesThe3rd/dashboard/internal/database"
	dashboardHttp "github.com/MrJamesThe3rd/dashboard/internal/http"
	importHandler "github.com/MrJamesThe3rd/dashboard/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/dashboard/internal/http/invoice"
	loginHandler "github.com/MrJamesThe3rd/dashboard/internal/http/login"
	"github.com/MrJamesThe3rd/dashboard/internal/identity"
	userStore "github.com/MrJamesThe3rd/dashboard/internal/identity/store"
	"github.com/MrJamesThe3rd/dashboard/internal/importer"
	invoiceStore "github.com/MrJamesThe3rd/dashboard/internal/invoice/store"
	"github.com/MrJamesThe3rd/dashboard/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.App.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(),
		database.WithPool(cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime))
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var (
		invoices = invoiceStore.New(db)
		pages    = cache.NewPageCache(rdb, cfg.Redis.PageTTL)
		auth     = identity.New(
			[]byte(cfg.Auth.Secret),
			cfg.Auth.SessionTTL,
			[]identity.Provider{identity.NewCredentials(userStore.New(db))},
			identity.WithSecureCookie(cfg.Auth.SecureCookie),
		)
		actions = action.New(invoices, pages, auth,
			action.WithLogger(logger),
			action.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		)
	)

	var (
		invoiceH = invoiceHandler.NewHandler(actions, invoices, pages)
		importH  = importHandler.NewHandler(importer.NewService(actions))
		loginH   = loginHandler.NewHandler(actions, auth)
		healthH  = dashboardHttp.HealthHandler(dashboardHttp.HealthChecks{
			Database: db.PingContext,
			Redis:    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	)

	router := dashboardHttp.New(dashboardHttp.Options{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		Timeout:            cfg.Server.Timeout,
		IsDevelopment:      !cfg.Auth.SecureCookie,
	}, auth, invoiceH, importH, loginH, healthH, promhttp.Handler())

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		slog.Info("starting server", "name", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}

	return level
}
