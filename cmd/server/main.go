package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/internal/api"
	"github.com/d60-Lab/social-graph/internal/api/handler"
	"github.com/d60-Lab/social-graph/internal/api/middleware"
	"github.com/d60-Lab/social-graph/internal/app"
	"github.com/d60-Lab/social-graph/pkg/database"
	"github.com/d60-Lab/social-graph/pkg/logger"
	"github.com/d60-Lab/social-graph/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		env := cfg.Sentry.Environment
		if env == "" {
			env = cfg.Env
		}
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      env,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	rdb, err := app.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// the cache and realtime push are optional; run without them
		logger.Warn("redis unavailable, continuing without cache and realtime push", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	a := app.New(cfg, db, rdb)
	tokens := middleware.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	h := handler.New(a.Relations, a.Engagement, a.Feed, a.Notifications, a.Accounts, tokens)

	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(h, tokens, api.Options{
		ServiceName: cfg.Tracing.ServiceName,
		RateRPS:     cfg.RateLimit.RPS,
		RateBurst:   cfg.RateLimit.Burst,
		Sentry:      cfg.Sentry.DSN != "",
		DB:          db,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
