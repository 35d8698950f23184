package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"users-service/config"
	"users-service/db"
	"users-service/handler"
	"users-service/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("server stopped", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	log.Infow("starting users service", "database", cfg.Database.String())

	// 1. Connect (retries while the database comes up).
	provider, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Close(); err != nil {
			log.Warnw("close database", "error", err)
		}
	}()

	// 2. Make sure the users table exists before accepting traffic.
	if err := db.EnsureSchema(ctx, provider.DB(), log); err != nil {
		return err
	}

	// 3. HTTP.
	h := handler.New(log, provider)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(h, cfg.HTTP.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening",
			"addr", srv.Addr,
			"routes", []string{"GET /", "GET /ping", "GET /items/:item_id", "POST /users/", "GET /users/"},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
