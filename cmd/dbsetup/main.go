// Command dbsetup creates the users table if it does not exist yet. It is
// safe to run any number of times.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"users-service/config"
	"users-service/db"
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
	defer func() { _ = log.Sync() }()

	log.Info("creating database tables...")

	provider, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Errorw("connect database", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
	defer func() { _ = provider.Close() }()

	if err := db.EnsureSchema(ctx, provider.DB(), log); err != nil {
		log.Errorw("create tables", "error", err)
		_ = provider.Close()
		_ = log.Sync()
		os.Exit(1)
	}

	log.Info("database tables created (if they didn't exist)")
}
