package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/shareit/internal/api"
	"github.com/erazemk/shareit/internal/config"
	"github.com/erazemk/shareit/internal/db"
	"github.com/erazemk/shareit/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the server and blocks until it stops. Deferred cleanup runs on
// every return path, so the log is flushed and the database closed.
func run(args []string, stdout io.Writer) error {
	cfg, err := config.LoadServer(args, stdout)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Env, cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(context.Background(), database, logger); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	logger.Info("database ready", zap.String("path", cfg.DBPath))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(database, api.NewServices(database, logger), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("server stopped, closing database")
	return nil
}
