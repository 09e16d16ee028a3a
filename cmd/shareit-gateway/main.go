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

	"github.com/erazemk/shareit/internal/config"
	"github.com/erazemk/shareit/internal/gateway"
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

func run(args []string, stdout io.Writer) error {
	cfg, err := config.LoadGateway(args, stdout)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Env, cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := gateway.NewClient(cfg.ServerURL, cfg.Timeout)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           gateway.NewRouter(gateway.New(client, logger), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	go func() {
		sig := <-quit
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("gateway forced to shutdown", zap.Error(err))
		}
	}()

	logger.Info("gateway started",
		zap.String("addr", cfg.Addr),
		zap.String("server", cfg.ServerURL),
		zap.Duration("timeout", cfg.Timeout),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("gateway stopped")
	return nil
}
