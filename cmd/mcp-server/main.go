// mcp-server exposes the electricity price tools over JSON-RPC on stdio.
// stdout carries protocol messages only; all logging goes to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"electricity-price/internal/app"
	"electricity-price/internal/config"
	"electricity-price/internal/logging"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server listening on stdio", zap.String("name", app.ServerName), zap.String("version", app.Version))

	// A blocked stdin read does not observe ctx, so a signal stops waiting
	// here instead of inside ServeStdio.
	done := make(chan error, 1)
	go func() {
		done <- a.RPC.ServeStdio(ctx, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			logger.Error("MCP server stopped with error", zap.Error(err))
			a.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}
	logger.Info("MCP server stopped")
}
