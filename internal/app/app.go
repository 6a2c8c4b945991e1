// Package app wires configuration, storage and the tool service together
// for the binaries under cmd/ and the HTTP server.
package app

import (
	"fmt"

	"electricity-price/internal/config"
	"electricity-price/internal/database"
	"electricity-price/internal/mcp"
	"electricity-price/internal/normalize"
	"electricity-price/internal/store"
	"electricity-price/internal/tools"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ServerName = "electricity_price_mcp_server"
	Version    = "1.0.0"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Aliases *normalize.AliasTable
	Store   *store.PriceStore
	Tools   *tools.Service
	RPC     *mcp.Server
}

// New builds the application without touching the database. The pool is
// opened by the first lookup.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	return NewWithOpener(cfg, logger, func() (*gorm.DB, error) {
		return database.Initialize(cfg, logger)
	})
}

// NewWithOpener is New with a custom connection opener.
func NewWithOpener(cfg *config.Config, logger *zap.Logger, open store.Opener) (*App, error) {
	for _, w := range cfg.Warnings {
		logger.Warn("Invalid configuration value", zap.String("detail", w))
	}

	aliases, err := normalize.LoadAliasFile(cfg.AliasFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load region aliases: %w", err)
	}
	logger.Info("Loaded region aliases",
		zap.Int("aliases", aliases.Len()),
		zap.Int("regions", len(aliases.Regions())),
	)

	st := store.NewPriceStore(open, logger.Named("store"))
	svc := tools.NewService(aliases, st, logger.Named("tools"))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Aliases: aliases,
		Store:   st,
		Tools:   svc,
		RPC:     mcp.NewServer(svc, logger.Named("mcp"), ServerName, Version),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
