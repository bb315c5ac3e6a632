package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/dkropachev/autocatalog/internal/classify"
	"github.com/dkropachev/autocatalog/internal/config"
	"github.com/dkropachev/autocatalog/internal/engine"
	"github.com/dkropachev/autocatalog/internal/lifecycle"
	"github.com/dkropachev/autocatalog/internal/query"
	"github.com/dkropachev/autocatalog/internal/repost"
	"github.com/dkropachev/autocatalog/internal/service"
	"github.com/dkropachev/autocatalog/internal/storage"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	catalog *engine.Catalog
}

func (a *app) close() {
	_ = a.store.Close()
}

// openApp loads config, opens storage, migrates, and wires the catalog.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	classifierCfg := classify.DefaultConfig()
	classifierCfg.MinPrice = cfg.Classify.MinPrice
	classifierCfg.YearFloor = cfg.Classify.YearFloor

	var sink service.RepostSink
	if cfg.Repost.Enabled {
		sink = repost.NewWebhookSink(cfg.Repost.WebhookURL)
	}

	catalog := engine.New(
		store,
		classify.New(classifierCfg),
		query.New(store, query.Config{
			DefaultLimit: cfg.Search.DefaultLimit,
			MaxLimit:     cfg.Search.MaxLimit,
		}),
		lifecycle.New(store),
		sink,
	)

	return &app{cfg: cfg, store: store, catalog: catalog}, nil
}
