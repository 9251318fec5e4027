package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/soundcu/benefit-engine/internal/classification"
	"github.com/soundcu/benefit-engine/internal/config"
	"github.com/soundcu/benefit-engine/internal/engine"
	"github.com/soundcu/benefit-engine/internal/rewards"
	"github.com/soundcu/benefit-engine/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/benefit/benefit.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initRegistry loads card products from the configured file, falling back
// to the built-in catalog.
func initRegistry() (*rewards.Registry, error) {
	registry := rewards.NewRegistry()

	if path := viper.GetString("cards.products_file"); path != "" {
		if err := registry.LoadFile(config.ExpandPath(path)); err != nil {
			return nil, fmt.Errorf("failed to load card products: %w", err)
		}
		return registry, nil
	}

	if err := registry.Load(rewards.DefaultProducts()); err != nil {
		return nil, fmt.Errorf("failed to load default card products: %w", err)
	}
	return registry, nil
}

// initEngine wires storage, classifier, and registry into an engine.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	registry, err := initRegistry()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	eng := engine.New(store, classification.NewDefault(), registry, config.EngineFromViper())
	return eng, store, nil
}
