package main

import (
	"context"
	"fmt"

	"github.com/ltanh/qrflow/internal/config"
	"github.com/ltanh/qrflow/internal/service"
	"github.com/ltanh/qrflow/internal/storage"
)

// initStorage opens the record database and brings the schema current.
func initStorage(ctx context.Context) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
