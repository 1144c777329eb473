// internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/nova-webgames/arena/internal/config"
	"github.com/nova-webgames/arena/internal/storage/gormstore"
	"github.com/nova-webgames/arena/internal/storage/memory"

	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration. The caller
// still has to Init it.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		db, err := gormstore.OpenPostgres(cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{DB: db, Logger: log}), nil
	case "sqlite":
		db, err := gormstore.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{DB: db, Logger: log}), nil
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
