// Package store provides the key/value backends of the persisted state.
package store

import (
	"context"
	"fmt"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"go.uber.org/zap"
)

// New opens the backend selected by cfg.Backend.
func New(ctx context.Context, cfg types.StateConfig, logger *zap.Logger) (repository.StateRepository, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryRepository(), nil
	case "sqlite":
		return NewSQLiteRepository(cfg.SQLitePath)
	case "redis":
		return NewRedisRepository(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("state backend %q: %w", cfg.Backend, types.ErrUnsupportedBackend)
	}
}
