// Package backend selects and builds the data store and dashboard cache
// from the application configuration.
package backend

import (
	"context"

	"fintrack/internal/services"
)

// CleanupFunc releases whatever a constructor opened.
type CleanupFunc func() error

// BackendResult pairs a ready store with its release function.
type BackendResult struct {
	Store   services.Store
	Cleanup CleanupFunc
}

// Factory opens a data store for a given Config.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType names a data store implementation, as set in DATA_BACKEND.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) IsValid() bool {
	return bt == SQLiteBackend || bt == MemoryBackend
}
