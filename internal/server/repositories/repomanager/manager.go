package repomanager

import (
	"context"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/reports"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/users"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Repositories is one consistent view over the stores.
type Repositories struct {
	Users   users.Repository
	Reports reports.Repository
}

// RepositoryManager vends the repositories of one storage backend.
type RepositoryManager interface {
	Driver() string
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Reports() reports.Repository
	// InTx runs fn against repositories whose writes commit together.
	// Backends without transactions run fn directly; each repository call
	// is still atomic on its own.
	InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Close() error
}
