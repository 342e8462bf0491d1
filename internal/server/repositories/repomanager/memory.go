package repomanager

import (
	"context"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/memstore"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/reports"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory.
type MemoryRepositoryManager struct {
	users   *users.MemoryRepository
	reports *reports.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:   users.NewMemoryRepository(memstore.DefaultShardPow),
		reports: reports.NewMemoryRepository(memstore.DefaultShardPow),
	}
}

func (m *MemoryRepositoryManager) Driver() string                      { return DriverMemory }
func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }
func (m *MemoryRepositoryManager) Users() users.Repository             { return m.users }
func (m *MemoryRepositoryManager) Reports() reports.Repository         { return m.reports }
func (m *MemoryRepositoryManager) Close() error                        { return nil }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return fn(ctx, Repositories{Users: m.users, Reports: m.reports})
}
