package users

import (
	"context"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/memstore"
)

type MemoryRepository struct {
	m *memstore.Sharded[models.User]
}

func NewMemoryRepository(shardPow uint8) *MemoryRepository {
	return &MemoryRepository{m: memstore.New[models.User](shardPow)}
}

func (r *MemoryRepository) GetOrCreate(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	return r.apply(userID, now, func(*models.User) {})
}

func (r *MemoryRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	u, ok := r.m.Get(userID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) RecordSubmission(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	return r.apply(userID, now, func(u *models.User) { u.ReportCount++ })
}

func (r *MemoryRepository) IncrementVerified(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	return r.apply(userID, now, func(u *models.User) {
		u.VerifiedReportCount++
		u.IsVerified = true
	})
}

func (r *MemoryRepository) apply(userID string, now time.Time, mutate func(*models.User)) (*models.User, error) {
	if userID == "" {
		return nil, common.ErrorValidation
	}
	u, _ := r.m.Update(userID, func(cur models.User, ok bool) (models.User, bool) {
		if !ok {
			cur = models.User{ID: userID, CreatedAt: now}
		}
		mutate(&cur)
		return cur, true
	})
	return &u, nil
}
