package reports

import (
	"context"
	"sort"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/memstore"
)

type MemoryRepository struct {
	m *memstore.Sharded[models.Report]
}

func NewMemoryRepository(shardPow uint8) *MemoryRepository {
	return &MemoryRepository{m: memstore.New[models.Report](shardPow)}
}

func (r *MemoryRepository) Put(ctx context.Context, rep *models.Report) error {
	if rep.ID == "" {
		return common.ErrorValidation
	}
	r.m.Update(rep.ID, func(cur models.Report, ok bool) (models.Report, bool) {
		next := *rep
		if ok && cur.Status == models.StatusVerified {
			next.Status = models.StatusVerified
		}
		return next, true
	})
	return nil
}

func (r *MemoryRepository) Insert(ctx context.Context, rep *models.Report) error {
	if rep.ID == "" {
		return common.ErrorValidation
	}
	_, stored := r.m.Update(rep.ID, func(cur models.Report, ok bool) (models.Report, bool) {
		if ok {
			return cur, false
		}
		return *rep, true
	})
	if !stored {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, reportID string) (*models.Report, error) {
	rep, ok := r.m.Get(reportID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &rep, nil
}

func (r *MemoryRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Report, error) {
	return r.collect(limit, func(rep *models.Report) bool { return !rep.CreatedAt.Before(since) }), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	return r.collect(0, func(rep *models.Report) bool { return rep.UserID == userID }), nil
}

func (r *MemoryRepository) MarkVerified(ctx context.Context, reportID string) (*models.Report, bool, error) {
	var (
		found   bool
		changed bool
	)
	rep, _ := r.m.Update(reportID, func(cur models.Report, ok bool) (models.Report, bool) {
		found = ok
		if !ok {
			return cur, false
		}
		changed = cur.Status != models.StatusVerified
		cur.Status = models.StatusVerified
		return cur, changed
	})
	if !found {
		return nil, false, common.ErrorNotFound
	}
	return &rep, changed, nil
}

func (r *MemoryRepository) collect(limit int, keep func(*models.Report) bool) []*models.Report {
	var out []*models.Report
	r.m.Iter(func(_ string, rep models.Report) bool {
		if keep(&rep) {
			out = append(out, &rep)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
