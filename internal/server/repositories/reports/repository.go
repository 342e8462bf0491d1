package reports

import (
	"context"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
)

// Repository stores analyzed reports.
type Repository interface {
	// Put stores r, replacing any report with the same ID. A verified
	// report keeps its status.
	Put(ctx context.Context, r *models.Report) error
	// Insert stores r or fails with common.ErrorAlreadyExists.
	Insert(ctx context.Context, r *models.Report) error
	// Get returns common.ErrorNotFound for unknown IDs.
	Get(ctx context.Context, reportID string) (*models.Report, error)
	// ListSince returns reports created at or after since, newest first.
	// A non-positive limit means no limit.
	ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Report, error)
	// ListByUser returns the user's reports, newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.Report, error)
	// MarkVerified moves a report from pending to verified in one atomic
	// step. changed is false when the report was already verified.
	MarkVerified(ctx context.Context, reportID string) (r *models.Report, changed bool, err error)
}
