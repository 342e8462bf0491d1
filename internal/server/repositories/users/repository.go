package users

import (
	"context"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
)

// Repository stores submitter records. Every mutating call is atomic per
// user: the record is created on first sighting and the counter change is
// applied in the same step.
type Repository interface {
	// GetOrCreate returns the user, creating it with CreatedAt = now if unseen.
	GetOrCreate(ctx context.Context, userID string, now time.Time) (*models.User, error)
	// Get returns common.ErrorNotFound for unknown users.
	Get(ctx context.Context, userID string) (*models.User, error)
	// RecordSubmission creates the user if unseen and increments ReportCount.
	RecordSubmission(ctx context.Context, userID string, now time.Time) (*models.User, error)
	// IncrementVerified creates the user if unseen, increments
	// VerifiedReportCount and marks the user verified.
	IncrementVerified(ctx context.Context, userID string, now time.Time) (*models.User, error)
}
