package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/dbx"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
)

const userColumns = `user_id, created_at, report_count, verified_report_count, is_verified`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	query :=
		`INSERT INTO users (user_id, created_at)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, now))
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE user_id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) RecordSubmission(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	query :=
		`INSERT INTO users (user_id, created_at, report_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id) DO UPDATE SET report_count = users.report_count + 1
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, now))
}

func (r *PostgresRepository) IncrementVerified(ctx context.Context, userID string, now time.Time) (*models.User, error) {
	query :=
		`INSERT INTO users (user_id, created_at, verified_report_count, is_verified)
		 VALUES ($1, $2, 1, TRUE)
		 ON CONFLICT (user_id) DO UPDATE
		 SET verified_report_count = users.verified_report_count + 1, is_verified = TRUE
		 RETURNING ` + userColumns

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, now))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.CreatedAt, &u.ReportCount, &u.VerifiedReportCount, &u.IsVerified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
