package reports

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

const reportColumns = `report_id, user_id, text, lat, lon,
		 text_label, text_confidence, image_label, image_confidence, image_key,
		 corroboration_strength, user_reputation_at_submission, veracity_score,
		 status, created_at`

const insertReport = `INSERT INTO hazard_reports (` + reportColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, rep *models.Report) error {
	query := insertReport + `
		 ON CONFLICT (report_id) DO UPDATE SET
		 user_id = EXCLUDED.user_id, text = EXCLUDED.text, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
		 text_label = EXCLUDED.text_label, text_confidence = EXCLUDED.text_confidence,
		 image_label = EXCLUDED.image_label, image_confidence = EXCLUDED.image_confidence,
		 image_key = EXCLUDED.image_key, corroboration_strength = EXCLUDED.corroboration_strength,
		 user_reputation_at_submission = EXCLUDED.user_reputation_at_submission,
		 veracity_score = EXCLUDED.veracity_score, created_at = EXCLUDED.created_at,
		 status = CASE WHEN hazard_reports.status = 'verified' THEN hazard_reports.status ELSE EXCLUDED.status END`

	if _, err := r.db.ExecContext(ctx, query, args(rep)...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rep *models.Report) error {
	query := insertReport + `
		 ON CONFLICT (report_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args(rep)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, reportID string) (*models.Report, error) {
	query :=
		`SELECT ` + reportColumns + ` FROM hazard_reports
		 WHERE report_id = $1`

	rep, err := scanReport(r.db.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rep, nil
}

func (r *PostgresRepository) ListSince(ctx context.Context, since time.Time, limit int) ([]*models.Report, error) {
	query :=
		`SELECT ` + reportColumns + ` FROM hazard_reports
		 WHERE created_at >= $1
		 ORDER BY created_at DESC, report_id`
	params := []any{since}
	if limit > 0 {
		query += ` LIMIT $2`
		params = append(params, limit)
	}
	return r.list(ctx, query, params...)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Report, error) {
	query :=
		`SELECT ` + reportColumns + ` FROM hazard_reports
		 WHERE user_id = $1
		 ORDER BY created_at DESC, report_id`
	return r.list(ctx, query, userID)
}

// MarkVerified flips the status with a guarded UPDATE. When no row matches,
// a follow-up read tells an unknown report from an already verified one.
func (r *PostgresRepository) MarkVerified(ctx context.Context, reportID string) (*models.Report, bool, error) {
	query :=
		`UPDATE hazard_reports SET status = $2
		 WHERE report_id = $1 AND status <> $2
		 RETURNING ` + reportColumns

	rep, err := scanReport(r.db.QueryRowContext(ctx, query, reportID, string(models.StatusVerified)))
	if err == nil {
		return rep, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	rep, err = r.Get(ctx, reportID)
	if err != nil {
		return nil, false, err
	}
	return rep, false, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, params ...any) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(s scanner) (*models.Report, error) {
	rep := &models.Report{}
	var status string
	err := s.Scan(
		&rep.ID, &rep.UserID, &rep.Text, &rep.Lat, &rep.Lon,
		&rep.TextLabel, &rep.TextConfidence, &rep.ImageLabel, &rep.ImageConfidence, &rep.ImageKey,
		&rep.CorroborationStrength, &rep.UserReputationAtSubmission, &rep.VeracityScore,
		&status, &rep.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rep.Status = models.ReportStatus(status)
	return rep, nil
}

func args(rep *models.Report) []any {
	return []any{
		rep.ID, rep.UserID, rep.Text, rep.Lat, rep.Lon,
		rep.TextLabel, rep.TextConfidence, rep.ImageLabel, rep.ImageConfidence, rep.ImageKey,
		rep.CorroborationStrength, rep.UserReputationAtSubmission, rep.VeracityScore,
		string(rep.Status), rep.CreatedAt,
	}
}
