// internal/store/assessment_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hiring-pipeline/internal/models"
	"hiring-pipeline/internal/pipeline"
)

type assessmentStore struct {
	q querier
}

const assessmentColumns = `id, application_id, type, score, threshold, passed,
	completed_at, reviewed_at, reviewed_by, submission_id, raw_payload, created_at`

func (s *assessmentStore) Create(ctx context.Context, a *models.Assessment) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO assessments (id, application_id, type, score, threshold, passed,
			completed_at, reviewed_at, reviewed_by, submission_id, raw_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.ApplicationID, a.Type, nullFloat(a.Score), a.Threshold, nullBool(a.Passed),
		nullTime(a.CompletedAt), nullTime(a.ReviewedAt), nullStringPtr(a.ReviewedBy),
		a.SubmissionID, a.RawPayload, a.CreatedAt,
	)
	if isUniqueViolation(err, "assessments_submission_id_key") {
		return pipeline.ErrDuplicateSubmission
	}
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *assessmentStore) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	return scanAssessment(row)
}

func (s *assessmentStore) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Assessment, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+assessmentColumns+` FROM assessments WHERE submission_id = $1`, submissionID)
	return scanAssessment(row)
}

func (s *assessmentStore) SetReview(ctx context.Context, id string, passed bool, reviewedBy string, reviewedAt time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE assessments SET passed = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND passed IS NULL`,
		id, passed, reviewedBy, reviewedAt,
	)
	if err != nil {
		return fmt.Errorf("update assessment review: %w", err)
	}
	return requireRow(res, "assessment", id)
}

func scanAssessment(row *sql.Row) (*models.Assessment, error) {
	var a models.Assessment
	var score sql.NullFloat64
	var passed sql.NullBool
	var completedAt, reviewedAt sql.NullTime
	var reviewedBy sql.NullString
	err := row.Scan(&a.ID, &a.ApplicationID, &a.Type, &score, &a.Threshold, &passed,
		&completedAt, &reviewedAt, &reviewedBy, &a.SubmissionID, &a.RawPayload, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan assessment: %w", err)
	}
	a.Score = floatPtr(score)
	a.Passed = boolPtr(passed)
	a.CompletedAt = timePtr(completedAt)
	a.ReviewedAt = timePtr(reviewedAt)
	a.ReviewedBy = stringPtr(reviewedBy)
	return &a, nil
}
