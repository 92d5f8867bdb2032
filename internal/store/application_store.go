// internal/store/application_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hiring-pipeline/internal/models"
	"hiring-pipeline/internal/pipeline"
)

type applicationStore struct {
	q querier
}

const applicationColumns = `id, person_id, position, current_stage, status,
	submission_id, resume_url, portfolio_url, consent_given, rejection_reason,
	created_at, updated_at`

func (s *applicationStore) Create(ctx context.Context, a *models.Application) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO applications (id, person_id, position, current_stage, status,
			submission_id, resume_url, portfolio_url, consent_given, rejection_reason,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		a.ID, a.PersonID, a.Position, a.CurrentStage, a.Status,
		a.SubmissionID, nullStringPtr(a.ResumeURL), nullStringPtr(a.PortfolioURL),
		a.ConsentGiven, nullStringPtr(a.RejectionReason), a.CreatedAt,
	)
	if isUniqueViolation(err, "applications_submission_id_key") {
		return pipeline.ErrDuplicateSubmission
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *applicationStore) GetByID(ctx context.Context, id string) (*models.Application, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (s *applicationStore) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Application, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE submission_id = $1`, submissionID)
	return scanApplication(row)
}

func (s *applicationStore) OpenAtStage(ctx context.Context, personID string, stages ...models.Stage) ([]*models.Application, error) {
	if len(stages) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(stages))
	args := []interface{}{personID}
	for i, stage := range stages {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, stage)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE person_id = $1 AND status IN ('ACTIVE', 'ACCEPTED')
		AND current_stage IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query open applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		a, err := scanApplicationRows(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *applicationStore) CountOtherActiveAtStage(ctx context.Context, personID, excludeAppID string, stage models.Stage) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE person_id = $1 AND id <> $2 AND status = 'ACTIVE' AND current_stage = $3`,
		personID, excludeAppID, stage,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active applications: %w", err)
	}
	return count, nil
}

func (s *applicationStore) SetStage(ctx context.Context, id string, stage models.Stage) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE applications SET current_stage = $2, updated_at = NOW() WHERE id = $1`,
		id, stage,
	)
	if err != nil {
		return fmt.Errorf("update application stage: %w", err)
	}
	return requireRow(res, "application", id)
}

func (s *applicationStore) SetStatus(ctx context.Context, id string, status models.Status, reason *string) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE applications SET status = $2, rejection_reason = $3, updated_at = NOW() WHERE id = $1`,
		id, status, nullStringPtr(reason),
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return requireRow(res, "application", id)
}

func (s *applicationStore) SetStageStatus(ctx context.Context, id string, stage models.Stage, status models.Status) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE applications SET current_stage = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		id, stage, status,
	)
	if err != nil {
		return fmt.Errorf("update application stage/status: %w", err)
	}
	return requireRow(res, "application", id)
}

// Delete hard-deletes the application; assessments, interviews and decisions
// follow via ON DELETE CASCADE.
func (s *applicationStore) Delete(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return requireRow(res, "application", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplicationFrom(sc rowScanner) (*models.Application, error) {
	var a models.Application
	var resumeURL, portfolioURL, rejectionReason sql.NullString
	err := sc.Scan(&a.ID, &a.PersonID, &a.Position, &a.CurrentStage, &a.Status,
		&a.SubmissionID, &resumeURL, &portfolioURL, &a.ConsentGiven, &rejectionReason,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.ResumeURL = stringPtr(resumeURL)
	a.PortfolioURL = stringPtr(portfolioURL)
	a.RejectionReason = stringPtr(rejectionReason)
	return &a, nil
}

func scanApplication(row *sql.Row) (*models.Application, error) {
	a, err := scanApplicationFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return a, nil
}

func scanApplicationRows(rows *sql.Rows) (*models.Application, error) {
	a, err := scanApplicationFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	return a, nil
}
