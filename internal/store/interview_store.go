// internal/store/interview_store.go
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

type interviewStore struct {
	q querier
}

const interviewColumns = `id, application_id, interviewer_id, scheduling_link,
	scheduled_at, notes, outcome, completed_at, email_sent_at, created_at`

func (s *interviewStore) Create(ctx context.Context, i *models.Interview) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO interviews (id, application_id, interviewer_id, scheduling_link,
			scheduled_at, notes, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID, i.ApplicationID, i.InterviewerID, i.SchedulingLink,
		nullTime(i.ScheduledAt), nullStringPtr(i.Notes), i.Outcome, i.CreatedAt,
	)
	if isUniqueViolation(err, "interviews_one_open_per_application") {
		return pipeline.ErrOpenInterviewExists
	}
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (s *interviewStore) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	return scanInterview(row)
}

func (s *interviewStore) OpenByApplication(ctx context.Context, applicationID string) (*models.Interview, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+interviewColumns+` FROM interviews
		WHERE application_id = $1 AND completed_at IS NULL`, applicationID)
	return scanInterview(row)
}

func (s *interviewStore) Complete(ctx context.Context, id string, notes string, completedAt time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE interviews SET outcome = $2, notes = $3, completed_at = $4
		WHERE id = $1 AND completed_at IS NULL`,
		id, models.InterviewCompleted, nullString(notes), completedAt,
	)
	if err != nil {
		return fmt.Errorf("complete interview: %w", err)
	}
	return requireRow(res, "interview", id)
}

func (s *interviewStore) Reschedule(ctx context.Context, id string, link string, scheduledAt *time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE interviews SET scheduling_link = $2, scheduled_at = $3, email_sent_at = NULL
		WHERE id = $1 AND completed_at IS NULL`,
		id, link, nullTime(scheduledAt),
	)
	if err != nil {
		return fmt.Errorf("reschedule interview: %w", err)
	}
	return requireRow(res, "interview", id)
}

func (s *interviewStore) SetEmailSent(ctx context.Context, id string, at time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE interviews SET email_sent_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("mark interview email sent: %w", err)
	}
	return requireRow(res, "interview", id)
}

func scanInterview(row *sql.Row) (*models.Interview, error) {
	var i models.Interview
	var scheduledAt, completedAt, emailSentAt sql.NullTime
	var notes sql.NullString
	err := row.Scan(&i.ID, &i.ApplicationID, &i.InterviewerID, &i.SchedulingLink,
		&scheduledAt, &notes, &i.Outcome, &completedAt, &emailSentAt, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan interview: %w", err)
	}
	i.ScheduledAt = timePtr(scheduledAt)
	i.Notes = stringPtr(notes)
	i.CompletedAt = timePtr(completedAt)
	i.EmailSentAt = timePtr(emailSentAt)
	return &i, nil
}
