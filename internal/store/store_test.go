// internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"hiring-pipeline/internal/models"
	"hiring-pipeline/internal/pipeline"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestPersonStoreGetByEmail(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{
			"id", "email", "first_name", "last_name", "phone",
			"gc_completed", "gc_passed", "created_at", "updated_at",
		}).AddRow("p1", "ada@example.com", "Ada", "Lovelace", nil, true, true, now, now)
		mock.ExpectQuery(`(?s)SELECT .+ FROM persons WHERE email = \$1`).
			WithArgs("ada@example.com").
			WillReturnRows(rows)

		p, err := s.Persons().GetByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "p1", p.ID)
		assert.True(t, p.GeneralCompetenciesCompleted)
		require.NotNil(t, p.GeneralCompetenciesPassed)
		assert.True(t, *p.GeneralCompetenciesPassed)
	})

	t.Run("absent is nil, nil", func(t *testing.T) {
		mock.ExpectQuery(`(?s)SELECT .+ FROM persons WHERE email = \$1`).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		p, err := s.Persons().GetByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStoreCreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "applications_submission_id_key"})

	err := s.Applications().Create(context.Background(), &models.Application{
		ID: "a1", PersonID: "p1", Position: "Backend Engineer",
		CurrentStage: models.StageGeneralCompetencies, Status: models.StatusActive,
		SubmissionID: "sub-1", CreatedAt: now,
	})
	assert.ErrorIs(t, err, pipeline.ErrDuplicateSubmission)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStoreSetStatus(t *testing.T) {
	s, mock := newMockStore(t)
	reason := "position filled"

	mock.ExpectExec(`UPDATE applications SET status = \$2, rejection_reason = \$3, updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs("a1", string(models.StatusRejected), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Applications().SetStatus(context.Background(), "a1", models.StatusRejected, &reason)
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE applications SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = s.Applications().SetStatus(context.Background(), "missing", models.StatusRejected, nil)
	assert.Error(t, err, "zero rows updated must surface")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationStoreOpenAtStage(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	cols := []string{
		"id", "person_id", "position", "current_stage", "status",
		"submission_id", "resume_url", "portfolio_url", "consent_given", "rejection_reason",
		"created_at", "updated_at",
	}
	mock.ExpectQuery(`(?s)SELECT .+ FROM applications\s+WHERE person_id = \$1 AND status IN`).
		WithArgs("p1", string(models.StageGeneralCompetencies)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a2", "p1", "Backend Engineer", "GENERAL_COMPETENCIES", "ACTIVE",
				"sub-2", nil, nil, true, nil, now, now).
			AddRow("a1", "p1", "Backend Engineer", "GENERAL_COMPETENCIES", "ACTIVE",
				"sub-1", nil, nil, true, nil, now.Add(-time.Hour), now))

	apps, err := s.Applications().OpenAtStage(context.Background(), "p1", models.StageGeneralCompetencies)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "a2", apps[0].ID, "most recent first")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentStoreCreateDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO assessments`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "assessments_submission_id_key"})

	score := 80.0
	passed := true
	err := s.Assessments().Create(context.Background(), &models.Assessment{
		ID: "as1", ApplicationID: "a1", Type: models.AssessmentGeneral,
		Score: &score, Threshold: 70, Passed: &passed,
		SubmissionID: "gc-1", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, pipeline.ErrDuplicateSubmission)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInterviewStoreCreateConflict(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO interviews`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "interviews_one_open_per_application"})

	err := s.Interviews().Create(context.Background(), &models.Interview{
		ID: "i1", ApplicationID: "a1", InterviewerID: "staff-7",
		SchedulingLink: "https://cal.example.com/slot",
		Outcome:        models.InterviewPending, CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, pipeline.ErrOpenInterviewExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditStoreAppendMarshalsDetails(t *testing.T) {
	s, mock := newMockStore(t)
	appID := "a1"

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"application.submitted", string(models.AuditCreate),
			[]byte(`{"stage":"GENERAL_COMPETENCIES"}`),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Audit().Append(context.Background(), &models.AuditEntry{
		ApplicationID: &appID,
		Action:        "application.submitted",
		ActionType:    models.AuditCreate,
		Details:       map[string]interface{}{"stage": "GENERAL_COMPETENCIES"},
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitAndRollback(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE applications SET current_stage`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithTx(context.Background(), func(tx pipeline.Store) error {
			return tx.Applications().SetStage(context.Background(), "a1", models.StageInterview)
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := s.WithTx(context.Background(), func(tx pipeline.Store) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested reuses transaction", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE applications SET current_stage`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithTx(context.Background(), func(tx pipeline.Store) error {
			return tx.WithTx(context.Background(), func(inner pipeline.Store) error {
				return inner.Applications().SetStage(context.Background(), "a1", models.StageInterview)
			})
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "applications_submission_id_key"}
	assert.True(t, isUniqueViolation(dup, "applications_submission_id_key"))
	assert.True(t, isUniqueViolation(dup, ""))
	assert.False(t, isUniqueViolation(dup, "other_constraint"))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, isUniqueViolation(errors.New("plain"), ""))
	assert.False(t, isUniqueViolation(nil, ""))
}
